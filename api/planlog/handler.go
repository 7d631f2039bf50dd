// Package planlog exposes recorded plan decisions over HTTP.
package planlog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/core/planlog"
)

// NewLogHandler returns an HTTP handler exposing plan logs via GET
// /api/productionplan/logs. Requests must include an Authorization header
// with "Bearer <token>" when token is non-empty.
func NewLogHandler(store planlog.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []planlog.LogRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func parseQuery(r *http.Request) (planlog.LogQuery, error) {
	v := r.URL.Query()
	var q planlog.LogQuery
	var err error
	if s := v.Get("start"); s != "" {
		if q.Start, err = time.Parse(time.RFC3339, s); err != nil {
			return q, fmt.Errorf("invalid start: %w", err)
		}
	}
	if s := v.Get("end"); s != "" {
		if q.End, err = time.Parse(time.RFC3339, s); err != nil {
			return q, fmt.Errorf("invalid end: %w", err)
		}
	}
	q.Unit = v.Get("unit")
	switch o := v.Get("outcome"); o {
	case "", metrics.OutcomeSuccess, metrics.OutcomeFailure:
		q.Outcome = o
	default:
		return q, fmt.Errorf("invalid outcome %q", o)
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid limit %q", s)
		}
		q.Limit = n
	}
	return q, nil
}
