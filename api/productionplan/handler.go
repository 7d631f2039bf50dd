// Package productionplan exposes the plan calculation over HTTP.
package productionplan

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/logger"
	core "github.com/kilianp07/productionplan/core/productionplan"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// PlanIDHeader carries the identifier under which a calculation is logged.
const PlanIDHeader = "X-Plan-ID"

// maxBodyBytes bounds the request payload.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"Error"`
}

// Handler serves POST /productionplan.
type Handler struct {
	engine *core.Engine
	bus    *eventbus.TypedBus[events.PlanEvent]
	log    logger.Logger
	now    func() time.Time
}

// NewHandler returns a handler computing plans with engine. Every outcome is
// published on bus when it is non-nil.
func NewHandler(engine *core.Engine, bus *eventbus.TypedBus[events.PlanEvent], log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop{}
	}
	return &Handler{engine: engine, bus: bus, log: log, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	planID := uuid.NewString()
	w.Header().Set(PlanIDHeader, planID)

	var req core.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.fail(w, planID, fmt.Errorf("%w: %v", core.ErrInvalidPayload, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, planID, err)
		return
	}

	start := h.now()
	res, err := h.engine.Calculate(req)
	ev := events.PlanEvent{
		PlanID:   planID,
		Time:     start.UTC(),
		Load:     req.Load,
		Units:    len(req.Powerplants),
		Duration: h.now().Sub(start),
		Err:      err,
	}
	if err == nil {
		ev.Plan = res.Plan
	}
	h.publish(ev)
	if err != nil {
		h.fail(w, planID, err)
		return
	}

	h.log.Infof("plan %s: load %s MW over %d units, cost %s EUR", planID, req.Load, len(req.Powerplants), res.Plan.Cost().StringFixed(2))
	writeJSON(w, http.StatusOK, res.Response)
}

func (h *Handler) publish(ev events.PlanEvent) {
	if h.bus != nil {
		h.bus.Publish(ev)
	}
}

func (h *Handler) fail(w http.ResponseWriter, planID string, err error) {
	h.log.Warnf("plan %s rejected: %v", planID, err)
	writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
