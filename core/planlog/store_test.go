package planlog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(base time.Time) []LogRecord {
	return []LogRecord{
		{PlanID: "p1", Timestamp: base, Load: "100", Outcome: "success", Plan: []UnitOutput{{Name: "u1", P: "100"}}},
		{PlanID: "p2", Timestamp: base.Add(time.Minute), Load: "1000", Outcome: "failure", Error: "the load cannot be reached"},
		{PlanID: "p3", Timestamp: base.Add(2 * time.Minute), Load: "300", Outcome: "success", Plan: []UnitOutput{{Name: "u1", P: "100"}, {Name: "u2", P: "200"}}},
	}
}

func ids(recs []LogRecord) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.PlanID)
	}
	return out
}

func storeQueries(t *testing.T, store LogStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, r := range sampleRecords(base) {
		require.NoError(t, store.Append(ctx, r))
	}

	tests := []struct {
		name string
		q    LogQuery
		want []string
	}{
		{"all", LogQuery{}, []string{"p1", "p2", "p3"}},
		{"outcome", LogQuery{Outcome: "failure"}, []string{"p2"}},
		{"unit", LogQuery{Unit: "u2"}, []string{"p3"}},
		{"window", LogQuery{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)}, []string{"p2"}},
		{"limit keeps latest", LogQuery{Limit: 2}, []string{"p2", "p3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestMemoryStore(t *testing.T) {
	storeQueries(t, NewMemoryStore(10))
}

func TestMemoryStore_Capacity(t *testing.T) {
	s := NewMemoryStore(2)
	for _, r := range sampleRecords(time.Now()) {
		require.NoError(t, s.Append(context.Background(), r))
	}
	got, err := s.Query(context.Background(), LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3"}, ids(got))
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "logs", "plans.jsonl"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()
	storeQueries(t, s)
}

func TestJSONLStore_SkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl")
	s, err := NewJSONLStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), LogRecord{PlanID: "p1", Outcome: "success"}))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := s.Query(context.Background(), LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(got))
}

func TestLogRecord_JSON(t *testing.T) {
	rec := LogRecord{PlanID: "p1", Timestamp: time.Unix(0, 0), Load: "480", Outcome: "success", Plan: []UnitOutput{{Name: "u1", P: "21.6"}}}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"load":480`)
	assert.Contains(t, string(data), `"p":21.6`)
	assert.NotContains(t, string(data), `"error"`)
}

func TestRotatingJSONLStore(t *testing.T) {
	s, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "logs", "plans.jsonl"), 1, 3, 0)
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()
	storeQueries(t, s)
}

func TestRotatingJSONLStore_QueriesBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plans.jsonl")
	s, err := NewRotatingJSONLStore(path, 1, 3, 0)
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, LogRecord{PlanID: "old", Outcome: "success"}))
	require.NoError(t, s.Rotate())
	require.NoError(t, s.Append(ctx, LogRecord{PlanID: "new", Outcome: "success"}))

	backups, err := filepath.Glob(filepath.Join(dir, "plans-*.jsonl"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	got, err := s.Query(ctx, LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new"}, ids(got))

	got, err = s.Query(ctx, LogQuery{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, ids(got))
}
