package runner

import (
	"sync"
	"time"

	"github.com/ppiankov/brandguard/internal/model"
)

// Tool names recorded in the audit trail
const (
	ToolRetrieve = "retrieve_context"
	ToolDraft    = "draft_content"
	ToolCritique = "critique_draft"
	ToolVerify   = "verify_claims"
)

// Controller states, recorded as "state:<NAME>"
const (
	StateStart           = "START"
	StateDrafting        = "DRAFTING"
	StateSchemaCheck     = "SCHEMA_CHECK"
	StateQualityCheck    = "QUALITY_CHECK"
	StateRetry           = "RETRY"
	StateExportSuccess   = "EXPORT_SUCCESS"
	StateExportWithFlags = "EXPORT_WITH_FLAGS"
)

// StateTool returns the audit tool name of a state transition
func StateTool(state string) string {
	return "state:" + state
}

// Trail is an append-only, strictly ordered audit trail.
// Timestamps never go backwards even if the clock does.
type Trail struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	now     func() time.Time
}

// NewTrail creates an empty trail using now as its clock
func NewTrail(now func() time.Time) *Trail {
	if now == nil {
		now = time.Now
	}
	return &Trail{now: now}
}

// Record appends one entry and returns it
func (t *Trail) Record(tool string, iteration int) model.AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := t.now().UTC()
	if n := len(t.entries); n > 0 && ts.Before(t.entries[n-1].Timestamp) {
		ts = t.entries[n-1].Timestamp
	}

	e := model.AuditEntry{Tool: tool, Timestamp: ts, Iteration: iteration}
	t.entries = append(t.entries, e)
	return e
}

// State records a state transition
func (t *Trail) State(state string, iteration int) {
	t.Record(StateTool(state), iteration)
}

// Len returns the number of entries
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Since returns a copy of the entries recorded after the first n
func (t *Trail) Since(n int) []model.AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n >= len(t.entries) {
		return []model.AuditEntry{}
	}
	return append([]model.AuditEntry(nil), t.entries[n:]...)
}

// Entries returns a copy of the whole trail
func (t *Trail) Entries() []model.AuditEntry {
	return t.Since(0)
}
