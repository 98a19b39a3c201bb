package model

import (
	"sort"
	"time"
)

// Flag marks an unmet gate on a run that exported without passing
type Flag string

const (
	FlagQualityGateFailed Flag = "quality_gate_failed"
	FlagUnverifiedClaims  Flag = "unverified_claims"
	FlagSchemaInvalid     Flag = "schema_invalid"
	FlagAgentUnreachable  Flag = "agent_unreachable"
)

// FlagSet collects flags without duplicates
type FlagSet map[Flag]struct{}

// Add inserts a flag
func (s FlagSet) Add(f Flag) {
	s[f] = struct{}{}
}

// Has reports whether the flag is present
func (s FlagSet) Has(f Flag) bool {
	_, ok := s[f]
	return ok
}

// Sorted returns the flags in lexical order
func (s FlagSet) Sorted() []Flag {
	out := make([]Flag, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Outcome records how an iteration ended
type Outcome string

const (
	OutcomePassed           Outcome = "passed"
	OutcomeGateFailed       Outcome = "gate_failed"
	OutcomeSchemaInvalid    Outcome = "schema_invalid"
	OutcomeAgentUnreachable Outcome = "agent_unreachable"
)

// AuditEntry is one tool invocation or state transition.
// Timestamps are serialized as RFC3339Nano UTC.
type AuditEntry struct {
	Tool      string    `json:"tool" yaml:"tool"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Iteration int       `json:"iteration" yaml:"iteration"`
}

// IterationRecord captures one pass of the generation loop
type IterationRecord struct {
	Index        int                      `json:"iteration_index" yaml:"iteration_index"`
	Outcome      Outcome                  `json:"outcome" yaml:"outcome"`
	Drafts       map[Channel]ChannelDraft `json:"drafts" yaml:"drafts"`
	Scorecards   map[Channel]Scorecard    `json:"scorecards" yaml:"scorecards"`
	ClaimResults []Claim                  `json:"claim_results" yaml:"claim_results"`
	Problems     []string                 `json:"problems,omitempty" yaml:"problems,omitempty"` // Schema or transport problems
	ToolCalls    []AuditEntry             `json:"tool_calls" yaml:"tool_calls"`
}

// Scored reports whether the iteration reached the quality check
func (r IterationRecord) Scored() bool {
	return len(r.Scorecards) > 0
}

// ExportBundle is the content handed to an external writer
type ExportBundle struct {
	EventTitle  string                   `json:"event_title" yaml:"event_title"`
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
	Content     map[Channel]ChannelDraft `json:"content" yaml:"content"`
	Scorecard   map[Channel]Scorecard    `json:"scorecard" yaml:"scorecard"`
	ClaimsTable []Claim                  `json:"claims_table" yaml:"claims_table"`
	Images      map[Channel]string       `json:"images,omitempty" yaml:"images,omitempty"`
	Flags       []Flag                   `json:"flags" yaml:"flags"`
	Iterations  int                      `json:"iterations" yaml:"iterations"`
}

// RunResult is the terminal artifact of one controller run
type RunResult struct {
	RunID          string            `json:"run_id" yaml:"run_id"`
	Success        bool              `json:"success" yaml:"success"`
	IterationsUsed int               `json:"iterations_used" yaml:"iterations_used"`
	Flags          []Flag            `json:"flags" yaml:"flags"`
	Bundle         *ExportBundle     `json:"bundle,omitempty" yaml:"bundle,omitempty"`
	History        []IterationRecord `json:"history" yaml:"history"`
	Audit          []AuditEntry      `json:"audit" yaml:"audit"`
}
