package runner

import (
	"fmt"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
)

// toolImages is the image generation tool; runs without it are reported as such
const toolImages = "generate_images"

// Analysis describes how a run used its tools
type Analysis struct {
	RunID          string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Iterations     int            `json:"iterations" yaml:"iterations"`
	ToolSequence   []string       `json:"tool_sequence" yaml:"tool_sequence"`
	ToolCounts     map[string]int `json:"tool_counts" yaml:"tool_counts"`
	RetrievedFirst bool           `json:"retrieved_first" yaml:"retrieved_first"`
	Succeeded      bool           `json:"succeeded" yaml:"succeeded"`
	Flagged        bool           `json:"flagged" yaml:"flagged"`
	Observations   []string       `json:"observations" yaml:"observations"`
}

// Analyze summarises an audit trail. State transitions are excluded from the
// tool sequence but decide whether the run succeeded or exported with flags.
func Analyze(entries []model.AuditEntry) Analysis {
	a := Analysis{
		ToolSequence: []string{},
		ToolCounts:   map[string]int{},
		Observations: []string{},
	}

	for _, e := range entries {
		if e.Iteration > a.Iterations {
			a.Iterations = e.Iteration
		}
		if state, ok := strings.CutPrefix(e.Tool, "state:"); ok {
			switch state {
			case StateExportSuccess:
				a.Succeeded = true
			case StateExportWithFlags:
				a.Flagged = true
			}
			continue
		}
		if e.Tool == "" {
			continue
		}
		a.ToolSequence = append(a.ToolSequence, e.Tool)
		a.ToolCounts[e.Tool]++
	}

	if len(a.ToolSequence) > 0 {
		if first := a.ToolSequence[0]; first == ToolRetrieve {
			a.RetrievedFirst = true
			a.Observations = append(a.Observations, "Context was retrieved before drafting")
		} else {
			a.Observations = append(a.Observations, fmt.Sprintf("Run started with %s instead of %s", first, ToolRetrieve))
		}
	}

	if n := a.ToolCounts[ToolCritique]; n == 0 {
		a.Observations = append(a.Observations, "Drafts were never critiqued")
	} else {
		a.Observations = append(a.Observations, fmt.Sprintf("Drafts were critiqued %d %s", n, times(n)))
	}

	if n := a.ToolCounts[ToolVerify]; n == 0 {
		a.Observations = append(a.Observations, "Claims were never verified")
	} else {
		a.Observations = append(a.Observations, fmt.Sprintf("Claims were verified %d %s", n, times(n)))
	}

	if a.ToolCounts[toolImages] == 0 {
		a.Observations = append(a.Observations, "No images were generated")
	} else {
		a.Observations = append(a.Observations, "Images were generated")
	}

	return a
}

func times(n int) string {
	if n == 1 {
		return "time"
	}
	return "times"
}
