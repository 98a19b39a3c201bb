package runner

import "github.com/ppiankov/brandguard/internal/model"

// BestIteration picks the iteration to export when no iteration passed.
// Scored iterations win on passed scorecard count, ties going to the latest.
// Without any scored iteration the latest one with drafts is used.
func BestIteration(history []model.IterationRecord) (int, bool) {
	best, bestPassed := -1, -1
	for i, rec := range history {
		if !rec.Scored() {
			continue
		}
		if n := model.CountPassed(rec.Scorecards); n >= bestPassed {
			best, bestPassed = i, n
		}
	}
	if best >= 0 {
		return best, true
	}

	for i := len(history) - 1; i >= 0; i-- {
		if len(history[i].Drafts) > 0 {
			return i, true
		}
	}
	return -1, false
}
