package session

import (
	"time"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/progress"
)

// Summary holds the data displayed when a session ends.
type Summary struct {
	SessionID       string
	User            string
	Mode            Mode
	Duration        time.Duration
	Turns           int
	Correct         int
	Accuracy        float64
	Mastered        []catalog.Item
	Skipped         int
	Reloads         int
	PersistFailures int
	Distribution    progress.Distribution
	// Exhausted is false when the learner quit before the queue emptied.
	Exhausted bool
}

// BuildSummary creates a Summary from the final session state.
func BuildSummary(state *State, dist progress.Distribution, exhausted bool) *Summary {
	return &Summary{
		SessionID:       state.SessionID,
		User:            state.User,
		Mode:            state.Mode,
		Duration:        state.Elapsed,
		Turns:           state.Turns,
		Correct:         state.Correct,
		Accuracy:        state.Accuracy(),
		Mastered:        state.MasteredItems,
		Skipped:         state.Skipped,
		Reloads:         state.Reloads,
		PersistFailures: state.PersistFailures,
		Distribution:    dist,
		Exhausted:       exhausted,
	}
}
