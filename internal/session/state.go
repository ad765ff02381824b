package session

import (
	"time"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/scheduler"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseLoading  Phase = iota // Building the queue
	PhaseActive                // Waiting for a response
	PhaseFeedback              // Showing the judged answer
	PhaseSummary               // Queue exhausted or quit
)

// State tracks the runtime state of an active session. Both the line-mode
// runner and the TUI drill screen drive it.
type State struct {
	SessionID string
	User      string
	Mode      Mode
	Phase     Phase

	StartTime time.Time
	Elapsed   time.Duration

	// Current is the turn being answered, nil between turns.
	Current *scheduler.Turn
	// LastOutcome is the most recent judged response.
	LastOutcome *scheduler.Outcome

	Turns           int
	Correct         int
	Skipped         int
	Reloads         int
	PersistFailures int

	// MasteredItems lists items retired during this session, in order.
	MasteredItems []catalog.Item
}

// NewState creates a session state that starts now.
func NewState(sessionID, user string, mode Mode) *State {
	return &State{
		SessionID: sessionID,
		User:      user,
		Mode:      mode,
		Phase:     PhaseLoading,
		StartTime: time.Now(),
	}
}

// Begin records a turn returned by the scheduler. It reports whether there
// is an item to present.
func (s *State) Begin(turn scheduler.Turn, ok bool) bool {
	s.Skipped += len(turn.Skipped)
	if turn.Reloaded {
		s.Reloads++
	}
	if !ok {
		s.Current = nil
		return false
	}
	s.Current = &turn
	s.Phase = PhaseActive
	return true
}

// Record applies a judged outcome to the counters.
func (s *State) Record(out scheduler.Outcome) {
	s.Turns++
	if out.Correct {
		s.Correct++
	}
	if out.Mastered() {
		s.MasteredItems = append(s.MasteredItems, out.Item)
	}
	if out.PersistErr != nil {
		s.PersistFailures++
	}
	s.LastOutcome = &out
	s.Phase = PhaseFeedback
}

// Finish stops the clock and moves to the summary phase.
func (s *State) Finish(now time.Time) {
	s.Elapsed = now.Sub(s.StartTime)
	s.Current = nil
	s.Phase = PhaseSummary
}

// Accuracy returns the fraction of correct responses so far.
func (s *State) Accuracy() float64 {
	if s.Turns == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Turns)
}
