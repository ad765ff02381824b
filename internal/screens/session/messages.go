package session

import (
	"time"
)

// sessionInitMsg is sent when the scheduler has built its queue.
type sessionInitMsg struct {
	Err error
}

// presentedMsg is sent when the stimulus has been handed to the presenter.
type presentedMsg struct {
	ItemID int
	Err    error
}

// timerTickMsg is sent every second to update the elapsed time.
type timerTickMsg time.Time

// feedbackDoneMsg is sent when the learner dismisses the verdict.
type feedbackDoneMsg struct{}

// sessionEndMsg is sent to trigger the session end flow.
type sessionEndMsg struct {
	Exhausted bool
}
