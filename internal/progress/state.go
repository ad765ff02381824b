package progress

// MasteryThreshold is the streak at which an item is retired from the
// session queue.
const MasteryThreshold = 4

// State represents an item's position in the mastery lifecycle.
type State string

const (
	StateNew        State = "new"
	StatePracticing State = "practicing"
	StateMastered   State = "mastered"
)

// StateOf maps a streak to its mastery state.
func StateOf(streak int) State {
	switch {
	case streak >= MasteryThreshold:
		return StateMastered
	case streak > 0:
		return StatePracticing
	default:
		return StateNew
	}
}

// IsMastered reports whether streak has reached the mastery threshold.
func IsMastered(streak int) bool {
	return streak >= MasteryThreshold
}

// StateTransition records a streak change for display and event logging.
type StateTransition struct {
	ItemID int
	From   State
	To     State
	Streak int
}
