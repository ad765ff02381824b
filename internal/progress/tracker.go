package progress

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Backend durably stores a user's streak mapping.
type Backend interface {
	// Load returns the user's mapping. A user with no record yields an
	// empty map, not an error.
	Load(ctx context.Context, user string) (map[int]int, error)

	// Save replaces the user's whole mapping. Implementations must be
	// all-or-nothing: a failed Save leaves the previous mapping intact.
	Save(ctx context.Context, user string, streaks map[int]int) error
}

// Tracker holds one user's streaks for a session. It is the only writer of
// streak values.
type Tracker struct {
	user    string
	streaks map[int]int
	backend Backend
}

// Open loads the user's progress from backend.
func Open(ctx context.Context, user string, backend Backend) (*Tracker, error) {
	streaks, err := backend.Load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load progress for %q: %w", user, err)
	}
	if streaks == nil {
		streaks = make(map[int]int)
	}
	return &Tracker{user: user, streaks: streaks, backend: backend}, nil
}

// User returns the tracked user name.
func (t *Tracker) User() string {
	return t.user
}

// Streak returns the streak for itemID, or 0 if the item was never answered.
func (t *Tracker) Streak(itemID int) int {
	return t.streaks[itemID]
}

// Record applies a judged response: previous+1 when correct, 0 otherwise.
// It returns the transition; the caller persists.
func (t *Tracker) Record(itemID int, correct bool) StateTransition {
	prev := t.streaks[itemID]
	next := 0
	if correct {
		next = prev + 1
	}
	t.streaks[itemID] = next
	return StateTransition{
		ItemID: itemID,
		From:   StateOf(prev),
		To:     StateOf(next),
		Streak: next,
	}
}

// Persist durably saves the full mapping.
func (t *Tracker) Persist(ctx context.Context) error {
	if err := t.backend.Save(ctx, t.user, maps.Clone(t.streaks)); err != nil {
		return fmt.Errorf("persist progress for %q: %w", t.user, err)
	}
	return nil
}

// Reset clears every streak and persists the empty mapping.
func (t *Tracker) Reset(ctx context.Context) error {
	t.streaks = make(map[int]int)
	return t.Persist(ctx)
}

// Snapshot returns a copy of the streak mapping.
func (t *Tracker) Snapshot() map[int]int {
	return maps.Clone(t.streaks)
}

// Distribution counts items per streak over ids. Items at or above the
// mastery threshold are counted as done.
func (t *Tracker) Distribution(ids []int) Distribution {
	d := Distribution{Buckets: make(map[int]int)}
	for _, id := range ids {
		s := t.Streak(id)
		if IsMastered(s) {
			d.Done++
			continue
		}
		d.Buckets[s]++
	}
	return d
}

// Distribution summarizes how many items sit at each streak.
type Distribution struct {
	Buckets map[int]int // streak below the threshold -> item count
	Done    int
}

// Streaks returns the populated streak values in ascending order.
func (d Distribution) Streaks() []int {
	return slices.Sorted(maps.Keys(d.Buckets))
}

// String renders "streak 0: 3, streak 1: 2, done: 1".
func (d Distribution) String() string {
	var parts []string
	for _, s := range d.Streaks() {
		parts = append(parts, fmt.Sprintf("streak %d: %d", s, d.Buckets[s]))
	}
	parts = append(parts, fmt.Sprintf("done: %d", d.Done))
	return strings.Join(parts, ", ")
}

// Histogram renders one line per streak with a star per item.
func (d Distribution) Histogram() string {
	var b strings.Builder
	for _, s := range d.Streaks() {
		fmt.Fprintf(&b, "Streak %d: %s\n", s, strings.Repeat("*", d.Buckets[s]))
	}
	return b.String()
}
