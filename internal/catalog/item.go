package catalog

import (
	"context"
	"strings"
	"time"
)

// Item is one drill unit: a stimulus reference plus its canonical answer.
type Item struct {
	ID       int
	Stimulus string
	// Answer is the ordered canonical answer tuple (artist, song).
	Answer []string
}

// Artist returns the first answer part, or "" if the answer is empty.
func (it Item) Artist() string {
	if len(it.Answer) == 0 {
		return ""
	}
	return it.Answer[0]
}

// Song returns the second answer part, or "" if there is none.
func (it Item) Song() string {
	if len(it.Answer) < 2 {
		return ""
	}
	return it.Answer[1]
}

// Label renders the canonical answer for display ("Artist - Song").
func (it Item) Label() string {
	return strings.Join(it.Answer, " - ")
}

// Marker is the last-modification marker of a catalog source.
// The zero Marker stands for a source that does not exist.
type Marker struct {
	ModTime time.Time
}

// Changed reports whether m differs from a previously captured marker.
func (m Marker) Changed(prev Marker) bool {
	return !m.ModTime.Equal(prev.ModTime)
}

// IsZero reports whether the marker belongs to a missing source.
func (m Marker) IsZero() bool {
	return m.ModTime.IsZero()
}

// Source provides the fixed set of drill items and its change marker.
type Source interface {
	// Load returns the items in source order. A missing source yields
	// an empty slice, not an error.
	Load(ctx context.Context) ([]Item, error)

	// Marker returns the source's current modification marker.
	Marker() (Marker, error)
}
