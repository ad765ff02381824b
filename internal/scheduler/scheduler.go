package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/progress"
)

// OffsetWindow is the width of the randomized replay window, in seconds.
const OffsetWindow = 120

// OffsetThreshold is the streak above which a replay offset is requested.
const OffsetThreshold = 2

// ErrEmptyCatalog is returned by Start when the catalog has no items.
var ErrEmptyCatalog = errors.New("catalog has no items")

// OffsetFunc returns the offset already recorded in a stimulus reference.
type OffsetFunc func(stimulus string) int

// Config wires a Scheduler to its collaborators.
type Config struct {
	Catalog catalog.Source
	Tracker *progress.Tracker
	// Rand drives bucket shuffles and replay offsets. Nil seeds a new one.
	Rand *rand.Rand
	// RecordedOffset defaults to returning 0.
	RecordedOffset OffsetFunc
	Logger         *slog.Logger
}

// Turn is one item handed out for presentation.
type Turn struct {
	Item catalog.Item
	// Streak is the item's streak before the response.
	Streak int
	// Offset is the replay offset to request, nil for a plain presentation.
	Offset *int
	// Skipped lists mastered items discarded while looking for this turn.
	Skipped []catalog.Item
	// Reloaded is set when the catalog changed and the queue was rebuilt.
	Reloaded bool
}

// Outcome is the result of applying a judged response.
type Outcome struct {
	Item       catalog.Item
	Correct    bool
	Transition progress.StateTransition
	// Position is the reinsertion index, -1 when the item was retired.
	Position int
	// PersistErr is set when progress could not be saved. The session goes on.
	PersistErr   error
	Distribution progress.Distribution
}

// Mastered reports whether the response retired the item for the session.
func (o Outcome) Mastered() bool {
	return o.Position < 0
}

// Scheduler owns the session queue. It is not safe for concurrent use.
type Scheduler struct {
	source   catalog.Source
	tracker  *progress.Tracker
	rng      *rand.Rand
	offsetOf OffsetFunc
	logger   *slog.Logger

	items   []catalog.Item
	queue   []catalog.Item
	marker  catalog.Marker
	reloads int
}

// New creates a scheduler. Call Start before Next.
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		source:   cfg.Catalog,
		tracker:  cfg.Tracker,
		rng:      cfg.Rand,
		offsetOf: cfg.RecordedOffset,
		logger:   cfg.Logger,
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.offsetOf == nil {
		s.offsetOf = func(string) int { return 0 }
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Start loads the catalog and builds the initial queue.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		return err
	}
	if len(s.items) == 0 {
		return ErrEmptyCatalog
	}
	return nil
}

func (s *Scheduler) load(ctx context.Context) error {
	marker, err := s.source.Marker()
	if err != nil {
		return fmt.Errorf("read catalog marker: %w", err)
	}
	items, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	s.items = items
	s.marker = marker
	s.queue = BuildQueue(items, s.tracker.Streak, s.rng)
	s.logger.DebugContext(ctx, "queue built", "user", s.tracker.User(), "queue", itemIDs(s.queue))
	return nil
}

// reloadIfChanged rebuilds the queue from scratch when the catalog marker moved.
// A failing reload keeps the current queue.
func (s *Scheduler) reloadIfChanged(ctx context.Context) bool {
	marker, err := s.source.Marker()
	if err != nil {
		s.logger.WarnContext(ctx, "catalog marker check failed", "error", err)
		return false
	}
	if !marker.Changed(s.marker) {
		return false
	}
	if err := s.load(ctx); err != nil {
		s.logger.ErrorContext(ctx, "catalog reload failed", "error", err)
		return false
	}
	s.reloads++
	s.logger.InfoContext(ctx, "catalog changed, queue rebuilt", "items", len(s.items))
	return true
}

// Next returns the next item to present. It reports false once the queue is
// exhausted; the returned Turn still carries any items skipped on the way.
func (s *Scheduler) Next(ctx context.Context) (Turn, bool) {
	var turn Turn
	for {
		if s.reloadIfChanged(ctx) {
			turn.Reloaded = true
		}
		if len(s.queue) == 0 {
			return turn, false
		}

		item := s.queue[0]
		s.queue = slices.Delete(s.queue, 0, 1)

		streak := s.tracker.Streak(item.ID)
		if progress.IsMastered(streak) {
			s.logger.InfoContext(ctx, "skipping item, already completed", "item", item.ID, "streak", streak)
			turn.Skipped = append(turn.Skipped, item)
			continue
		}

		turn.Item = item
		turn.Streak = streak
		if streak > OffsetThreshold {
			off := s.offsetOf(item.Stimulus) + s.rng.IntN(OffsetWindow+1)
			turn.Offset = &off
		}
		return turn, true
	}
}

// Answer records the judged response, persists progress and reinserts the
// item according to its new streak.
func (s *Scheduler) Answer(ctx context.Context, turn Turn, correct bool) Outcome {
	item := turn.Item
	out := Outcome{
		Item:       item,
		Correct:    correct,
		Transition: s.tracker.Record(item.ID, correct),
		Position:   -1,
	}

	if err := s.tracker.Persist(ctx); err != nil {
		out.PersistErr = err
		s.logger.ErrorContext(ctx, "persist progress failed", "item", item.ID, "error", err)
	}

	streak := out.Transition.Streak
	if progress.IsMastered(streak) {
		s.logger.InfoContext(ctx, "item mastered", "item", item.ID)
	} else {
		out.Position = ReinsertPosition(len(s.queue), streak)
		s.queue = slices.Insert(s.queue, out.Position, item)
	}

	out.Distribution = s.tracker.Distribution(itemIDs(s.items))
	s.logger.DebugContext(ctx, "answer applied",
		"item", item.ID,
		"correct", correct,
		"streak", streak,
		"position", out.Position,
		"distribution", out.Distribution.String(),
	)
	return out
}

// Remaining returns the number of queued items, mastered ones included.
func (s *Scheduler) Remaining() int {
	return len(s.queue)
}

// Queue returns a copy of the current queue.
func (s *Scheduler) Queue() []catalog.Item {
	return slices.Clone(s.queue)
}

// Items returns the currently loaded catalog.
func (s *Scheduler) Items() []catalog.Item {
	return slices.Clone(s.items)
}

// Reloads returns how many times the catalog was reloaded mid-session.
func (s *Scheduler) Reloads() int {
	return s.reloads
}

// Distribution returns the streak distribution over the loaded catalog.
func (s *Scheduler) Distribution() progress.Distribution {
	return s.tracker.Distribution(itemIDs(s.items))
}

// Tracker returns the progress tracker the scheduler records into.
func (s *Scheduler) Tracker() *progress.Tracker {
	return s.tracker
}

func itemIDs(items []catalog.Item) []int {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
