package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/earworm/internal/progress"
	"github.com/abhisek/earworm/internal/scheduler"
	"github.com/abhisek/earworm/internal/store"
)

// snapshotsKept is how many progress snapshots are retained per user.
const snapshotsKept = 10

// Recorder writes session history to the event log. Failures are logged and
// never interrupt play. A nil *Recorder records nothing.
type Recorder struct {
	events    store.EventRepo
	snapshots store.SnapshotRepo
	logger    *slog.Logger
}

// NewRecorder creates a recorder. Either repo may be nil.
func NewRecorder(events store.EventRepo, snapshots store.SnapshotRepo, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{events: events, snapshots: snapshots, logger: logger}
}

// Start records the session start.
func (r *Recorder) Start(ctx context.Context, st *State) {
	if r == nil || r.events == nil {
		return
	}
	err := r.events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: st.SessionID,
		User:      st.User,
		Action:    store.ActionStart,
		Mode:      string(st.Mode),
	})
	if err != nil {
		r.logger.WarnContext(ctx, "record session start failed", "session", st.SessionID, "error", err)
	}
}

// Answer records one judged response.
func (r *Recorder) Answer(ctx context.Context, st *State, resp Response, out scheduler.Outcome) {
	if r == nil || r.events == nil {
		return
	}
	given := strings.Join(resp.Parts, " - ")
	if st.Mode == ModeSelfAssessment {
		given = "n"
		if resp.Known {
			given = "y"
		}
	}
	err := r.events.AppendAnswerEvent(ctx, store.AnswerEventData{
		SessionID:   st.SessionID,
		User:        st.User,
		ItemID:      out.Item.ID,
		Expected:    out.Item.Label(),
		Given:       given,
		Correct:     out.Correct,
		StreakAfter: out.Transition.Streak,
		Position:    out.Position,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "record answer failed", "session", st.SessionID, "item", out.Item.ID, "error", err)
	}
}

// End records the session end and snapshots the user's streaks.
func (r *Recorder) End(ctx context.Context, sum *Summary, tracker *progress.Tracker) {
	if r == nil {
		return
	}
	if r.events != nil {
		err := r.events.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:    sum.SessionID,
			User:         sum.User,
			Action:       store.ActionEnd,
			Mode:         string(sum.Mode),
			Turns:        sum.Turns,
			Correct:      sum.Correct,
			Mastered:     len(sum.Mastered),
			DurationSecs: int(sum.Duration.Seconds()),
		})
		if err != nil {
			r.logger.WarnContext(ctx, "record session end failed", "session", sum.SessionID, "error", err)
		}
	}

	if r.snapshots == nil || tracker == nil {
		return
	}
	snap := &store.Snapshot{
		Timestamp: time.Now(),
		User:      sum.User,
		Data: store.SnapshotData{
			Version:  1,
			Streaks:  tracker.Snapshot(),
			Mastered: sum.Distribution.Done,
		},
	}
	if err := r.snapshots.Save(ctx, snap); err != nil {
		r.logger.WarnContext(ctx, "save progress snapshot failed", "user", sum.User, "error", err)
		return
	}
	if err := r.snapshots.Prune(ctx, sum.User, snapshotsKept); err != nil {
		r.logger.WarnContext(ctx, "prune progress snapshots failed", "user", sum.User, "error", err)
	}
}
