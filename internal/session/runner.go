package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/scheduler"
)

// ErrQuit is returned by a Responder when the learner ends the session early.
var ErrQuit = errors.New("quit")

// Presenter plays an item's stimulus. A nil offset means from the start.
type Presenter interface {
	Present(ctx context.Context, item catalog.Item, offset *int) error
}

// Responder collects the learner's response to the presented item.
type Responder interface {
	Respond(ctx context.Context, mode Mode, item catalog.Item) (Response, error)
}

// Feedback is told the verdict of every judged response.
type Feedback interface {
	Signal(ctx context.Context, correct bool)
}

// Reporter shows per-turn progress to the learner.
type Reporter interface {
	Skipped(ctx context.Context, items []catalog.Item)
	Judged(ctx context.Context, out scheduler.Outcome)
}

// Config wires a Runner.
type Config struct {
	Scheduler *scheduler.Scheduler
	Mode      Mode
	Presenter Presenter
	Responder Responder
	// Feedback, Reporter and Recorder are optional.
	Feedback Feedback
	Reporter Reporter
	Recorder *Recorder
	Logger   *slog.Logger
}

// Runner drives a session synchronously until the queue is exhausted.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// NewRunner validates cfg and creates a runner.
func NewRunner(cfg Config) (*Runner, error) {
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlayMode, cfg.Mode)
	}
	if cfg.Scheduler == nil || cfg.Presenter == nil || cfg.Responder == nil {
		return nil, errors.New("session runner needs a scheduler, presenter and responder")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{cfg: cfg, logger: logger}, nil
}

// Run plays the session. It returns the summary together with any error
// that ended the session; quitting or cancelling is not an error.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	sched := r.cfg.Scheduler
	if err := sched.Start(ctx); err != nil {
		return nil, err
	}

	st := NewState(uuid.NewString(), sched.Tracker().User(), r.cfg.Mode)
	r.logger.InfoContext(ctx, "session started", "session", st.SessionID, "user", st.User, "mode", st.Mode, "items", len(sched.Items()))
	r.cfg.Recorder.Start(ctx, st)

	exhausted, runErr := r.loop(ctx, st)

	st.Finish(time.Now())
	sum := BuildSummary(st, sched.Distribution(), exhausted)
	r.cfg.Recorder.End(context.WithoutCancel(ctx), sum, sched.Tracker())
	r.logger.InfoContext(ctx, "session ended",
		"session", st.SessionID,
		"turns", sum.Turns,
		"correct", sum.Correct,
		"exhausted", exhausted,
	)
	return sum, runErr
}

func (r *Runner) loop(ctx context.Context, st *State) (bool, error) {
	sched := r.cfg.Scheduler
	for {
		if ctx.Err() != nil {
			return false, nil
		}

		turn, ok := sched.Next(ctx)
		if len(turn.Skipped) > 0 && r.cfg.Reporter != nil {
			r.cfg.Reporter.Skipped(ctx, turn.Skipped)
		}
		if !st.Begin(turn, ok) {
			return true, nil
		}

		if err := r.cfg.Presenter.Present(ctx, turn.Item, turn.Offset); err != nil {
			r.logger.WarnContext(ctx, "present failed", "item", turn.Item.ID, "error", err)
		}

		resp, err := r.cfg.Responder.Respond(ctx, st.Mode, turn.Item)
		if err != nil {
			if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) {
				return false, nil
			}
			return false, fmt.Errorf("read response: %w", err)
		}

		correct := Judge(st.Mode, resp, turn.Item)
		if r.cfg.Feedback != nil {
			r.cfg.Feedback.Signal(ctx, correct)
		}

		out := sched.Answer(ctx, turn, correct)
		st.Record(out)
		r.cfg.Recorder.Answer(ctx, st, resp, out)
		if r.cfg.Reporter != nil {
			r.cfg.Reporter.Judged(ctx, out)
		}
	}
}
