package session

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/router"
	"github.com/abhisek/earworm/internal/scheduler"
	"github.com/abhisek/earworm/internal/screen"
	sess "github.com/abhisek/earworm/internal/session"
	"github.com/abhisek/earworm/internal/ui/components"
	"github.com/abhisek/earworm/internal/ui/layout"
)

// answerMaxLen caps a typed artist or song name.
const answerMaxLen = 200

// step is the input stage within the active phase.
type step int

const (
	stepArtist step = iota // normal mode, typing the artist
	stepSong               // normal mode, typing the song
	stepReveal             // self-assessment, answer hidden
	stepKnown              // self-assessment, answer shown, waiting for y/n
)

// Config wires the drill screen.
type Config struct {
	Scheduler *scheduler.Scheduler
	Mode      sess.Mode
	Presenter sess.Presenter
	// Feedback and Recorder are optional.
	Feedback sess.Feedback
	Recorder *sess.Recorder
	Logger   *slog.Logger
}

// SessionScreen implements screen.Screen for an active drill session.
type SessionScreen struct {
	cfg    Config
	ctx    context.Context
	logger *slog.Logger

	state *sess.State
	input components.TextInput
	step  step
	parts []string

	lastSkipped        []catalog.Item
	presentErr         string
	showingQuitConfirm bool
	errMsg             string
	summary            *sess.Summary
}

var (
	_ screen.Screen          = (*SessionScreen)(nil)
	_ screen.KeyHintProvider = (*SessionScreen)(nil)
	_ screen.StatusProvider  = (*SessionScreen)(nil)
)

// New creates a new SessionScreen. The scheduler is started by Init.
func New(cfg Config) *SessionScreen {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SessionScreen{
		cfg:    cfg,
		ctx:    context.Background(),
		logger: logger,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	return s.initSession()
}

func (s *SessionScreen) Title() string {
	return "Session"
}

// Summary returns the session summary once the session has ended.
func (s *SessionScreen) Summary() *sess.Summary {
	return s.summary
}

func (s *SessionScreen) Status() layout.Status {
	if s.state == nil {
		return layout.Status{}
	}
	return layout.Status{
		User:     s.state.User,
		Mastered: s.cfg.Scheduler.Distribution().Done,
		Total:    len(s.cfg.Scheduler.Items()),
	}
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.state == nil {
		return nil
	}
	if s.showingQuitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.state.Phase == sess.PhaseFeedback {
		return []layout.KeyHint{
			{Key: "any key", Description: "Next clip"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	switch s.step {
	case stepReveal:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Reveal"},
			{Key: "Esc", Description: "Quit"},
		}
	case stepKnown:
		return []layout.KeyHint{
			{Key: "Y", Description: "Knew it"},
			{Key: "N", Description: "Didn't"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if s.state == nil {
		return renderLoading(width, height)
	}
	if s.showingQuitConfirm {
		return renderQuitConfirm(width, height)
	}
	if s.state.Phase == sess.PhaseFeedback {
		return s.renderFeedback(width, height)
	}
	return s.renderTurnView(width, height)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionInitMsg:
		return s.handleInit(msg)

	case presentedMsg:
		return s.handlePresented(msg)

	case timerTickMsg:
		return s.handleTimerTick()

	case feedbackDoneMsg:
		// Repeated keypresses can queue more than one.
		if s.state == nil || s.state.Phase != sess.PhaseFeedback {
			return s, nil
		}
		return s.advance()

	case sessionEndMsg:
		return s.handleSessionEnd(msg.Exhausted)

	case router.InterruptMsg:
		s.finish(false)
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.typing() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// initSession builds the queue asynchronously. The scheduler is not touched
// from Update until sessionInitMsg arrives.
func (s *SessionScreen) initSession() tea.Cmd {
	sched := s.cfg.Scheduler
	ctx := s.ctx
	return func() tea.Msg {
		return sessionInitMsg{Err: sched.Start(ctx)}
	}
}

func (s *SessionScreen) handleInit(msg sessionInitMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	sched := s.cfg.Scheduler
	s.state = sess.NewState(uuid.NewString(), sched.Tracker().User(), s.cfg.Mode)
	s.logger.InfoContext(s.ctx, "session started",
		"session", s.state.SessionID,
		"user", s.state.User,
		"mode", s.state.Mode,
		"items", len(sched.Items()),
	)
	s.cfg.Recorder.Start(s.ctx, s.state)

	_, cmd := s.advance()
	return s, tea.Batch(cmd, tickCmd())
}

// advance pulls the next turn from the scheduler and presents it.
func (s *SessionScreen) advance() (screen.Screen, tea.Cmd) {
	if s.state == nil || s.state.Phase == sess.PhaseSummary {
		return s, nil
	}

	turn, ok := s.cfg.Scheduler.Next(s.ctx)
	s.lastSkipped = turn.Skipped
	s.presentErr = ""
	if !s.state.Begin(turn, ok) {
		return s.handleSessionEnd(true)
	}

	s.parts = nil
	var cmds []tea.Cmd
	if s.state.Mode == sess.ModeSelfAssessment {
		s.step = stepReveal
	} else {
		s.step = stepArtist
		s.input = components.NewTextInput("Artist:", "who performs it?", answerMaxLen)
		cmds = append(cmds, s.input.Init())
	}
	cmds = append(cmds, s.presentCmd(turn))
	return s, tea.Batch(cmds...)
}

// presentCmd opens the stimulus off the update loop.
func (s *SessionScreen) presentCmd(turn scheduler.Turn) tea.Cmd {
	presenter := s.cfg.Presenter
	if presenter == nil {
		return nil
	}
	ctx := s.ctx
	return func() tea.Msg {
		return presentedMsg{
			ItemID: turn.Item.ID,
			Err:    presenter.Present(ctx, turn.Item, turn.Offset),
		}
	}
}

func (s *SessionScreen) handlePresented(msg presentedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err == nil {
		return s, nil
	}
	s.logger.WarnContext(s.ctx, "present failed", "item", msg.ItemID, "error", msg.Err)
	if s.state != nil && s.state.Current != nil && s.state.Current.Item.ID == msg.ItemID {
		s.presentErr = msg.Err.Error()
	}
	return s, nil
}

func (s *SessionScreen) handleTimerTick() (screen.Screen, tea.Cmd) {
	if s.state == nil || s.state.Phase == sess.PhaseSummary {
		return s, nil
	}
	s.state.Elapsed = time.Since(s.state.StartTime)
	return s, tickCmd()
}

func (s *SessionScreen) handleSessionEnd(exhausted bool) (screen.Screen, tea.Cmd) {
	sum := s.finish(exhausted)
	if sum == nil {
		return s, nil
	}
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: newSummaryScreenAdapter(sum)}
	}
}

// finish closes the session once and records its end.
func (s *SessionScreen) finish(exhausted bool) *sess.Summary {
	if s.state == nil || s.state.Phase == sess.PhaseSummary {
		return nil
	}
	sched := s.cfg.Scheduler
	s.state.Finish(time.Now())
	s.summary = sess.BuildSummary(s.state, sched.Distribution(), exhausted)
	s.cfg.Recorder.End(s.ctx, s.summary, sched.Tracker())
	s.logger.InfoContext(s.ctx, "session ended",
		"session", s.state.SessionID,
		"turns", s.summary.Turns,
		"correct", s.summary.Correct,
		"exhausted", exhausted,
	)
	return s.summary
}

func (s *SessionScreen) typing() bool {
	return s.state != nil &&
		s.state.Phase == sess.PhaseActive &&
		!s.showingQuitConfirm &&
		(s.step == stepArtist || s.step == stepSong)
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state, any key quits.
	if s.errMsg != "" {
		return s, tea.Quit
	}

	if s.state == nil {
		return s, nil
	}

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			s.showingQuitConfirm = false
			return s, func() tea.Msg { return sessionEndMsg{} }
		case "n", "N", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	if key == "esc" {
		s.showingQuitConfirm = true
		return s, nil
	}

	switch s.state.Phase {
	case sess.PhaseFeedback:
		return s, func() tea.Msg { return feedbackDoneMsg{} }
	case sess.PhaseActive:
		return s.handleAnswerKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleAnswerKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.step {
	case stepArtist:
		if key == "enter" {
			s.parts = []string{s.input.Value()}
			s.step = stepSong
			s.input = components.NewTextInput("Song:", "what is it called?", answerMaxLen)
			return s, s.input.Init()
		}
	case stepSong:
		if key == "enter" {
			s.parts = append(s.parts, s.input.Value())
			return s.submit(sess.Response{Parts: s.parts})
		}
	case stepReveal:
		if key == "enter" || key == "space" {
			s.step = stepKnown
		}
		return s, nil
	case stepKnown:
		switch key {
		case "y", "Y":
			return s.submit(sess.Response{Known: true})
		case "n", "N":
			return s.submit(sess.Response{Known: false})
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit judges the response and applies it to the scheduler.
func (s *SessionScreen) submit(resp sess.Response) (screen.Screen, tea.Cmd) {
	if s.state.Current == nil {
		return s, nil
	}
	turn := *s.state.Current

	correct := sess.Judge(s.state.Mode, resp, turn.Item)
	if s.step == stepSong {
		s.input.Submit(correct)
	}

	out := s.cfg.Scheduler.Answer(s.ctx, turn, correct)
	s.state.Record(out)
	s.cfg.Recorder.Answer(s.ctx, s.state, resp, out)

	return s, s.signalCmd(correct)
}

// signalCmd plays the verdict cue off the update loop.
func (s *SessionScreen) signalCmd(correct bool) tea.Cmd {
	fb := s.cfg.Feedback
	if fb == nil {
		return nil
	}
	ctx := s.ctx
	return func() tea.Msg {
		fb.Signal(ctx, correct)
		return nil
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
