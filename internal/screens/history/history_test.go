package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/earworm/internal/router"
	"github.com/abhisek/earworm/internal/store"
)

// mockEventRepo implements store.EventRepo for testing.
type mockEventRepo struct {
	sessions []store.SessionSummaryRecord
	err      error
	user     string
	limit    int
}

func (m *mockEventRepo) AppendSessionEvent(context.Context, store.SessionEventData) error {
	return nil
}
func (m *mockEventRepo) AppendAnswerEvent(context.Context, store.AnswerEventData) error {
	return nil
}
func (m *mockEventRepo) QuerySessionSummaries(_ context.Context, user string, limit int) ([]store.SessionSummaryRecord, error) {
	m.user, m.limit = user, limit
	return m.sessions, m.err
}
func (m *mockEventRepo) ItemAccuracy(context.Context, string) ([]store.ItemAccuracy, error) {
	return nil, nil
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	s.Update(s.Init()())
}

func testRepo() *mockEventRepo {
	return &mockEventRepo{sessions: []store.SessionSummaryRecord{
		{SessionID: "s2", Timestamp: time.Now(), Mode: "normal", Turns: 10, Correct: 7, Mastered: 1, DurationSecs: 125},
		{SessionID: "s1", Timestamp: time.Now().Add(-time.Hour), Mode: "self-assessment", Turns: 4, Correct: 4, DurationSecs: 60},
	}}
}

func TestHistory_LoadsForUser(t *testing.T) {
	repo := testRepo()
	s := New(repo, "alice")
	load(t, s)

	if repo.user != "alice" || repo.limit != sessionsShown {
		t.Errorf("queried user=%q limit=%d", repo.user, repo.limit)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "10 answers") || !strings.Contains(view, "70% correct") {
		t.Errorf("view missing session line:\n%s", view)
	}
	if !strings.Contains(view, "2:05") {
		t.Error("expected duration 2:05")
	}
}

func TestHistory_Empty(t *testing.T) {
	s := New(&mockEventRepo{}, "alice")
	if !strings.Contains(s.View(80, 20), "Loading") {
		t.Error("expected loading view before data arrives")
	}
	load(t, s)
	if !strings.Contains(s.View(80, 20), "No sessions yet") {
		t.Error("expected empty message")
	}
}

func TestHistory_Error(t *testing.T) {
	s := New(&mockEventRepo{err: errors.New("db locked")}, "alice")
	load(t, s)
	if !strings.Contains(s.View(80, 20), "db locked") {
		t.Error("expected the error in the view")
	}
}

func TestHistory_NavigateAndExpand(t *testing.T) {
	s := New(testRepo(), "alice")
	load(t, s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1 (clamped)", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(100, 30), "session s1") {
		t.Error("expected expanded details for s1")
	}
}

func TestHistory_EscPops(t *testing.T) {
	s := New(testRepo(), "alice")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command on Esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
