package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/earworm/internal/router"
	"github.com/abhisek/earworm/internal/screen"
	"github.com/abhisek/earworm/internal/store"
	"github.com/abhisek/earworm/internal/ui/layout"
	"github.com/abhisek/earworm/internal/ui/theme"
)

// sessionsShown caps how many past sessions are loaded.
const sessionsShown = 50

type historyLoadedMsg struct {
	Sessions []store.SessionSummaryRecord
	Err      error
}

// HistoryScreen lists a user's past sessions.
type HistoryScreen struct {
	eventRepo store.EventRepo
	user      string
	sessions  []store.SessionSummaryRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

// New creates a new HistoryScreen for user.
func New(eventRepo store.EventRepo, user string) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		user:      user,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, user := s.eventRepo, s.user
	return func() tea.Msg {
		sessions, err := repo.QuerySessionSummaries(context.Background(), user, sessionsShown)
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
			fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return theme.Centered(theme.Hint, width, "\n\n  No sessions yet. Put some music on!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		var accuracy float64
		if sess.Turns > 0 {
			accuracy = float64(sess.Correct) / float64(sess.Turns) * 100
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %d:%02d  %d answers  %.0f%% correct",
			prefix, sess.Timestamp.Local().Format("Jan 02, 2006 15:04"),
			sess.DurationSecs/60, sess.DurationSecs%60, sess.Turns, accuracy)
		if sess.Mastered > 0 {
			line += fmt.Sprintf("  ★ %d", sess.Mastered)
		}

		style := theme.Unselected
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    mode %s, %d mastered, session %s", sess.Mode, sess.Mastered, sess.SessionID)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
