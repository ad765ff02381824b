// Package modeselect is the start screen used when no play mode is
// configured. It asks for the mode and hands off to the drill screen.
package modeselect

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/earworm/internal/router"
	"github.com/abhisek/earworm/internal/screen"
	"github.com/abhisek/earworm/internal/screens/history"
	"github.com/abhisek/earworm/internal/session"
	"github.com/abhisek/earworm/internal/store"
	"github.com/abhisek/earworm/internal/ui/components"
	"github.com/abhisek/earworm/internal/ui/layout"
	"github.com/abhisek/earworm/internal/ui/theme"
)

// StartFunc builds the screen that runs a session in the chosen mode.
type StartFunc func(mode session.Mode) screen.Screen

// ModeSelectScreen lets the learner pick a play mode.
type ModeSelectScreen struct {
	menu     components.Menu
	user     string
	lastSnap *store.Snapshot
}

var (
	_ screen.Screen          = (*ModeSelectScreen)(nil)
	_ screen.KeyHintProvider = (*ModeSelectScreen)(nil)
	_ screen.StatusProvider  = (*ModeSelectScreen)(nil)
)

// New creates the mode menu. Either repo may be nil. With snapRepo the
// user's latest progress snapshot is shown above the menu; with eventRepo a
// History entry lists past sessions.
func New(user string, snapRepo store.SnapshotRepo, eventRepo store.EventRepo, start StartFunc) *ModeSelectScreen {
	var snap *store.Snapshot
	if snapRepo != nil {
		snap, _ = snapRepo.Latest(context.Background(), user)
	}

	items := make([]components.MenuItem, 0, len(session.Modes)+2)
	for _, m := range session.Modes {
		items = append(items, components.MenuItem{
			Label:       m.Title(),
			Description: m.Description(),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.ReplaceScreenMsg{Screen: start(m)}
				}
			},
		})
	}
	items = append(items, components.MenuItem{
		Label:       "History",
		Description: "Past sessions",
		Disabled:    eventRepo == nil,
		Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(eventRepo, user)}
			}
		},
	})
	items = append(items, components.MenuItem{
		Label:  "Exit",
		Action: func() tea.Cmd { return tea.Quit },
	})

	return &ModeSelectScreen{
		menu:     components.NewMenu(items),
		user:     user,
		lastSnap: snap,
	}
}

func (m *ModeSelectScreen) Init() tea.Cmd {
	return nil
}

func (m *ModeSelectScreen) Title() string {
	return "Choose play mode"
}

func (m *ModeSelectScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "1-2", Description: "Pick"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m *ModeSelectScreen) Status() layout.Status {
	st := layout.Status{User: m.user}
	if m.lastSnap != nil {
		st.Mastered = m.lastSnap.Data.Mastered
		st.Total = len(m.lastSnap.Data.Streaks)
	}
	return st
}

func (m *ModeSelectScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *ModeSelectScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Name that tune"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Hear a clip, name the artist and the song."))
	b.WriteString("\n\n")

	if m.lastSnap != nil {
		line := fmt.Sprintf("Last session %s: %d clip(s) mastered",
			m.lastSnap.Timestamp.Local().Format("Jan 2 15:04"), m.lastSnap.Data.Mastered)
		b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Secondary), width, line))
		b.WriteString("\n\n")
	}

	card := theme.Card.Render(strings.TrimRight(m.menu.View(), "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
	return b.String()
}
