package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/earworm/internal/screen"
	"github.com/abhisek/earworm/internal/session"
	"github.com/abhisek/earworm/internal/ui/layout"
	"github.com/abhisek/earworm/internal/ui/theme"
)

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	summary *session.Summary
}

var (
	_ screen.Screen          = (*SummaryScreen)(nil)
	_ screen.KeyHintProvider = (*SummaryScreen)(nil)
	_ screen.StatusProvider  = (*SummaryScreen)(nil)
)

// New creates a new SummaryScreen.
func New(summary *session.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Exit"},
		{Key: "Esc", Description: "Exit"},
	}
}

func (s *SummaryScreen) Status() layout.Status {
	if s.summary == nil {
		return layout.Status{}
	}
	return layout.Status{User: s.summary.User}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	var b strings.Builder

	title := "Session ended"
	if sum.Exhausted {
		title = "Session complete! Every clip is done for today."
	}
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), width, title))
	b.WriteString("\n\n")

	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width,
		fmt.Sprintf("Duration: %s   Mode: %s", sum.Duration.Round(time.Second), sum.Mode.Title())))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Answered: %d        Correct: %d        Accuracy: %.0f%%",
		sum.Turns, sum.Correct, sum.Accuracy*100)
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Text), width, statsLine))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(min(width-8, 60), 0)))

	if len(sum.Mastered) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("Mastered this session")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n")
		for _, it := range sum.Mastered {
			b.WriteString(theme.Centered(theme.Mastered, width, "★ "+it.Label()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Streaks")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Text), width, sum.Distribution.String()))
	b.WriteString("\n")
	if hist := strings.TrimRight(sum.Distribution.Histogram(), "\n"); hist != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Secondary).Render(hist)))
		b.WriteString("\n")
	}

	var notes []string
	if sum.Skipped > 0 {
		notes = append(notes, fmt.Sprintf("%d mastered clip(s) skipped", sum.Skipped))
	}
	if sum.Reloads > 0 {
		notes = append(notes, fmt.Sprintf("catalog reloaded %d time(s)", sum.Reloads))
	}
	if len(notes) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Centered(theme.Hint, width, strings.Join(notes, "   ")))
		b.WriteString("\n")
	}
	if sum.PersistFailures > 0 {
		b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
			fmt.Sprintf("Warning: %d progress save(s) failed, see the log", sum.PersistFailures)))
		b.WriteString("\n")
	}

	return b.String()
}

// Summary returns the summary being shown.
func (s *SummaryScreen) Summary() *session.Summary {
	return s.summary
}
