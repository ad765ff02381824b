package session

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/earworm/internal/ui/components"
	"github.com/abhisek/earworm/internal/ui/theme"
)

// renderTurnView renders the clip being played and the answer prompt.
func (s *SessionScreen) renderTurnView(width, height int) string {
	state := s.state
	if state.Current == nil {
		return renderLoading(width, height)
	}
	turn := state.Current

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Clip #%d  streak %d", turn.Item.ID, turn.Streak))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Turn %d  %s %d  %d queued  %s",
			state.Turns+1,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			state.Correct,
			s.cfg.Scheduler.Remaining(),
			formatClock(state.Elapsed),
		))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	for _, it := range s.lastSkipped {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  Skipping %s - already completed", it.Stimulus)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Text).Bold(true), width, "♪ Now playing ♪"))
	b.WriteString("\n")
	playing := turn.Item.Stimulus
	if turn.Offset != nil {
		playing += fmt.Sprintf("  (from %s)", formatClock(time.Duration(*turn.Offset)*time.Second))
	}
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, playing))
	b.WriteString("\n")
	if s.presentErr != "" {
		b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width, "Could not open the clip: "+s.presentErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(s.renderPrompt(width))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Mastered", s.cfg.Scheduler.Distribution().Done, len(s.cfg.Scheduler.Items()), min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))

	return b.String()
}

// renderPrompt renders the input for the current step.
func (s *SessionScreen) renderPrompt(width int) string {
	item := s.state.Current.Item
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	switch s.step {
	case stepArtist:
		return center(s.input.View())
	case stepSong:
		artist := lipgloss.NewStyle().Foreground(theme.TextDim).Render("Artist: " + s.parts[0])
		return center(artist) + "\n" + center(s.input.View())
	case stepReveal:
		return theme.Centered(theme.Hint, width, "Press Enter to reveal the answer...")
	case stepKnown:
		answer := theme.Centered(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true), width, "Answer: "+item.Label())
		ask := theme.Centered(lipgloss.NewStyle().Foreground(theme.Text), width, "Did you know the answer? (y/n)")
		return answer + "\n\n" + ask
	}
	return ""
}

// renderFeedback renders the verdict for the last response.
func (s *SessionScreen) renderFeedback(width, height int) string {
	out := s.state.LastOutcome
	if out == nil {
		return renderLoading(width, height)
	}

	var b strings.Builder
	b.WriteString("\n\n")

	if out.Correct {
		b.WriteString(theme.Centered(theme.Correct, width, "Correct!"))
	} else {
		b.WriteString(theme.Centered(theme.Incorrect, width, "Incorrect!"))
	}
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Text), width,
		fmt.Sprintf("The correct answer was %s.", out.Item.Label())))
	b.WriteString("\n\n")

	switch {
	case out.Mastered():
		b.WriteString(theme.Centered(theme.Mastered, width, "DONE! Mastered and retired for this session."))
	default:
		b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width,
			fmt.Sprintf("streak %d - new position: %d", out.Transition.Streak, out.Position)))
	}
	b.WriteString("\n")

	if out.PersistErr != nil {
		b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
			"Warning: progress not saved: "+out.PersistErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(renderDistribution(out.Distribution.String(), out.Distribution.Histogram(), width))
	b.WriteString("\n")

	b.WriteString(theme.Centered(theme.Hint, width, "Press any key to continue..."))
	return b.String()
}

func renderDistribution(line, histogram string, width int) string {
	var b strings.Builder
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "Streak distribution: "+line))
	b.WriteString("\n")
	hist := lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.TrimRight(histogram, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, hist))
	b.WriteString("\n")
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Text).Bold(true), width, "End session early?"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "Your streaks are already saved."))
	b.WriteString("\n\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Success), width, "[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Primary), width, "[N] No, keep going"))
	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width, height int) string {
	return theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "\n\n\n  Shuffling the playlist...")
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
		fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to exit.", errMsg))
}

// formatClock renders d as m:ss.
func formatClock(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
