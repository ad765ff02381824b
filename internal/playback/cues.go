package playback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
)

// macOS system sounds played after a judged response.
const (
	successSound = "/System/Library/Sounds/Ping.aiff"
	buzzerSound  = "/System/Library/Sounds/Basso.aiff"
)

const closeTabScript = `tell application "Google Chrome"
	close tab 1 of window 1
end tell`

// runFunc runs an external command to completion.
type runFunc func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	if err := exec.CommandContext(ctx, name, args...).Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// Cues gives feedback after every judged response. On macOS it closes the
// clip's browser tab and plays a system sound; elsewhere it rings the
// terminal bell. Failures are logged and swallowed.
type Cues struct {
	goos     string
	run      runFunc
	bell     io.Writer
	closeTab bool
	logger   *slog.Logger
}

// NewCues creates cues for the current platform. bell receives the terminal
// bell where sounds are unavailable; closeTab controls tab cleanup on macOS.
func NewCues(bell io.Writer, closeTab bool, logger *slog.Logger) *Cues {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cues{
		goos:     runtime.GOOS,
		run:      runCommand,
		bell:     bell,
		closeTab: closeTab,
		logger:   logger,
	}
}

func (c *Cues) Signal(ctx context.Context, correct bool) {
	if c.goos != "darwin" {
		if c.bell != nil && !correct {
			fmt.Fprint(c.bell, "\a")
		}
		return
	}

	if c.closeTab {
		if err := c.run(ctx, "osascript", "-e", closeTabScript); err != nil {
			c.logger.WarnContext(ctx, "close browser tab failed", "error", err)
		}
	}
	sound := buzzerSound
	if correct {
		sound = successSound
	}
	if err := c.run(ctx, "afplay", sound); err != nil {
		c.logger.WarnContext(ctx, "play feedback sound failed", "sound", sound, "error", err)
	}
}
