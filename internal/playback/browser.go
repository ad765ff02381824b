package playback

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"

	"github.com/abhisek/earworm/internal/catalog"
)

// offsetParam is the query parameter carrying the start time in seconds.
const offsetParam = "t"

// Launcher opens a target in an external application.
type Launcher interface {
	Open(ctx context.Context, target string) error
}

// OSLauncher opens targets with the platform's default handler.
type OSLauncher struct{}

// NewOSLauncher returns a launcher for the current platform.
func NewOSLauncher() *OSLauncher {
	return &OSLauncher{}
}

func (l *OSLauncher) Open(_ context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("external open is not supported on %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open external target: %w", err)
	}
	// Reap the launcher process without blocking the session.
	go cmd.Wait()
	return nil
}

// Browser presents an item by opening its stimulus URL.
type Browser struct {
	launcher Launcher
}

// NewBrowser creates a presenter that opens stimuli through launcher.
func NewBrowser(launcher Launcher) *Browser {
	return &Browser{launcher: launcher}
}

// Present opens the item's stimulus, starting at offset seconds when set.
func (b *Browser) Present(ctx context.Context, item catalog.Item, offset *int) error {
	target := item.Stimulus
	if offset != nil {
		var err error
		if target, err = WithOffset(target, *offset); err != nil {
			return err
		}
	}
	return b.launcher.Open(ctx, target)
}

// Printer presents an item by printing its stimulus URL. Used when no
// browser should be opened.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a presenter writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Present(_ context.Context, item catalog.Item, offset *int) error {
	target := item.Stimulus
	if offset != nil {
		var err error
		if target, err = WithOffset(target, *offset); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.w, "Now playing: %s\n", target)
	return err
}

// WithOffset returns ref with its start time set to offset seconds.
func WithOffset(ref string, offset int) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse stimulus %q: %w", ref, err)
	}
	q := u.Query()
	q.Set(offsetParam, strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RecordedOffset returns the start time already recorded in ref, or 0 when
// there is none or it is not a whole number of seconds.
func RecordedOffset(ref string) int {
	u, err := url.Parse(ref)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get(offsetParam))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var trailingOffset = regexp.MustCompile(`[&?]t=\d+$`)

// StripOffset removes a trailing start time so two references to the same
// clip compare equal.
func StripOffset(ref string) string {
	return trailingOffset.ReplaceAllString(ref, "")
}
