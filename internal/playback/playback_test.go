package playback

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/earworm/internal/catalog"
)

type fakeLauncher struct {
	opened []string
	err    error
}

func (l *fakeLauncher) Open(_ context.Context, target string) error {
	l.opened = append(l.opened, target)
	return l.err
}

func TestWithOffset(t *testing.T) {
	got, err := WithOffset("https://www.youtube.com/watch?v=abc123", 95)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "abc123", u.Query().Get("v"))
	assert.Equal(t, "95", u.Query().Get("t"))
}

func TestWithOffset_ReplacesExisting(t *testing.T) {
	got, err := WithOffset("https://www.youtube.com/watch?v=abc&t=30", 100)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, u.Query()["t"])
}

func TestRecordedOffset(t *testing.T) {
	tests := []struct {
		ref  string
		want int
	}{
		{"https://www.youtube.com/watch?v=abc", 0},
		{"https://www.youtube.com/watch?v=abc&t=45", 45},
		{"https://youtu.be/abc?t=12", 12},
		{"https://www.youtube.com/watch?v=abc&t=1m5s", 0},
		{"https://www.youtube.com/watch?v=abc&t=-3", 0},
		{"::not a url", 0},
	}
	for _, tt := range tests {
		if got := RecordedOffset(tt.ref); got != tt.want {
			t.Errorf("RecordedOffset(%q) = %d, want %d", tt.ref, got, tt.want)
		}
	}
}

func TestStripOffset(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", StripOffset("https://www.youtube.com/watch?v=abc&t=45"))
	assert.Equal(t, "https://youtu.be/abc", StripOffset("https://youtu.be/abc?t=12"))
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", StripOffset("https://www.youtube.com/watch?v=abc"))
}

func TestBrowser_Present(t *testing.T) {
	l := &fakeLauncher{}
	b := NewBrowser(l)
	item := catalog.Item{ID: 1, Stimulus: "https://www.youtube.com/watch?v=abc"}
	ctx := context.Background()

	require.NoError(t, b.Present(ctx, item, nil))
	off := 42
	require.NoError(t, b.Present(ctx, item, &off))

	require.Len(t, l.opened, 2)
	assert.Equal(t, item.Stimulus, l.opened[0])
	assert.Equal(t, 42, RecordedOffset(l.opened[1]))
}

func TestBrowser_LauncherError(t *testing.T) {
	b := NewBrowser(&fakeLauncher{err: errors.New("no display")})
	err := b.Present(context.Background(), catalog.Item{Stimulus: "https://x"}, nil)
	assert.Error(t, err)
}

func TestPrinter_Present(t *testing.T) {
	var buf bytes.Buffer
	off := 7
	err := NewPrinter(&buf).Present(context.Background(), catalog.Item{Stimulus: "https://x/watch?v=1"}, &off)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "Now playing: https://x/watch?"))
	assert.Contains(t, buf.String(), "t=7")
}

type recordedRun struct {
	name string
	args []string
}

func fakeCues(goos string, fail bool) (*Cues, *[]recordedRun, *bytes.Buffer) {
	var runs []recordedRun
	var bell bytes.Buffer
	c := NewCues(&bell, true, nil)
	c.goos = goos
	c.run = func(_ context.Context, name string, args ...string) error {
		runs = append(runs, recordedRun{name: name, args: args})
		if fail {
			return errors.New("command not found")
		}
		return nil
	}
	return c, &runs, &bell
}

func TestCues_Darwin(t *testing.T) {
	c, runs, bell := fakeCues("darwin", false)
	c.Signal(context.Background(), true)
	c.Signal(context.Background(), false)

	require.Len(t, *runs, 4)
	assert.Equal(t, "osascript", (*runs)[0].name)
	assert.Equal(t, []string{successSound}, (*runs)[1].args)
	assert.Equal(t, []string{buzzerSound}, (*runs)[3].args)
	assert.Empty(t, bell.String())
}

func TestCues_DarwinFailuresSwallowed(t *testing.T) {
	c, runs, _ := fakeCues("darwin", true)
	assert.NotPanics(t, func() { c.Signal(context.Background(), true) })
	assert.Len(t, *runs, 2)
}

func TestCues_OtherPlatformsRingBellOnMiss(t *testing.T) {
	c, runs, bell := fakeCues("linux", false)
	c.Signal(context.Background(), true)
	c.Signal(context.Background(), false)

	assert.Empty(t, *runs)
	assert.Equal(t, "\a", bell.String())
}
