// Package console is the line-mode front end: it prompts on a writer and
// reads answers line by line.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/scheduler"
	"github.com/abhisek/earworm/internal/session"
)

// Console reads responses from in and writes prompts and feedback to out.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	once   sync.Once
	lines  chan line
	done   chan struct{}
	exited chan struct{}
	closed sync.Once
}

type line struct {
	text string
	err  error
}

var (
	_ session.Responder = (*Console)(nil)
	_ session.Reporter  = (*Console)(nil)
)

// quitWord typed at an answer prompt ends the session.
const quitWord = "q"

// New creates a console over in and out. Call Close when done with it.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// Close stops the background reader once its pending read returns.
func (c *Console) Close() error {
	c.closed.Do(func() { close(c.done) })
	return nil
}

// readLines feeds input lines to c.lines until the first read error or Close.
func (c *Console) readLines() {
	defer close(c.exited)
	defer close(c.lines)
	for {
		text, err := c.in.ReadString('\n')
		select {
		case c.lines <- line{text: text, err: err}:
		case <-c.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// ask prints prompt and returns the next input line without its newline.
// End of input means the learner is done. Cancelling ctx abandons the read.
func (c *Console) ask(ctx context.Context, prompt string) (string, error) {
	c.once.Do(func() {
		c.lines = make(chan line, 1)
		go c.readLines()
	})

	fmt.Fprint(c.out, prompt)
	var l line
	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case got, ok := <-c.lines:
		if !ok {
			got.err = io.EOF
		}
		l = got
	}

	if l.err != nil {
		if errors.Is(l.err, io.EOF) && l.text == "" {
			fmt.Fprintln(c.out)
			return "", session.ErrQuit
		}
		if !errors.Is(l.err, io.EOF) {
			return "", fmt.Errorf("read input: %w", l.err)
		}
	}
	return strings.TrimRight(l.text, "\r\n"), nil
}

// askAnswer is ask for prompts where typing q quits.
func (c *Console) askAnswer(ctx context.Context, prompt string) (string, error) {
	text, err := c.ask(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(strings.TrimSpace(text), quitWord) {
		return "", session.ErrQuit
	}
	return text, nil
}

// Respond collects a response for item in the given mode.
func (c *Console) Respond(ctx context.Context, mode session.Mode, item catalog.Item) (session.Response, error) {
	switch mode {
	case session.ModeNormal:
		artist, err := c.askAnswer(ctx, "Enter the artist name: ")
		if err != nil {
			return session.Response{}, err
		}
		song, err := c.askAnswer(ctx, "Enter the song name: ")
		if err != nil {
			return session.Response{}, err
		}
		return session.Response{Parts: []string{artist, song}}, nil

	case session.ModeSelfAssessment:
		if _, err := c.ask(ctx, "Press Enter to reveal the answer..."); err != nil {
			return session.Response{}, err
		}
		fmt.Fprintf(c.out, "Answer: %s\n", item.Label())
		yn, err := c.askAnswer(ctx, "Did you know the answer? (y/n): ")
		if err != nil {
			return session.Response{}, err
		}
		return session.Response{Known: strings.ToLower(strings.TrimSpace(yn)) == "y"}, nil
	}
	return session.Response{}, fmt.Errorf("%w: %q", session.ErrInvalidPlayMode, mode)
}

// Skipped announces items already mastered.
func (c *Console) Skipped(_ context.Context, items []catalog.Item) {
	for _, it := range items {
		fmt.Fprintf(c.out, "Skipping %s - already completed\n", it.Stimulus)
	}
}

// Judged reveals the answer and prints the streak distribution.
func (c *Console) Judged(_ context.Context, out scheduler.Outcome) {
	switch {
	case out.Correct && out.Mastered():
		fmt.Fprintf(c.out, "Correct! The correct answer was %s. - DONE!\n", out.Item.Label())
	case out.Correct:
		fmt.Fprintf(c.out, "Correct! The correct answer was %s. - new position: %d\n", out.Item.Label(), out.Position)
	default:
		fmt.Fprintf(c.out, "Incorrect! The correct answer was %s. new position: %d\n", out.Item.Label(), out.Position)
	}
	if out.PersistErr != nil {
		fmt.Fprintf(c.out, "Warning: progress not saved: %v\n", out.PersistErr)
	}
	fmt.Fprintf(c.out, "Streak distribution: %s\n", out.Distribution)
	fmt.Fprint(c.out, out.Distribution.Histogram())
}

// PromptMode asks for the play mode by menu number or name.
func (c *Console) PromptMode(ctx context.Context) (session.Mode, error) {
	fmt.Fprintln(c.out, "Choose play mode:")
	for i, m := range session.Modes {
		fmt.Fprintf(c.out, "%d: %s\n", i+1, m.Description())
	}
	choice, err := c.ask(ctx, "Enter 1 or 2: ")
	if err != nil {
		return "", err
	}
	return session.ParseMode(choice)
}

// PromptUser asks for the user name.
func (c *Console) PromptUser(ctx context.Context) (string, error) {
	name, err := c.ask(ctx, "Enter your username: ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// Confirm asks a yes/no question; only "y" or "yes" confirms.
func (c *Console) Confirm(ctx context.Context, prompt string) (bool, error) {
	answer, err := c.ask(ctx, prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// PrintSummary prints the end-of-session report.
func (c *Console) PrintSummary(sum *session.Summary) {
	fmt.Fprintln(c.out)
	if sum.Exhausted {
		fmt.Fprintln(c.out, "All items done for this session.")
	}
	fmt.Fprintf(c.out, "Answered %d, correct %d (%.0f%%) in %s\n",
		sum.Turns, sum.Correct, sum.Accuracy*100, sum.Duration.Round(time.Second))
	if n := len(sum.Mastered); n > 0 {
		fmt.Fprintf(c.out, "Mastered this session: %d\n", n)
		for _, it := range sum.Mastered {
			fmt.Fprintf(c.out, "  %s\n", it.Label())
		}
	}
	if sum.Reloads > 0 {
		fmt.Fprintf(c.out, "Catalog reloaded %d time(s)\n", sum.Reloads)
	}
	fmt.Fprintf(c.out, "Streak distribution: %s\n", sum.Distribution)
}
