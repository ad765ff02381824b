package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/earworm/internal/app"
	"github.com/abhisek/earworm/internal/console"
	"github.com/abhisek/earworm/internal/playback"
	"github.com/abhisek/earworm/internal/progress"
	"github.com/abhisek/earworm/internal/scheduler"
	"github.com/abhisek/earworm/internal/screen"
	"github.com/abhisek/earworm/internal/screens/modeselect"
	sessionscreen "github.com/abhisek/earworm/internal/screens/session"
	"github.com/abhisek/earworm/internal/screens/summary"
	"github.com/abhisek/earworm/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a drill session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("mode", "m", "", "Play mode: normal or self-assessment (asked when unset)")
	cmd.Flags().Bool("plain", false, "Use line-by-line prompts instead of the full-screen UI")
	cmd.Flags().Bool("no-open", false, "Print clip URLs instead of opening them in the browser")
}

// runPlay resolves the user and mode, then runs a session in the TUI or,
// with --plain, on the console.
func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	plain, _ := cmd.Flags().GetBool("plain")
	out := cmd.OutOrStdout()
	con := console.New(cmd.InOrStdin(), out)
	defer con.Close()

	user := rt.cfg.User
	if user == "" {
		if user, err = con.PromptUser(ctx); err != nil {
			return quietQuit(err)
		}
	}
	if err := progress.ValidateUser(user); err != nil {
		return err
	}

	var mode session.Mode
	if rt.cfg.PlayMode != "" {
		if mode, err = session.ParseMode(rt.cfg.PlayMode); err != nil {
			return err
		}
	} else if plain {
		if mode, err = con.PromptMode(ctx); err != nil {
			return quietQuit(err)
		}
	}

	tracker, err := rt.openTracker(ctx, user)
	if err != nil {
		return err
	}
	sched := scheduler.New(scheduler.Config{
		Catalog:        rt.catalog(),
		Tracker:        tracker,
		RecordedOffset: playback.RecordedOffset,
		Logger:         rt.logger,
	})
	recorder := session.NewRecorder(rt.store.EventRepo(), rt.store.SnapshotRepo(), rt.logger)
	rt.logger.Info("play", "user", user, "mode", mode, "plain", plain, "catalog", rt.cfg.Catalog)

	if plain {
		return playConsole(ctx, rt, con, out, sched, mode, recorder)
	}
	return playTUI(rt, out, sched, user, mode, recorder)
}

func playConsole(ctx context.Context, rt *runtime, con *console.Console, out io.Writer, sched *scheduler.Scheduler, mode session.Mode, recorder *session.Recorder) error {
	var presenter session.Presenter = playback.NewPrinter(out)
	if rt.cfg.OpenBrowser {
		presenter = playback.NewBrowser(playback.NewOSLauncher())
	}

	runner, err := session.NewRunner(session.Config{
		Scheduler: sched,
		Mode:      mode,
		Presenter: presenter,
		Responder: con,
		Feedback:  playback.NewCues(out, rt.cfg.OpenBrowser, rt.logger),
		Reporter:  con,
		Recorder:  recorder,
		Logger:    rt.logger,
	})
	if err != nil {
		return err
	}

	sum, err := runner.Run(ctx)
	if sum != nil {
		con.PrintSummary(sum)
	}
	return withCatalogHint(err, rt.cfg.Catalog)
}

func playTUI(rt *runtime, out io.Writer, sched *scheduler.Scheduler, user string, mode session.Mode, recorder *session.Recorder) error {
	// The drill screen shows the clip URL itself, so only a browser presents.
	var presenter session.Presenter
	if rt.cfg.OpenBrowser {
		presenter = playback.NewBrowser(playback.NewOSLauncher())
	}
	feedback := playback.NewCues(io.Discard, rt.cfg.OpenBrowser, rt.logger)

	start := func(m session.Mode) screen.Screen {
		return sessionscreen.New(sessionscreen.Config{
			Scheduler: sched,
			Mode:      m,
			Presenter: presenter,
			Feedback:  feedback,
			Recorder:  recorder,
			Logger:    rt.logger,
		})
	}

	var first screen.Screen
	if mode == "" {
		first = modeselect.New(user, rt.store.SnapshotRepo(), rt.store.EventRepo(), start)
	} else {
		first = start(mode)
	}

	final, err := app.Run(first)
	if err != nil {
		return err
	}

	var sum *session.Summary
	switch s := final.(type) {
	case *summary.SummaryScreen:
		sum = s.Summary()
	case *sessionscreen.SessionScreen:
		sum = s.Summary()
	}
	if sum != nil {
		console.New(nil, out).PrintSummary(sum)
	}
	return nil
}
