package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/earworm/internal/console"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear a user's streaks",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		user, err := rt.requireUser()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		w := cmd.OutOrStdout()
		if !yes {
			con := console.New(cmd.InOrStdin(), w)
			defer con.Close()
			ok, err := con.Confirm(ctx,
				fmt.Sprintf("Reset all progress for %s? (y/n): ", user))
			if err != nil {
				return quietQuit(err)
			}
			if !ok {
				fmt.Fprintln(w, "Nothing changed.")
				return nil
			}
		}

		tracker, err := rt.openTracker(ctx, user)
		if err != nil {
			return err
		}
		if err := tracker.Reset(ctx); err != nil {
			return fmt.Errorf("reset progress for %s: %w", user, err)
		}
		rt.logger.Info("progress reset", "user", user, "backend", rt.cfg.ProgressBackend)
		fmt.Fprintf(w, "Progress for %s cleared.\n", user)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
