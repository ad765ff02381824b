package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		user, err := rt.requireUser()
		if err != nil {
			return err
		}

		sessions, err := rt.store.EventRepo().QuerySessionSummaries(cmd.Context(), user, limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintf(w, "No sessions recorded for %s.\n", user)
			return nil
		}

		fmt.Fprintf(w, "%-19s  %-15s  %5s  %7s  %5s  %8s  %8s\n",
			"Time", "Mode", "Turns", "Correct", "Acc", "Mastered", "Duration")
		fmt.Fprintln(w, strings.Repeat("─", 86))
		for _, s := range sessions {
			acc := 0.0
			if s.Turns > 0 {
				acc = float64(s.Correct) / float64(s.Turns) * 100
			}
			fmt.Fprintf(w, "%-19s  %-15s  %5d  %7d  %4.0f%%  %8d  %8s\n",
				s.Timestamp.Local().Format("2006-01-02 15:04:05"),
				s.Mode, s.Turns, s.Correct, acc, s.Mastered,
				(time.Duration(s.DurationSecs) * time.Second).String())
		}
		fmt.Fprintf(w, "\n%d sessions\n", len(sessions))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
}
