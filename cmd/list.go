package cmd

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/progress"
	"github.com/abhisek/earworm/internal/scheduler"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog clips, with streaks when a user is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		queue, _ := cmd.Flags().GetBool("queue")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		items, err := rt.catalog().Load(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No clips in %s\n", displayPath(rt.cfg.Catalog))
			return nil
		}

		streakOf := func(int) int { return 0 }
		if rt.cfg.User != "" {
			tracker, err := rt.openTracker(ctx, rt.cfg.User)
			if err != nil {
				return err
			}
			streakOf = tracker.Streak
		} else if queue {
			return fmt.Errorf("--queue needs a user: pass --user or set EARWORM_USER")
		}

		if queue {
			ordered := scheduler.BuildQueue(items, streakOf, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
			var pending []catalog.Item
			for _, it := range ordered {
				if !progress.IsMastered(streakOf(it.ID)) {
					pending = append(pending, it)
				}
			}
			items = pending
		}

		printItems(cmd, items, streakOf, rt.cfg.User != "")
		return nil
	},
}

func printItems(cmd *cobra.Command, items []catalog.Item, streakOf func(int) int, withStreaks bool) {
	w := cmd.OutOrStdout()
	if withStreaks {
		fmt.Fprintf(w, "%-5s  %-28s  %-32s  %6s  %-10s\n", "ID", "Artist", "Song", "Streak", "State")
		fmt.Fprintln(w, strings.Repeat("─", 90))
	} else {
		fmt.Fprintf(w, "%-5s  %-28s  %-32s  %s\n", "ID", "Artist", "Song", "Clip")
		fmt.Fprintln(w, strings.Repeat("─", 100))
	}

	for _, it := range items {
		if withStreaks {
			s := streakOf(it.ID)
			fmt.Fprintf(w, "%-5d  %-28s  %-32s  %6d  %-10s\n",
				it.ID, truncate(it.Artist(), 28), truncate(it.Song(), 32), s, progress.StateOf(s))
			continue
		}
		fmt.Fprintf(w, "%-5d  %-28s  %-32s  %s\n",
			it.ID, truncate(it.Artist(), 28), truncate(it.Song(), 32), it.Stimulus)
	}
	fmt.Fprintf(w, "\n%d clips\n", len(items))
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	listCmd.Flags().Bool("queue", false, "Show the order the next session would play unmastered clips in")
}
