package cmd

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show streaks and per-clip accuracy",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		if rt.cfg.User == "" {
			users, err := rt.store.ProgressRepo().Users(ctx)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(w, "No progress recorded yet.")
				return nil
			}
			fmt.Fprintln(w, "Users with progress (pick one with --user):")
			for _, u := range users {
				fmt.Fprintf(w, "  %s\n", u)
			}
			return nil
		}
		user := rt.cfg.User

		items, err := rt.catalog().Load(ctx)
		if err != nil {
			return err
		}
		tracker, err := rt.openTracker(ctx, user)
		if err != nil {
			return err
		}

		ids := make([]int, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		dist := tracker.Distribution(ids)
		fmt.Fprintf(w, "User:      %s\n", user)
		fmt.Fprintf(w, "Clips:     %d\n", len(items))
		fmt.Fprintf(w, "Mastered:  %d\n", dist.Done)
		fmt.Fprintf(w, "Streak distribution: %s\n", dist)
		fmt.Fprint(w, dist.Histogram())

		snap, err := rt.store.SnapshotRepo().Latest(ctx, user)
		if err != nil {
			return err
		}
		if snap != nil {
			fmt.Fprintf(w, "Last session: %s (%d mastered)\n",
				snap.Timestamp.Local().Format("2006-01-02 15:04"), snap.Data.Mastered)
		}

		acc, err := rt.store.EventRepo().ItemAccuracy(ctx, user)
		if err != nil {
			return err
		}
		if len(acc) == 0 {
			return nil
		}
		printAccuracy(cmd, acc, items, limit)
		return nil
	},
}

// printAccuracy lists the clips with the lowest hit rate first.
func printAccuracy(cmd *cobra.Command, acc []store.ItemAccuracy, items []catalog.Item, limit int) {
	byID := make(map[int]catalog.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	slices.SortStableFunc(acc, func(a, b store.ItemAccuracy) int {
		return cmp.Or(
			cmp.Compare(a.Rate(), b.Rate()),
			cmp.Compare(b.Attempts, a.Attempts),
			cmp.Compare(a.ItemID, b.ItemID),
		)
	})
	if limit > 0 && len(acc) > limit {
		acc = acc[:limit]
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\nHardest clips\n")
	fmt.Fprintf(w, "%-5s  %-40s  %8s  %7s  %6s\n", "ID", "Answer", "Attempts", "Correct", "Rate")
	fmt.Fprintln(w, strings.Repeat("─", 74))
	for _, a := range acc {
		label := "(removed from catalog)"
		if it, ok := byID[a.ItemID]; ok {
			label = it.Label()
		}
		fmt.Fprintf(w, "%-5d  %-40s  %8d  %7d  %5.0f%%\n",
			a.ItemID, truncate(label, 40), a.Attempts, a.Correct, a.Rate()*100)
	}
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 10, "Number of clips to show in the accuracy table")
}
