package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "earworm",
	Short: "Name-that-tune drill trainer",
	Long: "Earworm plays short clips from your music catalog and drills you on the artist and song.\n" +
		"Clips you miss come back soon; clips you know drift back, and after four correct\n" +
		"answers in a row a clip is mastered.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

// Execute runs the root command. SIGINT or SIGTERM cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file (overrides EARWORM_CONFIG)")
	pf.String("db", "", "Path to SQLite database file (overrides EARWORM_DB env var)")
	pf.String("catalog", "", "Path to the item catalog CSV (default music_qa.csv)")
	pf.StringP("user", "u", "", "User whose progress is drilled")
	pf.String("progress", "", "Progress backend: sqlite or json")
	pf.String("log-file", "", "Write the JSON log here instead of the data dir")

	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
