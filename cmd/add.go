package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/playback"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a clip to the catalog",
	Example: `  earworm add --url "https://www.youtube.com/watch?v=FGBhQbmPwH8&t=45" \
    --artist "Daft Punk" --song "One More Time"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		artist, _ := cmd.Flags().GetString("artist")
		song, _ := cmd.Flags().GetString("song")
		url, artist, song = strings.TrimSpace(url), strings.TrimSpace(artist), strings.TrimSpace(song)
		if url == "" || artist == "" || song == "" {
			return fmt.Errorf("--url, --artist and --song must not be empty")
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		file := rt.catalog()
		items, err := file.Load(ctx)
		if err != nil {
			return err
		}
		if dup, ok := findClip(items, url); ok {
			return fmt.Errorf("clip already in catalog as #%d (%s)", dup.ID, dup.Label())
		}

		added, err := file.Append(ctx, catalog.Item{
			Stimulus: url,
			Answer:   []string{artist, song},
		})
		if err != nil {
			return fmt.Errorf("add to %s: %w", displayPath(file.Path()), err)
		}
		rt.logger.Info("catalog item added", "id", added[0].ID, "catalog", file.Path())
		fmt.Fprintf(cmd.OutOrStdout(), "Added #%d: %s\n", added[0].ID, added[0].Label())
		return nil
	},
}

// findClip looks for an item with the same clip, ignoring a trailing start
// time.
func findClip(items []catalog.Item, url string) (catalog.Item, bool) {
	want := playback.StripOffset(url)
	for _, it := range items {
		if playback.StripOffset(it.Stimulus) == want {
			return it, true
		}
	}
	return catalog.Item{}, false
}

func init() {
	addCmd.Flags().String("url", "", "Clip URL; a t=<seconds> parameter sets where playback starts (required)")
	addCmd.Flags().String("artist", "", "Artist name (required)")
	addCmd.Flags().String("song", "", "Song title (required)")
	_ = addCmd.MarkFlagRequired("url")
	_ = addCmd.MarkFlagRequired("artist")
	_ = addCmd.MarkFlagRequired("song")
}
