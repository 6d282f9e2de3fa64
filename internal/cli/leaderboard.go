package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"daily-guess-service/internal/config"
	"daily-guess-service/internal/domain"
	"github.com/spf13/cobra"
)

// NewLeaderboardCmd prints the current leaderboard from the configured store.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the current leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := newLogger(os.Stderr, cfg)

			store, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			guesses, _, err := newServices(store, cfg, logger)
			if err != nil {
				return err
			}
			entries, err := guesses.Leaderboard(ctx)
			if err != nil {
				return err
			}
			return printLeaderboard(cmd.OutOrStdout(), entries, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "only print the first n rows")
	return cmd
}

func printLeaderboard(w io.Writer, entries []domain.LeaderboardEntry, limit int) error {
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tSCORE\tCORRECT")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", i+1, e.DisplayName, e.Score, e.Correct)
	}
	return tw.Flush()
}
