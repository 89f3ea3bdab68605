package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/palette/internal/catalog"
	"github.com/abelbrown/palette/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank <query>",
	Short: "Print the ranked catalog for a query",
	Long: `Rank builds the same catalog the TUI shows and prints the items that
match query, best first. An empty query prints the whole catalog.

  palette rank bug
  palette rank "new conv" --scores`,
	Args: cobra.ArbitraryArgs,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().Bool("scores", false, "Show composite scores")
	rankCmd.Flags().String("cwd", "", "Workspace directory (enables the diff action)")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	showScores, _ := cmd.Flags().GetBool("scores")
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd == "" {
		cwd = cfg.Workspace.Cwd
	}

	st, err := openSyncedStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	convs, err := st.Conversations(cmd.Context())
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}

	items := catalog.Build(catalog.DefaultActions(), convs, catalog.Capabilities{HasCwd: cwd != ""})
	query := strings.Join(args, " ")
	scored := ranking.NewIndex(items).Scores(query)

	out := cmd.OutOrStdout()
	if len(scored) == 0 {
		fmt.Fprintln(out, "No results found")
		return nil
	}
	for _, s := range scored {
		if showScores {
			fmt.Fprintf(out, "%8.2f  %-20s %s\n", s.Score, s.Item.ID, s.Item.Title)
		} else {
			fmt.Fprintf(out, "%-20s %s\n", s.Item.ID, s.Item.Title)
		}
	}
	return nil
}
