package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
)

func newMatchCmd() *cobra.Command {
	var (
		minScore int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "match <text>",
		Short: "Explain which category a text matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex()
			if err != nil {
				return err
			}

			res := catalog.Explain(strings.Join(args, " "), idx, minScore)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			if !res.OK {
				fmt.Fprintln(out, "no match")
				return nil
			}
			tree := catalog.BuildTree(idx.Categories())
			name := tree.PathString(res.CategoryID)
			if name == "" {
				name = "(not in catalog)"
			}
			fmt.Fprintf(out, "%d\t%s\n", res.CategoryID, name)
			fmt.Fprintf(out, "source: %s", res.Source)
			if res.Source == catalog.SourceOverride {
				fmt.Fprintf(out, " (%s)", res.Token)
			} else {
				fmt.Fprintf(out, ", score %d", res.Score)
			}
			fmt.Fprintln(out)

			for _, cs := range res.Scores {
				title := "?"
				if c, ok := idx.Category(cs.CategoryID); ok {
					title = c.Title
				}
				fmt.Fprintf(out, "  %4d  %-24s %d\n", cs.CategoryID, title, cs.Score)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&minScore, "min-score", catalog.DefaultMinScore, "Score needed before keyword overrides are consulted")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the match result as JSON")
	return cmd
}
