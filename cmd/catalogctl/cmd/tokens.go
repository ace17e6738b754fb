package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <text>",
		Short: "Print the tokens the matcher sees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for token := range catalog.Tokenize(strings.Join(args, " ")) {
				fmt.Fprintln(out, token)
			}
			return nil
		},
	}
}
