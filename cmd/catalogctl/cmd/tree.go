package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the category hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex()
			if err != nil {
				return err
			}
			tree := catalog.BuildTree(idx.Categories())
			for _, root := range tree.Roots() {
				printNode(cmd.OutOrStdout(), root, 0)
			}
			return nil
		},
	}
}

func printNode(w io.Writer, node *catalog.Node, depth int) {
	fmt.Fprintf(w, "%s%s (%d)\n", strings.Repeat("  ", depth), node.Title, node.ID)
	for _, child := range node.Children {
		printNode(w, child, depth+1)
	}
}
