package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
	"github.com/yourchoicemarket/llm-shop/internal/config"
)

var (
	catalogPath   string
	overridesPath string
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Inspect the product category catalog",
		Long:         "Tokenize text, explain category matches, print the category tree and fetch the catalog from Printful.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnvFile()
		},
	}

	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Categories JSON file (default: bundled catalog)")
	root.PersistentFlags().StringVar(&overridesPath, "overrides", "", "Keyword overrides YAML file (default: bundled overrides)")

	root.AddCommand(newTokensCmd())
	root.AddCommand(newMatchCmd())
	root.AddCommand(newTreeCmd())
	root.AddCommand(newFetchCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadIndex() (*catalog.Index, error) {
	idx, err := catalog.Loader{CatalogPath: catalogPath, OverridesPath: overridesPath}.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return idx, nil
}
