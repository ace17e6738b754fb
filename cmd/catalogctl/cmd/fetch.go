package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
	"github.com/yourchoicemarket/llm-shop/internal/config"
	"github.com/yourchoicemarket/llm-shop/internal/printful"
)

// categorySource is the part of the Printful client fetch needs.
type categorySource interface {
	GetCategories(ctx context.Context) ([]catalog.Category, error)
}

// newCategorySource is replaced in tests.
var newCategorySource = func(cfg *config.Config) categorySource {
	return printful.NewClient(printful.ClientOpts{
		BaseURL: cfg.PrintfulBaseURL,
		Token:   cfg.PrintfulAPIKey,
		StoreID: cfg.PrintfulStoreID,
	})
}

func newFetchCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the category catalog from Printful",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.PrintfulAPIKey == "" {
				return fmt.Errorf("PRINTFUL_API_KEY is not set")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			categories, err := newCategorySource(cfg).GetCategories(ctx)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := catalog.WriteCategories(w, categories); err != nil {
				return fmt.Errorf("failed to write categories: %w", err)
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d categories to %s\n", len(categories), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
