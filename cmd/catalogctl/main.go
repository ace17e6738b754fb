// catalogctl inspects and refreshes the product category catalog.
package main

import (
	"os"

	"github.com/yourchoicemarket/llm-shop/cmd/catalogctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
