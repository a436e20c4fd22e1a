package main

import (
	"os"

	"github.com/storefront-labs/backend-integration/cmd"
)

func main() {
	// Execute the root command; Cobra reports the error itself.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
