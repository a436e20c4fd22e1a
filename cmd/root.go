package cmd

import (
	"github.com/spf13/cobra"

	"github.com/storefront-labs/backend-integration/internal/cmd"
	"github.com/storefront-labs/backend-integration/internal/flags"
)

// RootCmd represents the top-level command.
type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the root command and runs it against os.Args.
func Execute() error {
	rootCmd, err := NewRootCmd(&RootCmd{BaseCmd: &cmd.BaseCmd{}})
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

// NewRootCmd creates the root command with all sub-commands attached.
func NewRootCmd(c *RootCmd) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:          cmd.AppName + " <command> [args]",
		Short:        "Reports the health of the backend integration and its downstream platforms.",
		Long:         c.longDescription(),
		SilenceUsage: true,
		Version:      cmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	fns := []func(baseCmd *cmd.BaseCmd) (*cobra.Command, error){
		NewDaemonCmd,
		NewDocsCmd,
	}

	for _, fn := range fns {
		subCmd, err := fn(c.BaseCmd)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(subCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `The 'backend-integration' service exposes liveness and health detail endpoints that report
whether the configured Shopify store (and any additional downstream services) can be reached,
and how long it took. It can also export its OpenAPI document for publishing.`
}
