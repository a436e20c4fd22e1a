package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/storefront-labs/backend-integration/internal/cmd"
)

// DocsCLICmd should be used to represent the 'docs cli' command.
type DocsCLICmd struct {
	*cmd.BaseCmd
}

// NewDocsCLICmd creates a newly configured (Cobra) command.
func NewDocsCLICmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &DocsCLICmd{BaseCmd: baseCmd}

	cobraCommand := &cobra.Command{
		Use:   "cli <local_output_dir>",
		Short: "Writes Markdown reference pages for every command",
		Long: "Writes one Markdown page per command into <local_output_dir>. Pages left by a previous run " +
			"(files named '<app>*.md') are replaced, other files in the directory are left untouched.",
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	return cobraCommand, nil
}

func (c *DocsCLICmd) run(cobraCmd *cobra.Command, args []string) error {
	logger := c.Logger().Named("docs")

	docsPath := strings.TrimSpace(args[0])
	if docsPath == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	// Document the whole tree, not just the command that was invoked.
	rootCmd := cobraCmd.Root()
	rootCmd.DisableAutoGenTag = true

	if err := os.MkdirAll(docsPath, 0o755); err != nil {
		return fmt.Errorf("failed to create docs directory '%s': %w", docsPath, err)
	}

	removed, err := removeCommandPages(docsPath, rootCmd.Name())
	if err != nil {
		return err
	}
	logger.Debug("Removed previous command pages", "path", docsPath, "count", removed)

	if err := doc.GenMarkdownTree(rootCmd, docsPath); err != nil {
		return fmt.Errorf("failed to generate CLI docs: %w", err)
	}

	logger.Info("CLI docs generated", "path", docsPath)
	_, _ = fmt.Fprintf(cobraCmd.OutOrStdout(), "CLI docs written to %s\n", docsPath)

	return nil
}

// removeCommandPages deletes Markdown pages previously generated for the command tree rooted at rootName.
// Only regular files named '<rootName>.md' or '<rootName>_*.md' are removed.
func removeCommandPages(dir string, rootName string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read docs directory '%s': %w", dir, err)
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || filepath.Ext(name) != ".md" {
			continue
		}
		if name != rootName+".md" && !strings.HasPrefix(name, rootName+"_") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, fmt.Errorf("failed to remove stale page '%s': %w", name, err)
		}
		removed++
	}

	return removed, nil
}
