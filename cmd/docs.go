package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/storefront-labs/backend-integration/internal/api"
	"github.com/storefront-labs/backend-integration/internal/cmd"
	"github.com/storefront-labs/backend-integration/internal/domain"
)

// openAPIFilename is the part of the exported file name identifying this API.
const openAPIFilename = "backend-integration"

// stubHealthReporter satisfies route registration; the OpenAPI document only needs route definitions.
type stubHealthReporter struct{}

func (s *stubHealthReporter) Details(context.Context) (domain.HealthDetails, error) {
	return domain.HealthDetails{}, nil
}

// DocsOpenAPICmd should be used to represent the 'docs openapi' command.
type DocsOpenAPICmd struct {
	*cmd.BaseCmd
	Format cmd.DocumentFormat
}

// NewDocsCmd creates the 'docs' command group.
func NewDocsCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	docsCmd := &cobra.Command{
		Use:   "docs",
		Short: "Generates documentation artifacts",
	}

	fns := []func(baseCmd *cmd.BaseCmd) (*cobra.Command, error){
		NewDocsOpenAPICmd,
		NewDocsCLICmd,
	}

	for _, fn := range fns {
		subCmd, err := fn(baseCmd)
		if err != nil {
			return nil, err
		}
		docsCmd.AddCommand(subCmd)
	}

	return docsCmd, nil
}

// NewDocsOpenAPICmd creates a newly configured (Cobra) command.
func NewDocsOpenAPICmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &DocsOpenAPICmd{
		BaseCmd: baseCmd,
		Format:  cmd.FormatJSON,
	}

	cobraCommand := &cobra.Command{
		Use:   "openapi <version_name> <local_output_dir> <url>",
		Short: "Writes the OpenAPI document to disk and prints a Markdown link to it",
		Long: "Writes '<version_name>_" + openAPIFilename + "_openapi.<format>' into <local_output_dir> " +
			"and prints a Markdown link to where the file will be published, i.e. '<url><filename>'.\n\n" +
			"  version_name:     code version name, e.g. git branch name\n" +
			"  local_output_dir: path on disk where to put the generated files\n" +
			"  url:              URL where the files will be accessible online",
		Args: cobra.ExactArgs(3),
		RunE: c.run,
	}

	allowed := cmd.AllowedDocumentFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCommand, nil
}

func (c *DocsOpenAPICmd) run(cobraCmd *cobra.Command, args []string) error {
	logger := c.Logger().Named("docs")

	versionName := strings.TrimSpace(args[0])
	outputDir := strings.TrimSpace(args[1])
	url := strings.TrimSpace(args[2])

	if versionName == "" || strings.ContainsAny(versionName, `/\`) {
		return fmt.Errorf("invalid version name '%s': must be non-empty and contain no path separators", args[0])
	}
	if outputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	doc, err := c.render(OpenAPIDocument())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	filename := fmt.Sprintf("%s_%s_openapi.%s", versionName, openAPIFilename, c.Format.Extension())
	outputPath := filepath.Join(outputDir, filename)
	if err := os.WriteFile(outputPath, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write OpenAPI document '%s': %w", outputPath, err)
	}

	logger.Info("OpenAPI spec generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(doc)))

	_, _ = fmt.Fprintf(cobraCmd.OutOrStdout(), "[%s](%s%s)\n", api.Title, url, filename)

	return nil
}

func (c *DocsOpenAPICmd) render(doc *huma.OpenAPI) ([]byte, error) {
	switch c.Format {
	case cmd.FormatYAML:
		b, err := doc.YAML()
		if err != nil {
			return nil, fmt.Errorf("failed to generate OpenAPI YAML: %w", err)
		}
		return b, nil
	default:
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to generate OpenAPI JSON: %w", err)
		}
		return b, nil
	}
}

// OpenAPIDocument builds the OpenAPI document from the same route registration the daemon uses.
func OpenAPIDocument() *huma.OpenAPI {
	router := api.NewRouter(chi.NewMux(), cmd.Version())

	// Registration only fails on nil arguments, neither of which can occur here.
	_ = api.RegisterRoutes(router, &stubHealthReporter{})

	return router.OpenAPI()
}
