// Package commands defines all Cobra CLI commands for the docsearch binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/54b3r/docsearch-go/internal/audit"
	"github.com/54b3r/docsearch-go/internal/config"
	"github.com/54b3r/docsearch-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docsearch",
		Short: "docsearch — semantic search over your PDF documents",
		Long: `docsearch is a local-first semantic search engine for PDF documents.

It extracts text from PDFs page by page, splits it into overlapping
passages, embeds each passage, and stores the vectors for similarity
search. Queries return the most relevant passages with their source
document and page number.

The embedding backend is selected via the EMBEDDING_PROVIDER environment
variable or a YAML config file (~/.docsearch/config.yaml).
See 'docsearch --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Load .env from the working directory when present. Real env
			// vars still win over .env values.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.docsearch/config.yaml)")

	root.AddCommand(
		NewIngestCmd(),
		NewSearchCmd(),
		NewClearCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
