package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/54b3r/docsearch-go/internal/logging"
)

// NewClearCmd constructs the `docsearch clear` command, which removes every
// stored passage from the vector store.
func NewClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all indexed passages from the vector store",
		Long: `Delete every stored passage. The collection itself is kept, so the next
ingest works without re-creating it. This cannot be undone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			store, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("clear: %w", err)
			}
			defer store.Close()

			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("clear: %w", err)
			}

			fmt.Println("Vector store cleared.")
			return nil
		},
	}
}
