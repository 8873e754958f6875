package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/docsearch-go/internal/logging"
	"github.com/54b3r/docsearch-go/internal/search"
)

// NewSearchCmd constructs the `docsearch search` command, which runs a
// semantic query against the vector store and prints the ranked passages.
func NewSearchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed documents",
		Long: `Embed a natural language query and return the most similar passages.

Each hit shows the source document, page number, similarity score, and
the passage text. Results are ordered best first.

Examples:
  docsearch search "safety procedures for lithium batteries"
  docsearch search --top-k 10 "quarterly revenue"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)
			query := strings.Join(args, " ")

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			store, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer store.Close()

			svc, err := search.New(emb, store, getEnvInt("SEARCH_TOP_K", 5))
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			results, err := svc.Search(ctx, query, topK)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if len(results) == 0 {
				fmt.Println("No results.")
				return nil
			}

			for i, r := range results {
				fmt.Printf("%d. %s (page %d, score %.4f)\n", i+1, r.Document, r.Page, r.Score)
				fmt.Printf("   %s\n\n", r.Content)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of results to return (default: SEARCH_TOP_K or 5)")

	return cmd
}
