// Command docsearch is the entry point for the PDF document search engine.
// It provides a CLI interface (via Cobra) for ingesting and querying PDF
// documents, and an optional HTTP server exposing the same pipelines.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/docsearch-go/cmd/docsearch/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
