// Package main provides the internai CLI: serve the HTTP API, run a single
// optimization, or index candidate documents.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "internai",
	Short: "Resume and cover letter optimizer",
	Long:  "internai tailors resumes and cover letters to job postings using retrieval over the candidate's indexed documents, scores the result against the posting, and renders single-page export documents.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
