package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/internai/internai/internal/ingestion"
	"github.com/internai/internai/internal/pipeline"
)

var (
	optConfigPath  string
	optCandidateID string
	optJobTitle    string
	optCompany     string
	optJobFile     string
	optJobURL      string
	optSkills      []string
	optOutDir      string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run one optimization end-to-end",
	Long:  "Runs retrieval, the three generation stages, scoring, and rendering for one job posting, streaming stage text to stdout and writing the documents to the output directory.",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optConfigPath, "config", "", "Path to config.json")
	optimizeCmd.Flags().StringVar(&optCandidateID, "candidate", "", "Candidate UUID (required)")
	optimizeCmd.Flags().StringVar(&optJobTitle, "title", "", "Job title (required)")
	optimizeCmd.Flags().StringVar(&optCompany, "company", "", "Company name (required)")
	optimizeCmd.Flags().StringVarP(&optJobFile, "job", "j", "", "Path to job description text file")
	optimizeCmd.Flags().StringVar(&optJobURL, "job-url", "", "Job posting URL to ingest")
	optimizeCmd.Flags().StringSliceVar(&optSkills, "skills", nil, "Skill inventory override (comma separated)")
	optimizeCmd.Flags().StringVarP(&optOutDir, "out", "o", "out", "Output directory for rendered documents")

	_ = optimizeCmd.MarkFlagRequired("candidate")
	_ = optimizeCmd.MarkFlagRequired("title")
	_ = optimizeCmd.MarkFlagRequired("company")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if (optJobFile == "") == (optJobURL == "") {
		return fmt.Errorf("exactly one of --job or --job-url is required")
	}

	candidateID, err := uuid.Parse(optCandidateID)
	if err != nil {
		return fmt.Errorf("invalid candidate UUID: %w", err)
	}

	a, err := newApp(ctx, optConfigPath, false)
	if err != nil {
		return err
	}
	defer a.close()

	var jobDescription string
	if optJobFile != "" {
		jobDescription, err = ingestion.TextFromFile(optJobFile)
	} else {
		jobDescription, err = ingestion.JobPostingFromURL(ctx, optJobURL, a.cfg.UseBrowser, a.log)
	}
	if err != nil {
		return err
	}

	req := &pipeline.Request{
		CandidateID:    candidateID,
		JobTitle:       optJobTitle,
		Company:        optCompany,
		JobDescription: jobDescription,
		Skills:         optSkills,
	}

	outcome, err := a.coordinator.Run(ctx, req, printEvent)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(optOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := map[string][]byte{
		"tailored_resume.md": []byte(outcome.Artifact.TailoredResume),
		"cover_letter.md":    []byte(outcome.Artifact.CoverLetter),
		"review.md":          []byte(outcome.Artifact.ReviewFeedback),
	}
	for _, doc := range outcome.Documents {
		files["resume."+string(doc.Format)] = doc.Content
	}
	for name, content := range files {
		path := filepath.Join(optOutDir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	fmt.Printf("\nComposite score: %d (%s) %s\n",
		outcome.Score.CompositeScore, outcome.Score.Grade, outcome.Score.Verdict)
	fmt.Printf("Documents written to %s\n", optOutDir)
	return nil
}

// printEvent streams pipeline progress to stdout.
func printEvent(event pipeline.Event) error {
	switch event.Type {
	case pipeline.EventStageStarted:
		fmt.Printf("\n== %s ==\n", strings.ToUpper(string(event.Stage)))
	case pipeline.EventTextDelta:
		fmt.Print(event.Delta)
	case pipeline.EventStageCompleted:
		fmt.Println()
	case pipeline.EventScoreReady:
		fmt.Printf("\nScore ready: %d/100\n", event.Score.CompositeScore)
	case pipeline.EventDocumentReady:
		fmt.Printf("Rendered %s (%d page, %.1fpt)\n",
			event.Document.Format, event.Document.Pages, event.Document.FontSize)
	}
	return nil
}
