package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/internai/internai/internal/ingestion"
	"github.com/internai/internai/internal/store"
)

var (
	indexConfigPath  string
	indexCandidateID string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index candidate documents into the context store",
}

var indexResumeCmd = &cobra.Command{
	Use:   "resume <file>",
	Short: "Index a resume text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withIndexer(func(ctx context.Context, a *app, candidateID uuid.UUID) (int, error) {
			text, err := ingestion.TextFromFile(args[0])
			if err != nil {
				return 0, err
			}
			return a.indexer.IndexResume(ctx, candidateID, text)
		})
	},
}

var (
	linkedinAboutFile       string
	linkedinExperiencesFile string
	linkedinSkillsFile      string
)

var indexLinkedInCmd = &cobra.Command{
	Use:   "linkedin",
	Short: "Index LinkedIn profile sections from text files",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withIndexer(func(ctx context.Context, a *app, candidateID uuid.UUID) (int, error) {
			var sections [3]string
			for i, path := range []string{linkedinAboutFile, linkedinExperiencesFile, linkedinSkillsFile} {
				if path == "" {
					continue
				}
				text, err := ingestion.TextFromFile(path)
				if err != nil {
					return 0, err
				}
				sections[i] = text
			}
			if sections[0] == "" && sections[1] == "" && sections[2] == "" {
				return 0, fmt.Errorf("at least one of --about, --experiences, --skills is required")
			}
			return a.indexer.IndexLinkedIn(ctx, candidateID, sections[0], sections[1], sections[2])
		})
	},
}

var indexGitHubCmd = &cobra.Command{
	Use:   "github <repos.json>",
	Short: "Index GitHub repositories from a JSON summary file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withIndexer(func(ctx context.Context, a *app, candidateID uuid.UUID) (int, error) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return 0, fmt.Errorf("failed to read repos file: %w", err)
			}
			var repos []store.GitHubRepo
			if err := json.Unmarshal(data, &repos); err != nil {
				return 0, fmt.Errorf("failed to parse repos JSON: %w", err)
			}
			return a.indexer.IndexGitHub(ctx, candidateID, repos)
		})
	},
}

func init() {
	indexCmd.PersistentFlags().StringVar(&indexConfigPath, "config", "", "Path to config.json")
	indexCmd.PersistentFlags().StringVar(&indexCandidateID, "candidate", "", "Candidate UUID (required)")
	_ = indexCmd.MarkPersistentFlagRequired("candidate")

	indexLinkedInCmd.Flags().StringVar(&linkedinAboutFile, "about", "", "Path to the About section text")
	indexLinkedInCmd.Flags().StringVar(&linkedinExperiencesFile, "experiences", "", "Path to the Experiences section text")
	indexLinkedInCmd.Flags().StringVar(&linkedinSkillsFile, "skills", "", "Path to the Skills section text")

	indexCmd.AddCommand(indexResumeCmd, indexLinkedInCmd, indexGitHubCmd)
	rootCmd.AddCommand(indexCmd)
}

func withIndexer(fn func(ctx context.Context, a *app, candidateID uuid.UUID) (int, error)) error {
	ctx := context.Background()

	candidateID, err := uuid.Parse(indexCandidateID)
	if err != nil {
		return fmt.Errorf("invalid candidate UUID: %w", err)
	}

	a, err := newApp(ctx, indexConfigPath, false)
	if err != nil {
		return err
	}
	defer a.close()

	count, err := fn(ctx, a, candidateID)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d chunks for candidate %s\n", count, candidateID)
	return nil
}
