package main

import (
	"github.com/spf13/cobra"

	"github.com/datAIsolvcom/super-cv-ai/internal/config"
	"github.com/datAIsolvcom/super-cv-ai/internal/models"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a CV against a job description and extract its structure",
	Long:  "Scores a CV on six criteria against an inline job description, a job posting URL, or general industry standards when neither is given.",
	RunE:  runAnalyze,
}

var (
	analyzeFile           string
	analyzeJobDescription string
	analyzeJobURL         string
	analyzeDate           string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Path to a PDF or DOCX CV (required)")
	analyzeCmd.Flags().StringVarP(&analyzeJobDescription, "job-description", "j", "", "Job description text")
	analyzeCmd.Flags().StringVarP(&analyzeJobURL, "job-url", "u", "", "Job posting URL to fetch when no description is given")
	analyzeCmd.Flags().StringVar(&analyzeDate, "date", "", "Reference date (YYYY-MM-DD), defaults to today")
	if err := analyzeCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := newLogger()

	doc, err := loadDocument(cfg, analyzeFile)
	if err != nil {
		return err
	}

	cvService, err := newCVService(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	result, err := cvService.Analyze(cmd.Context(), doc, models.AnalyzeRequest{
		JobDescription: analyzeJobDescription,
		JobURL:         analyzeJobURL,
		CurrentDate:    analyzeDate,
	})
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), result)
}
