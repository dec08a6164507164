package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datAIsolvcom/super-cv-ai/internal/config"
	"github.com/datAIsolvcom/super-cv-ai/internal/models"
)

var customizeCmd = &cobra.Command{
	Use:   "customize",
	Short: "Rewrite a CV for a job posting or to fix reported weaknesses",
	RunE:  runCustomize,
}

var (
	customizeFile    string
	customizeMode    string
	customizeContext string
	customizeDate    string
)

func init() {
	customizeCmd.Flags().StringVarP(&customizeFile, "file", "f", "", "Path to a PDF or DOCX CV (required)")
	customizeCmd.Flags().StringVarP(&customizeMode, "mode", "m", models.ModeJobDesc, "Rewrite mode: job_desc or analysis")
	customizeCmd.Flags().StringVarP(&customizeContext, "context", "c", "", "Job description (job_desc mode) or analysis feedback (analysis mode)")
	customizeCmd.Flags().StringVar(&customizeDate, "date", "", "Reference date (YYYY-MM-DD), defaults to today")
	if err := customizeCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(customizeCmd)
}

func runCustomize(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := newLogger()

	doc, err := loadDocument(cfg, customizeFile)
	if err != nil {
		return err
	}

	cvService, err := newCVService(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	req := models.CustomizeRequest{Mode: customizeMode, CurrentDate: customizeDate}
	if customizeMode == models.ModeAnalysis {
		req.AnalysisContext = customizeContext
	} else {
		req.JobDescription = customizeContext
	}

	result, err := cvService.Customize(cmd.Context(), doc, req)
	if err != nil {
		return err
	}
	if result.Degraded {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: generation failed, returning a default CV")
	}

	return writeJSON(cmd.OutOrStdout(), result.CV)
}
