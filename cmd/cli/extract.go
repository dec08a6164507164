package main

import (
	"github.com/spf13/cobra"

	"github.com/datAIsolvcom/super-cv-ai/internal/config"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract plain text from a CV without calling the generation service",
	RunE:  runExtract,
}

var extractFile string

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "Path to a PDF or DOCX CV (required)")
	if err := extractCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(extractCmd)
}

type extractOutput struct {
	Filename string `json:"filename"`
	SHA256   string `json:"sha256"`
	Length   int    `json:"length"`
	Text     string `json:"text"`
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := newLogger()

	doc, err := loadDocument(cfg, extractFile)
	if err != nil {
		return err
	}

	text, err := newParsePool(cfg, log).Extract(cmd.Context(), doc)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), extractOutput{
		Filename: doc.Filename,
		SHA256:   doc.SHA256,
		Length:   len([]rune(text)),
		Text:     text,
	})
}
