package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-prep/internal/ingestion"
)

var extractCmd = &cobra.Command{
	Use:   "extract-text [file]",
	Short: "Extract job description text from a file or URL",
	Long: `Extracts clean text from a text, HTML, PDF or image file, or from a job posting URL with --url.
Image files and PDFs without a text layer need GEMINI_API_KEY for recognition.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

var (
	extractURL  string
	extractMeta bool
)

func init() {
	extractCmd.Flags().StringVar(&extractURL, "url", "", "Job posting URL to fetch instead of a file")
	extractCmd.Flags().BoolVar(&extractMeta, "metadata", false, "Print extraction metadata as JSON to stderr")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (extractURL == "") {
		return fmt.Errorf("provide exactly one of a file argument or --url")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	var doc *ingestion.Document
	if extractURL != "" {
		doc, err = a.extractor.ExtractURL(ctx, extractURL)
	} else {
		doc, err = extractFile(ctx, a.extractor, args[0])
	}
	if err != nil {
		return err
	}

	if extractMeta {
		data, err := doc.Metadata.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), string(data))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.Text)
	return err
}

func extractFile(ctx context.Context, extractor *ingestion.Extractor, path string) (*ingestion.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > extractor.MaxUpload() {
		return nil, &ingestion.TooLargeError{Size: info.Size(), Limit: extractor.MaxUpload()}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return extractor.ExtractFile(ctx, filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)), data)
}
