package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/observability"
	"github.com/jonathan/interview-prep/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate interview questions for a job description",
	Long: `Runs the full pipeline once: job analysis, domain classification, web evidence,
question extraction and generation. The job description is read from --job (a file, or - for
stdin) or fetched from --job-url.`,
	RunE: runGenerate,
}

var (
	genJob       string
	genJobURL    string
	genCount     int
	genCalibrate bool
	genJSON      bool
	genVerbose   bool
)

func init() {
	generateCmd.Flags().StringVarP(&genJob, "job", "j", "", "Path to job description file, or - for stdin")
	generateCmd.Flags().StringVar(&genJobURL, "job-url", "", "URL of a job posting to fetch")
	generateCmd.Flags().IntVar(&genCount, "count", 0, "Questions per generated category (0-10)")
	generateCmd.Flags().BoolVar(&genCalibrate, "calibrate", false, "Generate technical questions after extraction, using real questions as a depth reference")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "Print the result as JSON")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print step progress")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if genJob == "" && genJobURL == "" {
		return fmt.Errorf("either --job or --job-url must be provided")
	}
	if genJob != "" && genJobURL != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("count") {
		cfg.QuestionsPerCategory = genCount
	}
	if cmd.Flags().Changed("calibrate") {
		cfg.CalibrateTechnical = genCalibrate
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = genVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	jobDescription, err := jobDescriptionFrom(ctx, a.extractor, genJob, genJobURL, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	var opts []pipeline.RunOption
	if cfg.Verbose && !genJSON {
		opts = append(opts, pipeline.WithProgress(func(e pipeline.ProgressEvent) {
			printer.PrintStep(e.Step, e.Message, e.Count, time.Duration(e.DurationMS)*time.Millisecond)
		}))
	}

	result, err := a.orchestrator.Generate(ctx, jobDescription, opts...)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if genJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printer.PrintResult(result)
	return nil
}

// jobDescriptionFrom reads the description from a file, stdin ("-") or a URL.
func jobDescriptionFrom(ctx context.Context, extractor *ingestion.Extractor, path, url string, stdin io.Reader) (string, error) {
	if url != "" {
		doc, err := extractor.ExtractURL(ctx, url)
		if err != nil {
			return "", fmt.Errorf("failed to fetch job posting: %w", err)
		}
		return doc.Text, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}

	text := ingestion.CleanText(string(data))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("job description is empty")
	}
	return text, nil
}
