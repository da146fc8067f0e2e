package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/pipeline"
	"github.com/ppiankov/dii/internal/sheet"
	"github.com/ppiankov/dii/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	xlsxPath     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Assess many organizations from a sheet or URL list in parallel",
	Long: `Batch assesses every row of an input file concurrently and writes one
JSON and Markdown report per organization.

Input formats:
- .xlsx or .csv with a header row. Recognized columns include name, url,
  industry, description, country, employees, archetype, and one column per
  dimension (TRD, AER, HFP, BRI, RRG) holding the raw metric.
- any other file: one website URL per line, # for comments.

Example:
  dii batch companies.xlsx
  dii batch companies.csv --concurrency 8 --xlsx summary.xlsx
  dii batch urls.txt --output-dir ./reports --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for reports (default from output.dir)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write a summary workbook to this path")

	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the classification cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&noRobots, "ignore-robots", false, "do not consult robots.txt before fetching")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "narrative provider (openai, anthropic, ollama); empty disables it")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "narrative model name")
}

func readBatchInputs(path string) ([]model.AssessmentInput, error) {
	if sheet.IsSheet(path) {
		return sheet.ReadFile(path)
	}
	urls, err := worker.ReadURLsFromFile(path)
	if err != nil {
		return nil, err
	}
	return worker.InputsFromURLs(urls), nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	log := newLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  dii Batch Assessment\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  Narrative:    %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	inputs, err := readBatchInputs(file)
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d organizations\n\n", len(inputs))

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := newPipeline(cfg, log)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, log)
	results := processor.Process(ctx, inputs)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Subject, result.Error)
			continue
		}

		slug := sanitizeFilename(result.Report.Subject)
		jsonPath := filepath.Join(cfg.Output.Dir, slug+".json")
		mdPath := filepath.Join(cfg.Output.Dir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Subject, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Subject, err)
			continue
		}

		c := result.Report.Composite
		fmt.Fprintf(os.Stderr, "✓ %s (%.1f/10 %s)\n", result.Report.Subject, c.Score, c.Stage)
	}

	if xlsxPath != "" {
		if err := sheet.SaveResults(xlsxPath, results); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote workbook: %s\n", xlsxPath)
	}

	summary := worker.Summarize(results)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d\n", summary.Total)
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", summary.Succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", summary.Failed)
	for _, stage := range summary.Stages() {
		fmt.Fprintf(os.Stderr, "  %-10s %d\n", string(stage)+":", summary.ByStage[stage])
	}
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns a subject or URL into a safe file name
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	s = strings.Trim(filenameReplacer.Replace(s), "._-")
	if s == "" {
		s = "report"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
