package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ppiankov/dii/internal/cache"
	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/classify"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/pipeline"
	"github.com/ppiankov/dii/internal/store/postgres"
)

var (
	assessFlags profileFlags
	outJSON     string
	outMD       string
	timeout     time.Duration
	noCache     bool
	noFooter    bool
	noRobots    bool
	llmProvider string
	llmModel    string
	saveReport  bool
)

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess [url]",
	Short: "Assess one organization and write its immunity report",
	Long: `Assess classifies an organization's business model, scores the answers
you supply and estimates the rest from archetype baselines.

A website URL is optional. When given, the page is fetched (respecting
robots.txt) and structured data fills profile fields you left empty.

Example:
  dii assess --name "Acme Retail" --industry Retail -a TRD=12 -a AER=150000
  dii assess https://acme.example --json acme.json --md acme.md
  dii assess --input acme.yaml --llm-provider openai`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessFlags.register(assessCmd, true)

	assessCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (empty to skip)")
	assessCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	assessCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall assessment timeout")
	assessCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the classification cache")
	assessCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	assessCmd.Flags().BoolVar(&noRobots, "ignore-robots", false, "do not consult robots.txt before fetching")
	assessCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "narrative provider (openai, anthropic, ollama); empty disables it")
	assessCmd.Flags().StringVar(&llmModel, "llm-model", "", "narrative model name")
	assessCmd.Flags().BoolVar(&saveReport, "save", false, "store the report in postgres (store.database_url)")
}

// applyRunFlags overlays the per-run flags shared by assess and batch
func applyRunFlags(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if cmd.Flags().Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if cmd.Flags().Changed("ignore-robots") {
		cfg.HTTP.RespectRobots = !noRobots
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}

// newPipeline builds the assessment pipeline with a cached classifier
func newPipeline(cfg *model.Config, log zerolog.Logger) *pipeline.Pipeline {
	classifier := classify.NewCached(classify.New(catalog.Default()), cache.New(cfg.Cache), cfg.Cache.MemoryTTL)
	return pipeline.NewPipeline(cfg, classifier, log)
}

func runAssess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	log := newLogger(cfg)

	url := ""
	if len(args) == 1 {
		url = args[0]
	}
	in, err := assessFlags.input(url)
	if err != nil {
		return err
	}
	if in.Profile.Name == "" && in.URL == "" {
		return fmt.Errorf("a url, --name or --input is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Assessing: %s\n", in.Subject())
		fmt.Fprintf(os.Stderr, "Answers:   %d/%d\n", len(in.Answers), model.DimensionCount)
		fmt.Fprintln(os.Stderr)
	}

	p := newPipeline(cfg, log)
	report, err := p.Assess(ctx, in)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Classified as %s (%.0f%%)\n", report.Classification.Name, report.Classification.Confidence*100)
		fmt.Fprintf(os.Stderr, "✓ Scored %d answered, %d estimated\n", report.Composite.RealAnswers, model.DimensionCount-report.Composite.RealAnswers)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated narrative using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if saveReport {
		if err := storeReport(ctx, cfg, report, log); err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Stored report for %s\n", report.Subject)
		}
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderReport(os.Stdout, report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

func storeReport(ctx context.Context, cfg *model.Config, report *model.Report, log zerolog.Logger) error {
	if cfg.Store.DatabaseURL == "" {
		return fmt.Errorf("--save needs store.database_url (or DATABASE_URL)")
	}
	db, err := postgres.Connect(ctx, cfg.Store.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}
