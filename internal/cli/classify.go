package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dii/internal/classify"
	"github.com/ppiankov/dii/internal/model"
)

var (
	classifyFlags profileFlags
	classifyJSON  bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [url]",
	Short: "Classify an organization's business model",
	Long: `Classify maps a company profile onto one of eight business-model
archetypes and explains the signals behind the choice.

With --archetype the choice is checked for consistency with the profile
instead.

Example:
  dii classify --name "First Mutual Bank" --industry Banking --regulated
  dii classify https://acme.example --json
  dii classify --name "Acme" --archetype financial_services`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyFlags.register(classifyCmd, false)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the result as JSON")
	classifyCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "website fetch timeout")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	url := ""
	if len(args) == 1 {
		url = args[0]
	}
	in, err := classifyFlags.input(url)
	if err != nil {
		return err
	}
	if in.Profile.Name == "" && in.URL == "" {
		return fmt.Errorf("a url, --name or --input is required")
	}

	if in.Archetype != 0 {
		check := classify.ValidateClassification(in.Profile, in.Archetype)
		if classifyJSON {
			return printJSON(check)
		}
		printCheck(in.Archetype, check)
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	profile, cls, meta, err := newPipeline(cfg, log).Classify(ctx, in)
	if err != nil {
		return err
	}
	if classifyJSON {
		return printJSON(map[string]interface{}{
			"profile":        profile,
			"classification": cls,
			"fetch_meta":     meta,
		})
	}

	fmt.Printf("%s\n", profile.Name)
	fmt.Printf("  Business model: %s (%.0f%%)\n", cls.Name, cls.Confidence*100)
	fmt.Printf("  %s\n", cls.Reasoning)
	if len(cls.Matched) > 0 {
		fmt.Printf("  Matched:     %s\n", strings.Join(cls.Matched, ", "))
	}
	if len(cls.Missing) > 0 {
		fmt.Printf("  Missing:     %s\n", strings.Join(cls.Missing, ", "))
	}
	for _, alt := range cls.Alternatives {
		fmt.Printf("  Alternative: %s (%.0f%%)\n", alt.Name, alt.Confidence*100)
	}
	return nil
}

func printCheck(id model.ArchetypeID, check model.ClassificationCheck) {
	if check.Valid {
		fmt.Printf("✓ %s is consistent with the profile\n", id.Slug())
		return
	}
	fmt.Fprintf(os.Stderr, "✗ %s looks inconsistent with the profile\n", id)
	for i, issue := range check.Issues {
		fmt.Printf("  - %s\n", issue)
		if i < len(check.Suggestions) {
			fmt.Printf("    %s\n", check.Suggestions[i])
		}
	}
}
