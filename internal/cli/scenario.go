package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/orchestrate"
	"github.com/ppiankov/dii/internal/score"
	"github.com/ppiankov/dii/internal/session"
)

var (
	scenarioFlags   profileFlags
	scenarioActions []string
	scenarioTarget  float64
	scenarioName    string
	whatIf          []string
	scenarioJSON    bool
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Project the score after improvement actions or changed answers",
	Long: `Scenario replays the given answers for an archetype and projects the
effect of improvement actions, a target score, or what-if answers.

Example:
  dii scenario --archetype hybrid_commerce -a TRD=4 -a HFP=30 --action hfp-mfa
  dii scenario --archetype 2 -a RRG=4 --target 6.5
  dii scenario --archetype 5 -a BRI=70 --what-if BRI=30`,
	Args: cobra.NoArgs,
	RunE: runScenario,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
	scenarioFlags.register(scenarioCmd, true)
	scenarioCmd.Flags().StringSliceVar(&scenarioActions, "action", nil, "improvement action id (repeatable, see 'dii catalog actions')")
	scenarioCmd.Flags().Float64Var(&scenarioTarget, "target", 0, "build a roadmap to this score")
	scenarioCmd.Flags().StringVar(&scenarioName, "scenario-name", "Custom scenario", "name for the action scenario")
	scenarioCmd.Flags().StringArrayVar(&whatIf, "what-if", nil, "changed answer DIM=VALUE (repeatable)")
	scenarioCmd.Flags().BoolVar(&scenarioJSON, "json", false, "print the result as JSON")
}

func runScenario(cmd *cobra.Command, args []string) error {
	in, err := scenarioFlags.input("")
	if err != nil {
		return err
	}
	if in.Archetype == 0 {
		return fmt.Errorf("--archetype is required")
	}

	engine := session.NewEngine(catalog.Default())
	sess, err := engine.Start(in.Archetype)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, d := range model.AllDimensions() {
		if v, ok := in.Answers[d]; ok {
			if sess, err = sess.Answer(d, v, now); err != nil {
				return fmt.Errorf("answer %s: %w", d, err)
			}
		}
	}

	planner := score.NewPlanner(engine.Calculator())
	switch {
	case len(whatIf) > 0:
		overrides, err := parseAnswers(whatIf)
		if err != nil {
			return err
		}
		p, err := planner.Project(in.Archetype, sess.Responses, overrides)
		if err != nil {
			return err
		}
		if scenarioJSON {
			return printJSON(p)
		}
		fmt.Printf("Current:   %.1f\n", p.Current)
		fmt.Printf("Projected: %.1f (%+.1f)\n", p.Projected, p.Delta)
		fmt.Printf("%s\n", p.Message)
		return nil

	case len(scenarioActions) > 0:
		s, err := planner.Plan(scenarioName, in.Archetype, sess.Responses, scenarioActions)
		if err != nil {
			return err
		}
		return printScenario(s)

	case scenarioTarget > 0 && scenarioTarget <= 10:
		s, err := planner.Roadmap(in.Archetype, sess.Responses, scenarioTarget)
		if err != nil {
			return err
		}
		return printScenario(s)

	default:
		return fmt.Errorf("one of --action, --target (0-10] or --what-if is required")
	}
}

func printScenario(s score.Scenario) error {
	if scenarioJSON {
		return printJSON(s)
	}
	fmt.Printf("%s\n", s.Name)
	fmt.Printf("  Score:    %.1f -> %.1f (%+.1f)\n", s.CurrentScore, s.TargetScore, s.Improvement)
	fmt.Printf("  Cost:     %s over %d months\n", orchestrate.Money(s.TotalCost), s.Months)
	fmt.Printf("  Savings:  %s per year, ROI %.0f%%, payback %.1f months\n", orchestrate.Money(s.AnnualSavings), s.ROI, s.PaybackMonths)
	for _, a := range s.Actions {
		fmt.Printf("  - %s (%s)\n", a.Title, a.ID)
	}
	if s.BusinessImpact != "" {
		fmt.Printf("  %s\n", s.BusinessImpact)
	}
	return nil
}
