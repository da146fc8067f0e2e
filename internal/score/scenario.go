package score

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/dii/internal/convert"
	"github.com/ppiankov/dii/internal/model"
)

// ErrUnknownAction is returned when a scenario names an action that does not exist.
var ErrUnknownAction = errors.New("unknown improvement action")

// Action is a concrete security investment that raises one dimension score.
type Action struct {
	ID               string          `json:"id"`
	Dimension        model.Dimension `json:"dimension"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Improvement      float64         `json:"score_improvement"` // Health points on the 1-10 scale
	Cost             float64         `json:"implementation_cost"`
	Months           int             `json:"months"`
	RiskReductionPct float64         `json:"risk_reduction_pct"`
	AnnualRiskCost   float64         `json:"annual_risk_cost"`
	MaintenanceCost  float64         `json:"maintenance_cost,omitempty"`
	QuickWin         bool            `json:"quick_win"`
}

var actionTable = []Action{
	{"trd-monitoring", model.TRD, "Real-time Revenue Monitoring", "Detect revenue impact within 30 minutes of an incident", 2.5, 75_000, 3, 35, 250_000, 0, false},
	{"trd-failover", model.TRD, "Automated Failover for Critical Systems", "Switch revenue-critical applications to standby capacity without manual steps", 3.0, 120_000, 6, 45, 400_000, 15_000, false},
	{"aer-data-protection", model.AER, "Customer Data Protection", "Encrypt and tokenize customer and payment data at rest", 2.0, 90_000, 4, 30, 300_000, 10_000, false},
	{"aer-exposure-review", model.AER, "Attack Surface Reduction", "Retire dormant services and remove unused privileged data paths", 1.2, 30_000, 2, 15, 120_000, 0, true},
	{"hfp-mfa", model.HFP, "Phishing-resistant MFA", "Enforce hardware or passkey MFA for every employee", 2.5, 50_000, 2, 40, 200_000, 8_000, true},
	{"hfp-training", model.HFP, "Quarterly Security Awareness Training", "Run phishing simulations with targeted follow-up training", 1.8, 25_000, 1, 25, 150_000, 5_000, true},
	{"bri-segmentation", model.BRI, "Network Segmentation", "Split flat networks into zones with enforced east-west controls", 3.2, 150_000, 5, 50, 450_000, 20_000, false},
	{"bri-privileged-access", model.BRI, "Privileged Access Management", "Vault administrative credentials and require just-in-time elevation", 1.5, 60_000, 3, 25, 180_000, 10_000, false},
	{"rrg-immutable-backup", model.RRG, "Immutable Backup and Tested Restore", "Keep offline copies and measure restore time every quarter", 2.8, 80_000, 3, 40, 350_000, 12_000, false},
	{"rrg-runbooks", model.RRG, "Recovery Runbook Automation", "Automate recovery sequences for the most critical systems", 3.5, 140_000, 6, 50, 500_000, 18_000, false},
}

// Actions returns the improvement action catalog.
func Actions() []Action {
	return append([]Action(nil), actionTable...)
}

func actionByID(id string) (Action, bool) {
	for _, a := range actionTable {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// DimensionChange is a before/after dimension score in a scenario.
// Improvement is measured in health points, so it is positive for every
// dimension even when a risk-oriented score goes down.
type DimensionChange struct {
	Dimension   model.Dimension `json:"dimension"`
	Current     float64         `json:"current"`
	Target      float64         `json:"target"`
	Improvement float64         `json:"improvement"`
}

// Scenario is the projected outcome of a set of actions.
type Scenario struct {
	Name           string            `json:"name"`
	Actions        []Action          `json:"actions"`
	CurrentScore   float64           `json:"current_score"`
	TargetScore    float64           `json:"target_score"`
	Improvement    float64           `json:"improvement"`
	Changes        []DimensionChange `json:"dimension_changes"`
	TotalCost      float64           `json:"total_cost"`
	Months         int               `json:"months"`
	AnnualSavings  float64           `json:"annual_savings"`
	ROI            float64           `json:"roi_pct"`
	PaybackMonths  float64           `json:"payback_months"`
	RiskReduction  float64           `json:"risk_reduction"`
	BusinessImpact string            `json:"business_impact"`
}

// Planner projects the effect of improvement actions and what-if answers.
type Planner struct {
	calc *Calculator
}

// NewPlanner creates a planner on top of a calculator.
func NewPlanner(calc *Calculator) *Planner {
	return &Planner{calc: calc}
}

// Plan projects the composite after applying the named actions.
func (p *Planner) Plan(name string, archetype model.ArchetypeID, responses model.Responses, actionIDs []string) (Scenario, error) {
	selected := make([]Action, 0, len(actionIDs))
	for _, id := range actionIDs {
		a, ok := actionByID(id)
		if !ok {
			return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownAction, id)
		}
		selected = append(selected, a)
	}
	return p.plan(name, archetype, responses, selected)
}

func (p *Planner) plan(name string, archetype model.ArchetypeID, responses model.Responses, selected []Action) (Scenario, error) {
	current, err := p.calc.Calculate(archetype, responses, nil)
	if err != nil {
		return Scenario{}, err
	}

	var gains [model.DimensionCount]float64
	for _, a := range selected {
		gains[a.Dimension] += a.Improvement
	}

	var scores [model.DimensionCount]float64
	var changes []DimensionChange
	for i, contrib := range current.Contributions {
		d := contrib.Dimension
		before := d.Health(contrib.Score)
		after := math.Min(10, before+gains[i])
		scores[i] = d.Health(after)
		if gains[i] > 0 {
			changes = append(changes, DimensionChange{
				Dimension:   d,
				Current:     contrib.Score,
				Target:      round2(scores[i]),
				Improvement: round2(after - before),
			})
		}
	}
	target, err := p.calc.scoreOf(archetype, scores)
	if err != nil {
		return Scenario{}, err
	}

	s := Scenario{
		Name:         name,
		Actions:      selected,
		CurrentScore: current.Score,
		TargetScore:  target,
		Improvement:  round1(target - current.Score),
		Changes:      changes,
	}

	var savings, maintenance float64
	for _, a := range selected {
		s.TotalCost += a.Cost
		savings += a.AnnualRiskCost
		maintenance += a.MaintenanceCost
		s.RiskReduction += a.RiskReductionPct * a.AnnualRiskCost / 100
		if a.Months > s.Months {
			s.Months = a.Months
		}
	}
	s.AnnualSavings = savings - maintenance
	s.PaybackMonths = 999
	if s.AnnualSavings > 0 && s.TotalCost > 0 {
		s.ROI = round1(s.AnnualSavings / s.TotalCost * 100)
		s.PaybackMonths = round1(s.TotalCost / s.AnnualSavings * 12)
	}
	s.BusinessImpact = BusinessImpact(s.Improvement)
	return s, nil
}

// scoreOf computes the composite for a full set of dimension scores.
func (c *Calculator) scoreOf(archetype model.ArchetypeID, scores [model.DimensionCount]float64) (float64, error) {
	var full model.Responses
	for _, d := range model.AllDimensions() {
		full = full.With(model.DimensionResponse{Dimension: d, Score: scores[d]})
	}
	composite, err := c.Calculate(archetype, full, nil)
	if err != nil {
		return 0, err
	}
	return composite.Score, nil
}

// Roadmap greedily picks the most cost-efficient actions until the projected
// composite reaches target or no useful action is left.
func (p *Planner) Roadmap(archetype model.ArchetypeID, responses model.Responses, target float64) (Scenario, error) {
	current, err := p.calc.Calculate(archetype, responses, nil)
	if err != nil {
		return Scenario{}, err
	}

	var candidates []Action
	for _, a := range actionTable {
		if a.Improvement > 0.5 && health(current.Contributions[a.Dimension])+a.Improvement <= 10 {
			candidates = append(candidates, a)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Improvement/candidates[i].Cost > candidates[j].Improvement/candidates[j].Cost
	})

	name := fmt.Sprintf("Roadmap to %.1f", target)
	var selected []Action
	best, err := p.plan(name, archetype, responses, nil)
	if err != nil {
		return Scenario{}, err
	}
	for _, a := range candidates {
		if best.TargetScore >= target {
			break
		}
		selected = append(selected, a)
		if best, err = p.plan(name, archetype, responses, selected); err != nil {
			return Scenario{}, err
		}
	}
	return best, nil
}

// Projection is the outcome of a what-if change to raw answers.
type Projection struct {
	Current   float64 `json:"current"`
	Projected float64 `json:"projected"`
	Delta     float64 `json:"delta"`
	Message   string  `json:"message"`
}

// Project recomputes the composite as if the given raw metrics had been answered.
func (p *Planner) Project(archetype model.ArchetypeID, responses model.Responses, overrides map[model.Dimension]float64) (Projection, error) {
	current, err := p.calc.Calculate(archetype, responses, nil)
	if err != nil {
		return Projection{}, err
	}

	next := responses
	for d, raw := range overrides {
		if err := convert.Validate(d, raw); err != nil {
			return Projection{}, err
		}
		s, err := convert.ConvertToScore(d, raw, archetype)
		if err != nil {
			return Projection{}, err
		}
		next = next.With(model.DimensionResponse{Dimension: d, Value: raw, Score: s})
	}
	projected, err := p.calc.Calculate(archetype, next, nil)
	if err != nil {
		return Projection{}, err
	}

	delta := round1(projected.Score - current.Score)
	return Projection{
		Current:   current.Score,
		Projected: projected.Score,
		Delta:     delta,
		Message:   AnalyzeImpact(current.Score, projected.Score).Message + ". " + BusinessImpact(delta),
	}, nil
}

// Comparison names the best scenario for each criterion.
type Comparison struct {
	Fastest       string `json:"fastest"`
	Cheapest      string `json:"cheapest"`
	BestROI       string `json:"best_roi"`
	MostImpactful string `json:"most_impactful"`
}

// Compare ranks scenarios. The first scenario wins ties.
func Compare(scenarios []Scenario) Comparison {
	if len(scenarios) == 0 {
		return Comparison{}
	}
	fastest, cheapest, roi, impact := scenarios[0], scenarios[0], scenarios[0], scenarios[0]
	for _, s := range scenarios[1:] {
		if s.Months < fastest.Months {
			fastest = s
		}
		if s.TotalCost < cheapest.TotalCost {
			cheapest = s
		}
		if s.ROI > roi.ROI {
			roi = s
		}
		if s.Improvement > impact.Improvement {
			impact = s
		}
	}
	return Comparison{
		Fastest:       fastest.Name,
		Cheapest:      cheapest.Name,
		BestROI:       roi.Name,
		MostImpactful: impact.Name,
	}
}

// BusinessImpact describes a composite improvement in business terms.
func BusinessImpact(improvement float64) string {
	switch {
	case improvement >= 2:
		return "Transformational - Fundamental shift in security posture"
	case improvement >= 1.5:
		return "Significant - Major improvement in resilience capabilities"
	case improvement >= 1:
		return "Substantial - Notable enhancement to immunity profile"
	case improvement >= 0.5:
		return "Moderate - Meaningful improvement in specific areas"
	default:
		return "Incremental - Small but valuable security enhancements"
	}
}
