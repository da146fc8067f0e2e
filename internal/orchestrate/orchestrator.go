// Package orchestrate decides which dimension question to ask next.
package orchestrate

import (
	"fmt"
	"math"

	"github.com/ppiankov/dii/internal/model"
)

// Minutes per dimension at the start of an assessment; answering speeds up.
const (
	baseMinutesPerDimension = 1.5
	speedUpFactor           = 0.9
)

type priority struct {
	dim       model.Dimension
	rationale string
	minutes   int
}

// Question order per archetype, most important first.
var priorityTable = map[model.ArchetypeID][model.DimensionCount]priority{
	model.HybridCommerce: {
		{model.TRD, "Physical and digital revenue streams need protection", 2},
		{model.BRI, "Omnichannel systems create wide exposure", 2},
		{model.HFP, "Staff across channels need security awareness", 1},
		{model.RRG, "Complex recovery with dual operations", 2},
		{model.AER, "Customer data attracts attackers", 1},
	},
	model.CriticalSoftware: {
		{model.TRD, "Zero downtime expectation for critical systems", 2},
		{model.RRG, "Recovery speed is business survival", 2},
		{model.AER, "IP and code are high-value targets", 1},
		{model.BRI, "Microservices limit blast radius", 2},
		{model.HFP, "Technical teams are often security-aware", 1},
	},
	model.DataServices: {
		{model.AER, "Data is your primary asset and target", 2},
		{model.BRI, "Data lakes create massive exposure", 2},
		{model.HFP, "Insider threats to data access", 1},
		{model.TRD, "Data services have some buffer time", 1},
		{model.RRG, "Data recovery complexity is high", 2},
	},
	model.DigitalEcosystem: {
		{model.BRI, "Interconnected systems amplify breaches", 2},
		{model.AER, "Ecosystem data is extremely valuable", 2},
		{model.TRD, "Network effects mean fast revenue impact", 1},
		{model.HFP, "Many touchpoints increase human risk", 1},
		{model.RRG, "Ecosystem recovery is complex", 2},
	},
	model.FinancialServices: {
		{model.TRD, "Financial operations cannot stop", 2},
		{model.AER, "Financial data is a maximum value target", 2},
		{model.HFP, "Social engineering targets finance heavily", 1},
		{model.RRG, "Regulatory recovery requirements", 2},
		{model.BRI, "Segmentation is a regulatory requirement", 1},
	},
	model.LegacyInfrastructure: {
		{model.BRI, "Legacy systems are often fully connected", 2},
		{model.RRG, "Legacy recovery is slow and manual", 2},
		{model.HFP, "Operational staff may lack security training", 1},
		{model.TRD, "Some operational buffer exists", 1},
		{model.AER, "Legacy data is less structured and less valuable", 2},
	},
	model.SupplyChain: {
		{model.BRI, "Supply chains create cascade failures", 2},
		{model.TRD, "Just-in-time means no buffer", 2},
		{model.RRG, "Multi-party recovery coordination", 2},
		{model.AER, "Supplier data and logistics are valuable", 1},
		{model.HFP, "Third-party human risks", 1},
	},
	model.RegulatedInformation: {
		{model.AER, "Regulated data is a high-value target", 2},
		{model.HFP, "Compliance requires human vigilance", 1},
		{model.RRG, "Regulatory recovery timelines", 2},
		{model.BRI, "Compliance requires segmentation", 2},
		{model.TRD, "Some regulatory grace periods", 1},
	},
}

// Orchestrator computes question order. It holds no state and is safe for
// concurrent use.
type Orchestrator struct{}

// New creates an orchestrator.
func New() *Orchestrator {
	return &Orchestrator{}
}

func lookup(archetype model.ArchetypeID) ([model.DimensionCount]priority, error) {
	table, ok := priorityTable[archetype]
	if !ok {
		return table, &model.ConfigError{
			Component: "orchestrate",
			Err:       fmt.Errorf("%w: %d", model.ErrUnknownArchetype, int(archetype)),
		}
	}
	return table, nil
}

// InitialOrder returns the archetype's default question order.
func (o *Orchestrator) InitialOrder(archetype model.ArchetypeID) (model.OrchestrationState, error) {
	table, err := lookup(archetype)
	if err != nil {
		return model.OrchestrationState{}, err
	}

	var order [model.DimensionCount]model.Dimension
	for i, p := range table {
		order[i] = p.dim
	}
	return build(table, order, model.Responses{}, ""), nil
}

// AdaptOrder applies the first reorder rule that holds for responses and
// actually moves a dimension. Remaining minutes count unanswered dimensions only.
func (o *Orchestrator) AdaptOrder(order [model.DimensionCount]model.Dimension, responses model.Responses, archetype model.ArchetypeID) (model.OrchestrationState, error) {
	table, err := lookup(archetype)
	if err != nil {
		return model.OrchestrationState{}, err
	}
	if err := checkPermutation(order); err != nil {
		return model.OrchestrationState{}, err
	}

	reason := ""
	for _, r := range rules {
		if !r.when(responses) {
			continue
		}
		if next, moved := promote(order, responses, r.target); moved {
			order = next
			reason = r.reason
			break
		}
	}
	return build(table, order, responses, reason), nil
}

func build(table [model.DimensionCount]priority, order [model.DimensionCount]model.Dimension, responses model.Responses, reason string) model.OrchestrationState {
	state := model.OrchestrationState{
		Order:          order,
		AdaptiveReason: reason,
	}
	for i, d := range order {
		p := priorityFor(table, d)
		state.Priorities[i] = model.DimensionPriority{
			Dimension: d,
			Priority:  i + 1,
			Rationale: p.rationale,
			Minutes:   p.minutes,
		}
		if !responses.Has(d) {
			state.RemainingMinutes += p.minutes
		}
	}
	return state
}

func priorityFor(table [model.DimensionCount]priority, d model.Dimension) priority {
	for _, p := range table {
		if p.dim == d {
			return p
		}
	}
	return priority{dim: d}
}

func checkPermutation(order [model.DimensionCount]model.Dimension) error {
	var seen [model.DimensionCount]bool
	for _, d := range order {
		if !d.Valid() {
			return fmt.Errorf("order %v: %w", order, model.ErrUnknownDimension)
		}
		if seen[d] {
			return fmt.Errorf("order %v: duplicate dimension %s", order, d)
		}
		seen[d] = true
	}
	return nil
}

// EstimateRemainingTime returns the minutes left after answered questions.
// Respondents get about ten percent faster with each answer.
func EstimateRemainingTime(answered int) int {
	if answered < 0 {
		answered = 0
	}
	left := model.DimensionCount - answered
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(float64(left) * baseMinutesPerDimension * math.Pow(speedUpFactor, float64(answered))))
}
