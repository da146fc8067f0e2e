package orchestrate

import "github.com/ppiankov/dii/internal/model"

// rule moves target to the next open slot when its predicate holds.
type rule struct {
	name   string
	target model.Dimension
	reason string
	when   func(model.Responses) bool
}

// Evaluated in order; the first rule that changes the order wins.
var rules = []rule{
	{
		name:   "fast-revenue-loss",
		target: model.RRG,
		reason: "Your rapid revenue loss (≤6 hours) makes recovery speed critical. Assessing RRG next.",
		when:   func(r model.Responses) bool { return metricAtMost(r, model.TRD, 6) },
	},
	{
		name:   "high-value-target",
		target: model.HFP,
		reason: "High-value target ($1M+) makes human defenses crucial. Checking HFP next.",
		when:   func(r model.Responses) bool { return metricAtLeast(r, model.AER, 1_000_000) },
	},
	{
		name:   "wide-blast-radius",
		target: model.RRG,
		reason: "Wide blast radius (70%+) makes recovery complexity critical. Evaluating RRG next.",
		when:   func(r model.Responses) bool { return metricAtLeast(r, model.BRI, 70) },
	},
	{
		name:   "human-vulnerability",
		target: model.AER,
		reason: "High human vulnerability (40%+) makes you an easy target. Checking attack value next.",
		when:   func(r model.Responses) bool { return metricAtLeast(r, model.HFP, 40) },
	},
}

func metricAtMost(r model.Responses, d model.Dimension, limit float64) bool {
	v, ok := r.Value(d)
	return ok && v <= limit
}

func metricAtLeast(r model.Responses, d model.Dimension, limit float64) bool {
	v, ok := r.Value(d)
	return ok && v >= limit
}

// promote moves target into the first unanswered position of order. It
// reports false when target is answered or already at or before that slot.
func promote(order [model.DimensionCount]model.Dimension, responses model.Responses, target model.Dimension) ([model.DimensionCount]model.Dimension, bool) {
	if responses.Has(target) {
		return order, false
	}

	next, at := -1, -1
	for i, d := range order {
		if next < 0 && !responses.Has(d) {
			next = i
		}
		if d == target {
			at = i
		}
	}
	if next < 0 || at <= next {
		return order, false
	}

	copy(order[next+1:at+1], order[next:at])
	order[next] = target
	return order, true
}

// Transition is the bridge text shown when moving between two dimensions.
type Transition struct {
	From            model.Dimension `json:"from"`
	To              model.Dimension `json:"to"`
	Text            string          `json:"transition_text"`
	CorrelationHint string          `json:"correlation_hint"`
}

var transitions = []Transition{
	{model.TRD, model.AER, "Now let's see what attackers could gain", "Fast revenue loss makes you a time-sensitive target"},
	{model.TRD, model.RRG, "Critical: Can you recover before revenue collapses?", "Your short revenue window demands fast recovery"},
	{model.AER, model.HFP, "High-value targets need strong human defenses", "Valuable assets attract sophisticated social engineering"},
	{model.BRI, model.RRG, "Wide damage means complex recovery", "Restoring many systems multiplies recovery time"},
	{model.HFP, model.BRI, "Let's see how far human errors can spread", "Human mistakes can cascade through connected systems"},
}

// TransitionBetween returns the bridge text for from → to, if one exists.
func TransitionBetween(from, to model.Dimension) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}

// CorrelationHints returns advisory warnings for risky answer combinations.
// They never influence the score.
func CorrelationHints(r model.Responses) []string {
	hints := []string{}
	if metricAtMost(r, model.TRD, 12) && metricAtLeast(r, model.AER, 500_000) {
		hints = append(hints, "Critical: Fast revenue loss + high value = prime ransomware target")
	}
	if metricAtLeast(r, model.HFP, 30) && metricAtLeast(r, model.BRI, 60) {
		hints = append(hints, "Human errors will cascade across your connected systems")
	}
	if metricAtLeast(r, model.BRI, 70) && metricAtLeast(r, model.RRG, 3) {
		hints = append(hints, "Wide damage + slow recovery = potential business failure")
	}
	return hints
}
