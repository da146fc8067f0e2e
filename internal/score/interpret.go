package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/dii/internal/model"
)

type stageText struct {
	headline        string
	strengths       []string
	vulnerabilities []string
}

var stageTexts = map[model.MaturityStage]stageText{
	model.StageFragile: {
		headline: "Your digital immunity is critically low. Immediate action required.",
		strengths: []string{
			"Awareness is the first step to improvement",
			"Significant opportunity for quick wins",
			"Can learn from many available best practices",
		},
		vulnerabilities: []string{
			"Highly vulnerable to commodity attacks",
			"Lack of basic security hygiene",
			"No resilience to sustained attacks",
			"Recovery will be costly and slow",
		},
	},
	model.StageRobust: {
		headline: "Basic defenses in place, but significant gaps remain.",
		strengths: []string{
			"Foundation security controls implemented",
			"Some incident response capability exists",
			"Can handle basic commodity attacks",
		},
		vulnerabilities: []string{
			"Vulnerable to targeted attacks",
			"Limited detection capabilities",
			"Recovery processes untested",
			"Human factor remains high risk",
		},
	},
	model.StageResilient: {
		headline: "Good security posture with proven recovery capability.",
		strengths: []string{
			"Can withstand most common attacks",
			"Proven incident response processes",
			"Good security culture established",
			"Recovery time within business tolerance",
		},
		vulnerabilities: []string{
			"Advanced persistent threats still a risk",
			"Supply chain vulnerabilities exist",
			"Some legacy system exposure",
			"Insider threats need attention",
		},
	},
	model.StageAdaptive: {
		headline: "Excellent cyber resilience with adaptive defense.",
		strengths: []string{
			"Proactive threat hunting capability",
			"Rapid detection and response",
			"Strong security culture throughout",
			"Continuous improvement mindset",
			"Can handle advanced threats",
		},
		vulnerabilities: []string{
			"Nation-state actors remain a concern",
			"Zero-day exploits before patches",
			"Maintain vigilance against complacency",
		},
	},
}

// recommendations per dimension: [low, medium, high].
var recommendations = [model.DimensionCount][3]string{
	model.TRD: {
		"Map revenue-critical systems and add failover for the ones that stop sales within hours",
		"Add revenue monitoring that detects degradation within minutes of an incident",
		"Keep failover drills in the release calendar so the revenue buffer stays real",
	},
	model.AER: {
		"Reduce what an attacker can extract: encrypt customer data and remove dormant payment paths",
		"Tokenize sensitive records and tighten access to high-value data stores",
		"Review attack value yearly as new products and data sets are added",
	},
	model.HFP: {
		"Roll out phishing-resistant MFA and monthly phishing simulations",
		"Target training at repeat offenders and privileged users",
		"Move to advanced simulations such as vishing and pretexting scenarios",
	},
	model.BRI: {
		"Segment the network so a single compromise cannot reach core systems",
		"Separate administrative access and restrict lateral movement between zones",
		"Validate segmentation with regular breach-and-attack simulation",
	},
	model.RRG: {
		"Test restores from immutable backups and measure the actual recovery time",
		"Automate recovery runbooks for the systems with the largest plan-versus-reality gap",
		"Run full-scale recovery exercises twice a year to keep timings honest",
	},
}

// Recommendation returns the action text for a dimension at a given score.
func Recommendation(d model.Dimension, score float64) string {
	if !d.Valid() {
		return ""
	}
	switch health := d.Health(score); {
	case health < 4:
		return recommendations[d][0]
	case health < 7:
		return recommendations[d][1]
	default:
		return recommendations[d][2]
	}
}

// OperationalRisk maps a composite to its business risk level.
func OperationalRisk(score float64) model.OperationalRisk {
	switch {
	case score <= 3:
		return model.RiskCritical
	case score <= 5:
		return model.RiskHigh
	case score <= 7:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// Interpret translates a composite score into business language.
func (c *Calculator) Interpret(composite model.CompositeScore) (model.Interpretation, error) {
	a, err := c.catalog.Lookup(composite.Archetype)
	if err != nil {
		return model.Interpretation{}, err
	}

	stage := Stage(composite.Score)
	text := stageTexts[stage]

	// Weakest dimensions first; estimates are included since they still steer the plan.
	contribs := append([]model.DimensionContribution(nil), composite.Contributions[:]...)
	sort.SliceStable(contribs, func(i, j int) bool {
		return health(contribs[i]) < health(contribs[j])
	})
	var recs []string
	for _, contrib := range contribs {
		if !contrib.Dimension.Valid() || health(contrib) >= 7 {
			continue
		}
		recs = append(recs, fmt.Sprintf("%s: %s", contrib.Dimension, Recommendation(contrib.Dimension, contrib.Score)))
	}

	return model.Interpretation{
		Stage:            stage,
		Headline:         text.headline,
		Strengths:        append([]string(nil), text.strengths...),
		Vulnerabilities:  append([]string(nil), text.vulnerabilities...),
		OperationalRisk:  OperationalRisk(composite.Score),
		DowntimeHours:    round1(a.InterruptionTolerance.Mid() * math.Exp(-composite.Score/2.5)),
		RevenueAtRiskPct: round1(math.Max(5, (100-10*composite.Score)*0.8)),
		Recommendations:  recs,
	}, nil
}

func health(c model.DimensionContribution) float64 {
	return c.Dimension.Health(c.Score)
}

// Impact compares two consecutive composite scores.
type Impact struct {
	Previous      float64 `json:"previous"`
	Current       float64 `json:"current"`
	Delta         float64 `json:"delta"`
	PercentChange float64 `json:"percent_change"`
	Message       string  `json:"message"`
}

// AnalyzeImpact describes the effect of the latest answer on the composite.
func AnalyzeImpact(previous, current float64) Impact {
	delta := round1(current - previous)
	pct := 0.0
	if previous > 0 {
		pct = round1(delta / previous * 100)
	}

	var msg string
	switch {
	case delta >= 1:
		msg = fmt.Sprintf("Major improvement: composite rose %.1f points to %.1f", delta, current)
	case delta > 0:
		msg = fmt.Sprintf("Composite improved by %.1f points to %.1f", delta, current)
	case delta <= -1:
		msg = fmt.Sprintf("Significant drop: this answer lowered the composite by %.1f points to %.1f", -delta, current)
	case delta < 0:
		msg = fmt.Sprintf("Composite decreased by %.1f points to %.1f", -delta, current)
	default:
		msg = fmt.Sprintf("Composite unchanged at %.1f", current)
	}

	return Impact{
		Previous:      previous,
		Current:       current,
		Delta:         delta,
		PercentChange: pct,
		Message:       msg,
	}
}
