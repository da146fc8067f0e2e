package score

import (
	"fmt"

	"github.com/ppiankov/dii/internal/model"
)

// Step is one line of the audit trail behind a composite score.
type Step struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Detail string  `json:"detail"`
}

// Breakdown lists, in order, every input and intermediate value of a
// composite calculation. It describes the computation and never alters it.
type Breakdown struct {
	Formula string `json:"formula"`
	Steps   []Step `json:"steps"`
}

// Transparency explains how composite was derived.
func Transparency(composite model.CompositeScore) Breakdown {
	b := Breakdown{Formula: Formula}
	for _, contrib := range composite.Contributions {
		detail := "answered"
		if contrib.Estimated {
			detail = "estimated: " + contrib.Assumption
		}
		b.Steps = append(b.Steps, Step{
			Label:  contrib.Dimension.String(),
			Value:  contrib.Score,
			Detail: detail,
		})
	}
	b.Steps = append(b.Steps,
		Step{Label: "raw", Value: composite.RawScore, Detail: Formula},
		Step{Label: "baseline", Value: composite.Baseline, Detail: fmt.Sprintf("expected raw ratio for %s", composite.Archetype)},
		Step{Label: "score", Value: composite.Score, Detail: fmt.Sprintf("min(%.0f, raw / baseline × %.0f)", MaxComposite, ScaleFactor)},
	)
	return b
}

// Signals renders the breakdown as report signals.
func Signals(composite model.CompositeScore) []model.Signal {
	var signals []model.Signal

	for _, contrib := range composite.Contributions {
		if !contrib.Estimated {
			signals = append(signals, model.Signal{
				Type:        model.SignalDimensionAnswered,
				Severity:    severityForScore(contrib.Dimension.Health(contrib.Score)),
				Description: fmt.Sprintf("%s answered: %.2f", contrib.Dimension, contrib.Score),
				Data: map[string]interface{}{
					"dimension": contrib.Dimension.String(),
					"score":     contrib.Score,
				},
			})
			continue
		}
		signals = append(signals, model.Signal{
			Type:        model.SignalDimensionEstimated,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%s estimated: %.2f (%s)", contrib.Dimension, contrib.Score, contrib.Assumption),
			Data: map[string]interface{}{
				"dimension":  contrib.Dimension.String(),
				"score":      contrib.Score,
				"assumption": contrib.Assumption,
			},
		})
	}

	signals = append(signals,
		model.Signal{
			Type:        model.SignalRawRatio,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Raw ratio: %.4f", composite.RawScore),
			Data: map[string]interface{}{
				"raw":     composite.RawScore,
				"formula": Formula,
			},
		},
		model.Signal{
			Type:        model.SignalBaseline,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Archetype baseline: %.2f", composite.Baseline),
			Data: map[string]interface{}{
				"archetype": composite.Archetype.String(),
				"baseline":  composite.Baseline,
			},
		},
		model.Signal{
			Type:        model.SignalComposite,
			Severity:    severityForComposite(composite.Score),
			Description: fmt.Sprintf("Composite %.1f/10 (%s, %dth percentile, %d%% confidence)", composite.Score, composite.Stage, composite.Percentile, composite.Confidence),
			Data: map[string]interface{}{
				"score":      composite.Score,
				"stage":      string(composite.Stage),
				"percentile": composite.Percentile,
				"confidence": composite.Confidence,
				"formula":    fmt.Sprintf("min(%.0f, raw / baseline × %.0f)", MaxComposite, ScaleFactor),
			},
		},
	)
	return signals
}

func severityForScore(health float64) model.SignalSeverity {
	switch {
	case health < 3:
		return model.SeverityCritical
	case health < 5:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

func severityForComposite(score float64) model.SignalSeverity {
	switch Stage(score) {
	case model.StageFragile:
		return model.SeverityCritical
	case model.StageRobust:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}
