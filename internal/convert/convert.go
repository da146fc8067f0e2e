// Package convert maps raw dimension metrics to normalized 1-10 scores.
package convert

import (
	"errors"
	"fmt"
	"math"

	"github.com/ppiankov/dii/internal/model"
)

// Score bounds for every normalized dimension score.
const (
	MinScore = 1.0
	MaxScore = 10.0
)

// ErrOutOfRange is returned by Validate for raw values outside a dimension's input range.
var ErrOutOfRange = errors.New("value out of range")

// step is one stair of a staircase: values below Limit (or equal, when
// Inclusive) map to Score.
type step struct {
	Limit     float64
	Inclusive bool
	Score     float64
	Label     string
}

// tier maps a health score ceiling (see model.Dimension.Health) to human readable text.
type tier struct {
	Max            float64
	Interpretation string
	Range          string
}

// Bounds is the accepted input range for a dimension.
type Bounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

type converter struct {
	steps       []step
	adjustments map[model.ArchetypeID]float64
	tiers       []tier
	bounds      Bounds
}

// Staircases, adjustments and tiers are package data and never mutated. TRD and
// AER staircases fall as exposure grows; HFP, BRI and RRG are risk oriented and rise.
// Adjustment factors read on the health scale: above one is better than typical.
var converters = [model.DimensionCount]converter{
	model.TRD: {
		steps: []step{
			{2, false, 2.0, "Critical"},
			{6, false, 4.0, "Vulnerable"},
			{24, false, 6.0, "Moderate"},
			{72, false, 8.0, "Resilient"},
			{math.Inf(1), false, 9.5, "Exceptional"},
		},
		adjustments: map[model.ArchetypeID]float64{
			model.HybridCommerce:       1.2,
			model.CriticalSoftware:     0.8,
			model.FinancialServices:    0.7,
			model.LegacyInfrastructure: 0.9,
			model.RegulatedInformation: 0.8,
		},
		tiers: []tier{
			{3, "Critical - Immediate revenue impact expected", "< 6 hours until revenue impact"},
			{5, "Vulnerable - Revenue degradation likely within hours", "6-24 hours resilience window"},
			{7, "Moderate - Can sustain short-term disruptions", "1-3 days operational buffer"},
			{8.5, "Resilient - Good tolerance for operational issues", "3+ days resilience capacity"},
			{MaxScore, "Exceptional - Can maintain revenue through extended disruptions", "> 1 week revenue protection"},
		},
		bounds: Bounds{Min: 0, Max: 168, Unit: "hours"},
	},
	model.AER: {
		steps: []step{
			{10_000, false, 9.0, "Unattractive"},
			{50_000, false, 7.0, "Low Interest"},
			{200_000, false, 5.0, "Moderate Target"},
			{1_000_000, false, 3.0, "High Value Target"},
			{math.Inf(1), false, 1.5, "Prime Target"},
		},
		adjustments: map[model.ArchetypeID]float64{
			model.DataServices:         0.8,
			model.DigitalEcosystem:     0.9,
			model.FinancialServices:    0.7,
			model.RegulatedInformation: 0.8,
		},
		tiers: []tier{
			{2, "Prime Target - Extremely attractive to attackers", "> $1M potential value extraction"},
			{4, "High Value - Regular target for sophisticated attacks", "$200K - $1M attack value"},
			{6, "Moderate Target - Opportunistic attacks likely", "$50K - $200K potential extraction"},
			{8, "Low Interest - Commodity attacks only", "$10K - $50K limited value"},
			{MaxScore, "Unattractive - Not economically viable for most attackers", "< $10K minimal attack value"},
		},
		bounds: Bounds{Min: 0, Max: 10_000_000, Unit: "usd"},
	},
	model.HFP: {
		steps: []step{
			{5, true, 2.5, "Excellent"},
			{15, true, 4.0, "Good"},
			{30, true, 6.0, "Average"},
			{50, true, 8.0, "Poor"},
			{math.Inf(1), true, 9.5, "Critical"},
		},
		adjustments: map[model.ArchetypeID]float64{
			model.HybridCommerce:       0.9,
			model.CriticalSoftware:     1.1,
			model.DataServices:         1.1,
			model.LegacyInfrastructure: 0.8,
			model.RegulatedInformation: 1.0,
		},
		tiers: []tier{
			{2, "Critical - Humans are primary vulnerability", "> 50% phishing failure rate"},
			{4, "Poor - Significant social engineering risk", "30-50% susceptible to social engineering"},
			{6, "Average - Standard human factor risk", "15-30% average failure rate"},
			{7.5, "Good - Above average security awareness", "5-15% good awareness level"},
			{MaxScore, "Excellent - Strong security culture established", "< 5% excellent security culture"},
		},
		bounds: Bounds{Min: 0, Max: 100, Unit: "percent"},
	},
	model.BRI: {
		steps: []step{
			{20, true, 3.0, "Well Segmented"},
			{40, true, 4.5, "Good Isolation"},
			{60, true, 6.5, "Limited Isolation"},
			{80, true, 8.5, "Poor Isolation"},
			{math.Inf(1), true, 10.0, "No Isolation"},
		},
		adjustments: map[model.ArchetypeID]float64{
			model.HybridCommerce:    1.1,
			model.CriticalSoftware:  0.9,
			model.DigitalEcosystem:  0.8,
			model.FinancialServices: 0.9,
			model.SupplyChain:       0.8,
		},
		tiers: []tier{
			{2, "No Isolation - Complete network compromise likely", "80-100% systems accessible from breach"},
			{4, "Poor Isolation - Major systems at risk from single breach", "60-80% lateral movement possible"},
			{6, "Limited Isolation - Moderate containment capability", "40-60% limited segmentation"},
			{7.5, "Good Isolation - Can limit blast radius effectively", "20-40% good isolation boundaries"},
			{MaxScore, "Well Segmented - Excellent breach containment", "< 20% well-segmented environment"},
		},
		bounds: Bounds{Min: 0, Max: 100, Unit: "percent"},
	},
	model.RRG: {
		steps: []step{
			{1.5, true, 2.0, "Meets Plan"},
			{2.0, true, 4.0, "Minor Gap"},
			{3.0, true, 6.0, "Moderate Gap"},
			{5.0, true, 8.0, "Major Gap"},
			{math.Inf(1), true, 9.5, "No Real Recovery"},
		},
		adjustments: map[model.ArchetypeID]float64{
			model.CriticalSoftware:     1.1,
			model.FinancialServices:    1.2,
			model.LegacyInfrastructure: 0.8,
			model.RegulatedInformation: 1.1,
		},
		tiers: []tier{
			{2, "No Real Recovery - Plans are theoretical only", "> 5x longer than planned recovery"},
			{4, "Major Gap - Recovery takes much longer than planned", "3-5x recovery time multiplier"},
			{6, "Moderate Gap - Some deviation from recovery plans", "2-3x actual vs planned recovery"},
			{8, "Minor Gap - Generally meets recovery objectives", "1.5-2x minor recovery delays"},
			{MaxScore, "Meets Plan - Reliable and tested recovery capability", "~ 1x recovery meets planned timelines"},
		},
		bounds: Bounds{Min: 1, Max: 20, Unit: "multiplier"},
	},
}

func lookup(d model.Dimension) (*converter, error) {
	if !d.Valid() {
		return nil, &model.ConfigError{
			Component: "convert",
			Err:       fmt.Errorf("%w: %d", model.ErrUnknownDimension, int(d)),
		}
	}
	return &converters[d], nil
}

// ConvertToScore maps an already validated raw metric to a normalized score in [1,10].
// Out-of-range input is clamped, not rejected; call Validate first for user input.
func ConvertToScore(d model.Dimension, raw float64, archetype model.ArchetypeID) (float64, error) {
	score, _, err := convert(d, raw, archetype)
	return score, err
}

func convert(d model.Dimension, raw float64, archetype model.ArchetypeID) (float64, bool, error) {
	c, err := lookup(d)
	if err != nil {
		return 0, false, err
	}
	if !archetype.Valid() {
		return 0, false, &model.ConfigError{
			Component: "convert",
			Err:       fmt.Errorf("%w: %d", model.ErrUnknownArchetype, int(archetype)),
		}
	}

	base := c.baseScore(raw)
	factor, adjusted := c.adjustments[archetype]
	if adjusted {
		base = adjust(d, base, factor)
	}
	return clamp(round2(base), MinScore, MaxScore), adjusted, nil
}

// adjust applies an archetype factor on the health scale, so a factor above
// one always means the archetype copes better. Risk-oriented scores are
// mapped back afterwards.
func adjust(d model.Dimension, score, factor float64) float64 {
	if !d.RiskOriented() {
		return score * factor
	}
	return d.Health(clamp(d.Health(score)*factor, MinScore, MaxScore))
}

func (c *converter) baseScore(raw float64) float64 {
	if math.IsNaN(raw) {
		raw = c.bounds.Min
	}
	for _, s := range c.steps {
		if raw < s.Limit || (s.Inclusive && raw == s.Limit) {
			return s.Score
		}
	}
	return c.steps[len(c.steps)-1].Score
}

// Label returns the staircase label for a raw metric, e.g. "Poor Isolation".
func Label(d model.Dimension, raw float64) (string, error) {
	c, err := lookup(d)
	if err != nil {
		return "", err
	}
	for _, s := range c.steps {
		if raw < s.Limit || (s.Inclusive && raw == s.Limit) {
			return s.Label, nil
		}
	}
	return c.steps[len(c.steps)-1].Label, nil
}

// Interpretation returns the tier label for a normalized score.
func Interpretation(d model.Dimension, score float64) (string, error) {
	c, err := lookup(d)
	if err != nil {
		return "", err
	}
	return c.tierFor(d.Health(score)).Interpretation, nil
}

// ReverseConvert describes the raw metric range that typically yields the score.
func ReverseConvert(d model.Dimension, score float64) (string, error) {
	c, err := lookup(d)
	if err != nil {
		return "", err
	}
	return c.tierFor(d.Health(score)).Range, nil
}

func (c *converter) tierFor(health float64) tier {
	for _, t := range c.tiers {
		if health <= t.Max {
			return t
		}
	}
	return c.tiers[len(c.tiers)-1]
}

// InputBounds returns the accepted input range of a dimension.
func InputBounds(d model.Dimension) (Bounds, error) {
	c, err := lookup(d)
	if err != nil {
		return Bounds{}, err
	}
	return c.bounds, nil
}

// Validate rejects raw values outside the dimension's input range.
func Validate(d model.Dimension, raw float64) error {
	c, err := lookup(d)
	if err != nil {
		return err
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < c.bounds.Min || raw > c.bounds.Max {
		return fmt.Errorf("%w: %s must be between %g and %g %s, got %g",
			ErrOutOfRange, d, c.bounds.Min, c.bounds.Max, c.bounds.Unit, raw)
	}
	return nil
}

// Conversion is the result of converting one dimension in a batch.
type Conversion struct {
	Dimension         model.Dimension   `json:"dimension"`
	Score             float64           `json:"score"`
	Interpretation    string            `json:"interpretation"`
	OriginalValue     float64           `json:"original_value"`
	Archetype         model.ArchetypeID `json:"archetype"`
	AdjustmentApplied bool              `json:"adjustment_applied"`
}

// ConvertBatch converts a partial set of raw metrics. Each value is validated first.
func ConvertBatch(values map[model.Dimension]float64, archetype model.ArchetypeID) (map[model.Dimension]Conversion, error) {
	out := make(map[model.Dimension]Conversion, len(values))
	for d, raw := range values {
		if err := Validate(d, raw); err != nil {
			return nil, err
		}
		score, adjusted, err := convert(d, raw, archetype)
		if err != nil {
			return nil, err
		}
		out[d] = Conversion{
			Dimension:         d,
			Score:             score,
			Interpretation:    converters[d].tierFor(d.Health(score)).Interpretation,
			OriginalValue:     raw,
			Archetype:         archetype,
			AdjustmentApplied: adjusted,
		}
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
