// Package score computes the composite immunity index from dimension scores.
package score

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/model"
)

// ErrZeroDenominator is raised when HFP×BRI×RRG is not a positive finite
// number. Validated inputs cannot produce it.
var ErrZeroDenominator = errors.New("composite denominator is zero")

// CalculationError is a fatal computation failure, never a user-input error.
type CalculationError struct {
	Archetype   model.ArchetypeID
	Denominator float64
	Err         error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculate composite for %s: %v (denominator=%v)", e.Archetype, e.Err, e.Denominator)
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}

// Scale of the composite index.
const (
	ScaleFactor  = 10.0
	MaxComposite = 10.0

	// Used for every dimension when nothing has been answered yet.
	neutralScore = 5.0

	Formula = "(T × A) / (H × B × R)"
)

// Estimation offsets added to the mean answered score for an unanswered
// dimension. Placeholders pending calibration against real assessments.
var estimationOffsets = [model.DimensionCount]float64{
	model.TRD: 0,
	model.AER: -0.5,
	model.HFP: -0.3,
	model.BRI: 0.2,
	model.RRG: -0.4,
}

// Confidence weight of each dimension when answered.
var confidenceWeights = [model.DimensionCount]float64{
	model.TRD: 0.25,
	model.AER: 0.20,
	model.HFP: 0.20,
	model.BRI: 0.20,
	model.RRG: 0.15,
}

// Calculator derives composite scores. It is stateless apart from the
// read-only catalog and safe for concurrent use.
type Calculator struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewCalculator creates a calculator over the catalog.
func NewCalculator(c *catalog.Catalog) *Calculator {
	return &Calculator{catalog: c, now: time.Now}
}

// Calculate computes the composite score from the live responses. Missing
// dimensions are estimated. history is the retained list of previous scores,
// oldest first; only its last entry is used for the trend.
func (c *Calculator) Calculate(archetype model.ArchetypeID, responses model.Responses, history []model.ScoreEntry) (model.CompositeScore, error) {
	a, err := c.catalog.Lookup(archetype)
	if err != nil {
		return model.CompositeScore{}, err
	}

	contributions := Contributions(responses)
	var s [model.DimensionCount]float64
	for i, contrib := range contributions {
		s[i] = contrib.Score
	}

	denominator := s[model.HFP] * s[model.BRI] * s[model.RRG]
	if denominator <= 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return model.CompositeScore{}, &CalculationError{
			Archetype:   archetype,
			Denominator: denominator,
			Err:         ErrZeroDenominator,
		}
	}
	raw := s[model.TRD] * s[model.AER] / denominator

	score := round1(math.Min(MaxComposite, raw/a.Baseline*ScaleFactor))

	return model.CompositeScore{
		Archetype:     archetype,
		Score:         score,
		RawScore:      round4(raw),
		Baseline:      a.Baseline,
		Confidence:    Confidence(responses),
		RealAnswers:   responses.RealCount(),
		Stage:         Stage(score),
		Percentile:    Percentile(a.Curve, score),
		Trend:         Trend(history, score),
		Contributions: contributions,
		CalculatedAt:  c.now().UTC(),
	}, nil
}

// Contributions returns each dimension's score in canonical order, estimating
// unanswered ones from the mean health of the answered scores plus a fixed
// offset. Health is averaged so risk-oriented scores do not cancel the others.
func Contributions(responses model.Responses) [model.DimensionCount]model.DimensionContribution {
	var out [model.DimensionCount]model.DimensionContribution

	sum, n := 0.0, 0
	for _, resp := range responses.List() {
		sum += resp.Dimension.Health(resp.Score)
		n++
	}
	mean := 0.0
	if n > 0 {
		mean = sum / float64(n)
	}

	for _, d := range model.AllDimensions() {
		if resp, ok := responses.Get(d); ok {
			out[d] = model.DimensionContribution{Dimension: d, Score: resp.Score}
			continue
		}
		estimate := neutralScore
		assumption := fmt.Sprintf("no answers yet, neutral %.1f", neutralScore)
		if n > 0 {
			estimate = round2(d.Health(clamp(mean+estimationOffsets[d], 1, 10)))
			assumption = fmt.Sprintf("mean health of %d answered (%.2f) %+.1f", n, mean, estimationOffsets[d])
		}
		out[d] = model.DimensionContribution{
			Dimension:  d,
			Score:      estimate,
			Estimated:  true,
			Assumption: assumption,
		}
	}
	return out
}

// Confidence returns the composite confidence on 0-100. Only five real
// answers reach 100; an inferred response counts at its own confidence.
func Confidence(responses model.Responses) int {
	if responses.Count() == 0 {
		return 0
	}
	if responses.RealCount() == model.DimensionCount {
		return 100
	}

	weight := 0.0
	for _, resp := range responses.List() {
		w := confidenceWeights[resp.Dimension]
		if resp.Inferred {
			w *= clamp(float64(resp.Confidence), 0, 100) / 100
		}
		weight += w
	}
	conf := weight * 100
	if !responses.Real(model.TRD) || !responses.Real(model.AER) {
		conf *= 0.8
	}
	return int(math.Round(math.Min(95, conf)))
}

// Stage maps a 0-10 composite to its maturity band.
func Stage(score float64) model.MaturityStage {
	switch {
	case score < 4:
		return model.StageFragile
	case score < 6:
		return model.StageRobust
	case score < 8:
		return model.StageResilient
	default:
		return model.StageAdaptive
	}
}

// Percentile places a composite on the archetype's benchmark curve. Outside
// the curve the nearest segment is extrapolated; the result is within [1,99].
func Percentile(curve [7]float64, score float64) int {
	pts := catalog.CurvePercentiles()
	last := len(curve) - 1

	var p float64
	switch {
	case score <= curve[0]:
		p = pts[0] - (curve[0]-score)*slope(curve, 0)
	case score >= curve[last]:
		p = pts[last] + (score-curve[last])*slope(curve, last-1)
	default:
		for i := 0; i < last; i++ {
			if score <= curve[i+1] {
				p = pts[i] + (score-curve[i])*slope(curve, i)
				break
			}
		}
	}
	return int(math.Round(clamp(p, 1, 99)))
}

// slope is percentile points per score unit on segment i.
func slope(curve [7]float64, i int) float64 {
	pts := catalog.CurvePercentiles()
	dx := curve[i+1] - curve[i]
	if dx <= 0 {
		return 0
	}
	return (pts[i+1] - pts[i]) / dx
}

// Trend compares the score with the last retained entry.
func Trend(history []model.ScoreEntry, score float64) model.Trend {
	if len(history) == 0 {
		return model.TrendStable
	}
	prev := history[len(history)-1].Score
	switch {
	case score > prev:
		return model.TrendImproving
	case score < prev:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
