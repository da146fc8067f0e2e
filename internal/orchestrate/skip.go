package orchestrate

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/ppiankov/dii/internal/model"
)

const (
	correlatedRRGConfidence = 75
	correlatedTRDConfidence = 65
	defaultConfidence       = 40
)

// skipCorrelation predicts one dimension once all known dimensions are answered.
type skipCorrelation struct {
	known   []model.Dimension
	predict model.Dimension
	formula func(model.Responses) model.SkipRecommendation
}

var skipCorrelations = []skipCorrelation{
	{
		known:   []model.Dimension{model.TRD, model.BRI, model.HFP},
		predict: model.RRG,
		formula: predictRRG,
	},
	{
		known:   []model.Dimension{model.AER, model.HFP},
		predict: model.TRD,
		formula: predictTRD,
	},
}

// Industry averages offered when no correlation applies.
var skipDefaults = [model.DimensionCount]struct {
	value  int
	metric float64
}{
	model.TRD: {3, 24},
	model.AER: {3, 200_000},
	model.HFP: {3, 25},
	model.BRI: {3, 50},
	model.RRG: {3, 2.5},
}

// Pressure, spread and human error each slow recovery down.
func predictRRG(r model.Responses) model.SkipRecommendation {
	trd, _ := r.Value(model.TRD)
	bri, _ := r.Value(model.BRI)
	hfp, _ := r.Value(model.HFP)

	multiplier := 2.0
	if trd <= 6 {
		multiplier += 1.0
	}
	if bri >= 70 {
		multiplier += 1.5
	}
	if hfp >= 40 {
		multiplier += 0.5
	}

	return model.SkipRecommendation{
		Dimension:       model.RRG,
		SuggestedValue:  int(math.Min(5, math.Round(multiplier))),
		SuggestedMetric: multiplier,
		Confidence:      correlatedRRGConfidence,
		Rationale: fmt.Sprintf("Based on your %sh revenue window, %s%% blast radius, and %s%% human failure rate",
			num(trd), num(bri), num(hfp)),
	}
}

// Valuable targets with vulnerable people are hit fast.
func predictTRD(r model.Responses) model.SkipRecommendation {
	aer, _ := r.Value(model.AER)
	hfp, _ := r.Value(model.HFP)

	hours := 24.0
	switch {
	case aer >= 1_000_000 && hfp >= 30:
		hours = 6
	case aer >= 500_000:
		hours = 12
	case aer <= 100_000:
		hours = 48
	}

	value := 3
	switch {
	case hours <= 6:
		value = 1
	case hours <= 24:
		value = 2
	}

	return model.SkipRecommendation{
		Dimension:       model.TRD,
		SuggestedValue:  value,
		SuggestedMetric: hours,
		Confidence:      correlatedTRDConfidence,
		Rationale:       fmt.Sprintf("%s value + %s%% human vulnerability suggests rapid targeting", Money(aer), num(hfp)),
	}
}

// SkipRecommendations estimates values for the remaining dimensions, highest
// confidence first. Every remaining dimension gets exactly one estimate.
func SkipRecommendations(r model.Responses, remaining []model.Dimension) []model.SkipRecommendation {
	open := make(map[model.Dimension]bool, len(remaining))
	for _, d := range remaining {
		if d.Valid() {
			open[d] = true
		}
	}

	recs := []model.SkipRecommendation{}
	covered := make(map[model.Dimension]bool)
	for _, c := range skipCorrelations {
		if !open[c.predict] || covered[c.predict] || !answeredAll(r, c.known) {
			continue
		}
		recs = append(recs, c.formula(r))
		covered[c.predict] = true
	}

	for _, d := range model.AllDimensions() {
		if !open[d] || covered[d] {
			continue
		}
		def := skipDefaults[d]
		recs = append(recs, model.SkipRecommendation{
			Dimension:       d,
			SuggestedValue:  def.value,
			SuggestedMetric: def.metric,
			Confidence:      defaultConfidence,
			Rationale:       "Industry average estimate (low confidence)",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence > recs[j].Confidence
	})
	return recs
}

// Remaining lists the dimensions in order that have no response.
func Remaining(order [model.DimensionCount]model.Dimension, r model.Responses) []model.Dimension {
	out := []model.Dimension{}
	for _, d := range order {
		if !r.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func answeredAll(r model.Responses, dims []model.Dimension) bool {
	for _, d := range dims {
		if !r.Has(d) {
			return false
		}
	}
	return true
}

// Money formats a currency amount as $1.2M or $350K.
func Money(v float64) string {
	if v >= 1_000_000 {
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	}
	return fmt.Sprintf("$%.0fK", math.Round(v/1000))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
