// Package insight turns a freshly answered dimension into a benchmarked narrative.
package insight

import (
	"fmt"
	"strconv"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/model"
)

const (
	maxDepth        = 5
	maxCorrelations = 2

	aheadPercentile  = 70
	behindPercentile = 30
)

// Engine builds insight revelations. It only reads the catalog and is safe
// for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
}

// New creates an engine over the catalog.
func New(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Reveal describes resp in business terms. answers is the assessment's live
// response set; resp is treated as answered even if answers predates it.
// composite is optional and only used for meta commentary.
func (e *Engine) Reveal(resp model.DimensionResponse, archetype model.ArchetypeID, answers model.Responses, composite *model.CompositeScore) (model.InsightRevelation, error) {
	d := resp.Dimension
	if !d.Valid() {
		return model.InsightRevelation{}, &model.ConfigError{
			Component: "insight",
			Err:       fmt.Errorf("%w: %d", model.ErrUnknownDimension, int(d)),
		}
	}
	a, err := e.catalog.Lookup(archetype)
	if err != nil {
		return model.InsightRevelation{}, err
	}

	all := answers.With(resp)
	depth := all.Count()
	if depth > maxDepth {
		depth = maxDepth
	}

	peer := Compare(d, resp.Value, a.Benchmarks[d])

	correlations := correlationRules[d](resp.Value, all)
	if len(correlations) > maxCorrelations {
		correlations = correlations[:maxCorrelations]
	}
	if depth >= 3 && composite != nil {
		switch {
		case composite.Score < 4:
			correlations = append(correlations, "Multiple weak dimensions are compounding your vulnerability exponentially")
		case composite.Score > 7:
			correlations = append(correlations, "Strong performance across dimensions creates resilience multiplier effect")
		}
	}

	return model.InsightRevelation{
		Dimension:      d,
		Headline:       Headline(d, peer.Position, depth),
		BusinessImpact: impactTemplates[d](resp.Value, a),
		Peer:           peer,
		Correlations:   correlations,
		Next:           nextTeaser(d, resp.Value, all),
		Depth:          depth,
	}, nil
}

// Compare places a raw metric among archetype peers. The percentile is a
// bucket: 10, 25, 50, 75 or 90, and 95 when strictly better than the 90th
// percentile peer.
func Compare(d model.Dimension, value float64, b catalog.Benchmark) model.PeerComparison {
	better := func(v, ref float64) bool {
		if d.HigherIsBetter() {
			return v >= ref
		}
		return v <= ref
	}

	var p int
	switch {
	case better(value, b.P90) && value != b.P90:
		p = 95
	case better(value, b.P90):
		p = 90
	case better(value, b.P75):
		p = 75
	case better(value, b.P50):
		p = 50
	case better(value, b.P25):
		p = 25
	default:
		p = 10
	}

	c := model.PeerComparison{Percentile: p}
	switch {
	case p >= aheadPercentile:
		c.Position = model.PositionAhead
		c.Message = fmt.Sprintf("You're in the top %d%% of your industry", 100-p)
	case p <= behindPercentile:
		c.Position = model.PositionBehind
		c.Message = fmt.Sprintf("%d%% of peers perform better here", 100-p)
	default:
		c.Position = model.PositionAverage
		c.Message = fmt.Sprintf("You're right at industry average (%dth percentile)", p)
	}
	return c
}

// Headline picks the headline for a dimension, peer position and depth.
func Headline(d model.Dimension, pos model.PeerPosition, depth int) string {
	pool, ok := headlines[d][pos]
	if !ok {
		return ""
	}
	i := depth - 1
	if i < 0 {
		i = 0
	}
	if i > len(pool)-1 {
		i = len(pool) - 1
	}
	return pool[i]
}

// CuriosityHook returns the progress message shown after answered questions.
func CuriosityHook(answered int, composite *model.CompositeScore) string {
	switch answered {
	case 1:
		return "First insight captured. Four more dimensions will complete your immunity profile."
	case 2:
		return "Pattern emerging. Your next answer could reveal critical vulnerabilities."
	case 3:
		if composite != nil && composite.Score < 5 {
			return "Immunity gaps detected. Two more dimensions will show if recovery is possible."
		}
		return "Immunity profile taking shape. Final dimensions will determine your true resilience."
	case 4:
		return "One dimension remains. This final piece could transform your entire security posture."
	default:
		return "Complete immunity profile achieved. Now you can see your full defensive capability."
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
