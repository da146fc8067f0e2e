// Package classify maps a company profile to one of the eight business-model archetypes.
package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/model"
)

// Scoring weights for the signal pass.
const (
	weightRequired = 40
	weightOptional = 15
	weightKeyword  = 20
	weightBoost    = 25
	weightPriority = 10

	maxScore         = 300.0
	minConfidence    = 0.4
	maxConfidence    = 0.95
	altMinScore      = 50
	altMaxConfidence = 0.7
	maxAlternatives  = 2

	fallbackFinanceConfidence = 0.6
	defaultConfidence         = 0.4
)

var financeFallbackKeywords = []string{"bank", "banco", "financ", "credit", "payment", "insurance", "seguros"}

// Classifier classifies companies against a catalog. It holds no mutable state
// and is safe for concurrent use.
type Classifier struct {
	catalog *catalog.Catalog
}

// New creates a classifier over the given catalog.
func New(c *catalog.Catalog) *Classifier {
	return &Classifier{catalog: c}
}

type candidate struct {
	archetype  catalog.Archetype
	score      int
	matched    []string
	missing    []string
	prohibited []string
}

// Classify never fails: sparse input degrades confidence instead.
func (c *Classifier) Classify(p model.CompanyProfile) model.Classification {
	if res, ok := c.shortcut(p); ok {
		return res
	}

	in := enrich(p)
	candidates := make([]candidate, 0, model.ArchetypeCount)
	for _, a := range c.catalog.ByPriority() {
		candidates = append(candidates, scoreArchetype(a, in))
	}

	best := -1
	for i, cand := range candidates {
		if cand.score > 0 && (best < 0 || cand.score > candidates[best].score) {
			best = i
		}
	}
	if best < 0 {
		return c.fallback(in, candidates)
	}

	win := candidates[best]
	confidence := clamp(float64(win.score)/maxScore, minConfidence, maxConfidence)

	var alts []model.Alternative
	for i, cand := range candidates {
		if i == best || cand.score <= altMinScore {
			continue
		}
		alts = append(alts, model.Alternative{
			Archetype:  cand.archetype.ID,
			Name:       cand.archetype.Name,
			Confidence: round2(math.Min(altMaxConfidence, float64(cand.score)/maxScore)),
		})
	}
	sort.SliceStable(alts, func(i, j int) bool {
		return alts[i].Confidence > alts[j].Confidence
	})
	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}

	return model.Classification{
		Archetype:    win.archetype.ID,
		Name:         win.archetype.Name,
		Confidence:   round2(confidence),
		Reasoning:    reasoning(win.archetype, win.matched, confidence),
		Alternatives: alts,
		Matched:      nonNil(win.matched),
		Missing:      nonNil(win.missing),
		Prohibited:   nonNil(win.prohibited),
		Risk:         riskProfile(win.archetype),
	}
}

// Assign returns the classification for an archetype chosen by the caller.
// Signals are still evaluated so the report shows what matched.
func (c *Classifier) Assign(p model.CompanyProfile, id model.ArchetypeID) (model.Classification, error) {
	a, err := c.catalog.Lookup(id)
	if err != nil {
		return model.Classification{}, err
	}
	cand := scoreArchetype(a, enrich(p))
	return model.Classification{
		Archetype:    a.ID,
		Name:         a.Name,
		Confidence:   1,
		Reasoning:    "Archetype selected explicitly. " + a.CoreDefinition,
		Alternatives: []model.Alternative{},
		Matched:      nonNil(cand.matched),
		Missing:      nonNil(cand.missing),
		Prohibited:   nonNil(cand.prohibited),
		Risk:         riskProfile(a),
	}, nil
}

func scoreArchetype(a catalog.Archetype, in enriched) candidate {
	cand := candidate{archetype: a}

	required := 0
	for _, s := range a.Required {
		if in.has(s) {
			cand.matched = append(cand.matched, s.ID)
			required++
		} else {
			cand.missing = append(cand.missing, s.ID)
		}
	}
	if required == 0 {
		return cand
	}

	for _, s := range a.Prohibited {
		if in.has(s) {
			cand.prohibited = append(cand.prohibited, s.ID)
		}
	}
	if len(cand.prohibited) > 0 {
		return cand
	}

	optional := 0
	for _, s := range a.Optional {
		if in.has(s) {
			cand.matched = append(cand.matched, s.ID)
			optional++
		}
	}

	cand.score = weightRequired*required +
		weightOptional*optional +
		weightKeyword*in.countKeywords(a.Keywords) +
		weightBoost*in.countKeywords(a.BoostKeywords) +
		weightPriority*(9-a.Priority)
	return cand
}

func (c *Classifier) fallback(in enriched, candidates []candidate) model.Classification {
	id, confidence := model.HybridCommerce, defaultConfidence
	if in.containsAny(financeFallbackKeywords) {
		id, confidence = model.FinancialServices, fallbackFinanceConfidence
	}
	a := c.catalog.MustLookup(id)

	var missing []string
	for _, cand := range candidates {
		if cand.archetype.ID == id {
			missing = cand.missing
		}
	}
	if missing == nil {
		missing = catalog.SignalIDs(a.Required)
	}

	return model.Classification{
		Archetype:    a.ID,
		Name:         a.Name,
		Confidence:   confidence,
		Reasoning:    reasoning(a, nil, confidence),
		Alternatives: []model.Alternative{},
		Matched:      []string{},
		Missing:      missing,
		Prohibited:   []string{},
		Risk:         riskProfile(a),
	}
}

func reasoning(a catalog.Archetype, matched []string, confidence float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classified as %s with %d%% confidence. ", a.Name, int(math.Round(confidence*100)))
	if len(matched) > 0 {
		shown := matched
		if len(shown) > 3 {
			shown = shown[:3]
		}
		fmt.Fprintf(&b, "Matched %d key signals including: %s. ", len(matched), strings.Join(shown, ", "))
	}
	b.WriteString(a.CoreDefinition)
	return b.String()
}

func riskProfile(a catalog.Archetype) model.RiskProfile {
	return model.RiskProfile{
		DigitalDependency:     a.DigitalDependency.Mid(),
		InterruptionTolerance: a.InterruptionTolerance.Mid(),
		HourlyImpactUSD:       a.CyberImpact.Mid() * 1000,
		PrimaryRisks:          a.PrimaryRisks,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
