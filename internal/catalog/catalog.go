// Package catalog holds the immutable business-model archetype table.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ppiankov/dii/internal/model"
)

// Range is an inclusive numeric range.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// Signal is a classification signal with the phrases that reveal it in free text.
type Signal struct {
	ID      string   `json:"id" yaml:"id"`
	Phrases []string `json:"-" yaml:"-"`
}

// Benchmark holds the 25th/50th/75th/90th percentile raw metric values of peers.
// For dimensions where lower is better the values descend.
type Benchmark struct {
	P25 float64 `json:"p25" yaml:"p25"`
	P50 float64 `json:"p50" yaml:"p50"`
	P75 float64 `json:"p75" yaml:"p75"`
	P90 float64 `json:"p90" yaml:"p90"`
}

var curvePercentiles = [7]float64{10, 25, 40, 50, 75, 90, 95}

// CurvePercentiles returns the percentiles at which Curve thresholds are defined.
func CurvePercentiles() [7]float64 { return curvePercentiles }

// Archetype describes one business-model archetype.
type Archetype struct {
	ID             model.ArchetypeID `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	CoreDefinition string            `json:"core_definition" yaml:"core_definition"`

	DigitalDependency     Range `json:"digital_dependency" yaml:"digital_dependency"`         // percent
	InterruptionTolerance Range `json:"interruption_tolerance" yaml:"interruption_tolerance"` // hours
	CyberImpact           Range `json:"cyber_impact" yaml:"cyber_impact"`                     // USD thousands per hour

	Required   []Signal `json:"required_signals" yaml:"required_signals"`
	Prohibited []Signal `json:"prohibited_signals" yaml:"prohibited_signals"`
	Optional   []Signal `json:"optional_signals" yaml:"optional_signals"`

	PrimaryRisks  []string `json:"primary_risks" yaml:"primary_risks"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
	BoostKeywords []string `json:"boost_keywords" yaml:"boost_keywords"`
	Priority      int      `json:"priority" yaml:"priority"` // 1 = checked first

	Baseline   float64                         `json:"baseline" yaml:"baseline"` // Expected raw ratio
	Curve      [7]float64                      `json:"curve" yaml:"curve"`       // Composite thresholds at CurvePercentiles()
	Benchmarks [model.DimensionCount]Benchmark `json:"benchmarks" yaml:"benchmarks"`
	HourlyLoss string                          `json:"hourly_loss" yaml:"hourly_loss"`
	Systems    int                             `json:"critical_systems" yaml:"critical_systems"`
	Impact     ImpactDistribution              `json:"impact_distribution" yaml:"impact_distribution"`
}

// ImpactDistribution splits incident cost by category, in percent.
type ImpactDistribution struct {
	Operational int `json:"operational" yaml:"operational"`
	Trust       int `json:"trust" yaml:"trust"`
	Compliance  int `json:"compliance" yaml:"compliance"`
	Strategic   int `json:"strategic" yaml:"strategic"`
}

// Catalog is a read-only archetype table. It is safe for concurrent use.
type Catalog struct {
	archetypes [model.ArchetypeCount]Archetype
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog, constructed once.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = New(builtinArchetypes())
	})
	return defaultCatalog
}

// New builds a catalog from eight archetypes ordered by id.
func New(archetypes [model.ArchetypeCount]Archetype) *Catalog {
	return &Catalog{archetypes: archetypes}
}

// Lookup returns a copy of the archetype with the given id.
func (c *Catalog) Lookup(id model.ArchetypeID) (Archetype, error) {
	if !id.Valid() {
		return Archetype{}, &model.ConfigError{
			Component: "catalog",
			Err:       fmt.Errorf("%w: %d", model.ErrUnknownArchetype, int(id)),
		}
	}
	return c.archetypes[id-1].clone(), nil
}

// MustLookup is Lookup for ids already known to be valid.
func (c *Catalog) MustLookup(id model.ArchetypeID) Archetype {
	a, err := c.Lookup(id)
	if err != nil {
		panic(err)
	}
	return a
}

// All returns copies of every archetype ordered by id.
func (c *Catalog) All() []Archetype {
	out := make([]Archetype, 0, model.ArchetypeCount)
	for _, a := range c.archetypes {
		out = append(out, a.clone())
	}
	return out
}

// ByPriority returns archetypes in classification priority order.
func (c *Catalog) ByPriority() []Archetype {
	out := c.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// Baseline returns the expected raw ratio for an archetype.
func (c *Catalog) Baseline(id model.ArchetypeID) (float64, error) {
	a, err := c.Lookup(id)
	if err != nil {
		return 0, err
	}
	return a.Baseline, nil
}

// Benchmark returns peer benchmarks for one dimension of an archetype.
func (c *Catalog) Benchmark(id model.ArchetypeID, d model.Dimension) (Benchmark, error) {
	if !d.Valid() {
		return Benchmark{}, &model.ConfigError{
			Component: "catalog",
			Err:       fmt.Errorf("%w: %d", model.ErrUnknownDimension, int(d)),
		}
	}
	if !id.Valid() {
		return Benchmark{}, &model.ConfigError{
			Component: "catalog",
			Err:       fmt.Errorf("%w: %d", model.ErrUnknownArchetype, int(id)),
		}
	}
	return c.archetypes[id-1].Benchmarks[d], nil
}

// SignalIDs returns the ids of a signal list.
func SignalIDs(signals []Signal) []string {
	ids := make([]string, len(signals))
	for i, s := range signals {
		ids[i] = s.ID
	}
	return ids
}

func (a Archetype) clone() Archetype {
	a.Required = append([]Signal(nil), a.Required...)
	a.Prohibited = append([]Signal(nil), a.Prohibited...)
	a.Optional = append([]Signal(nil), a.Optional...)
	a.PrimaryRisks = append([]string(nil), a.PrimaryRisks...)
	a.Keywords = append([]string(nil), a.Keywords...)
	a.BoostKeywords = append([]string(nil), a.BoostKeywords...)
	return a
}
