package catalog

import (
	"errors"
	"testing"

	"github.com/ppiankov/dii/internal/model"
)

func TestDefault_AllArchetypesPresent(t *testing.T) {
	c := Default()
	all := c.All()
	if len(all) != model.ArchetypeCount {
		t.Fatalf("expected %d archetypes, got %d", model.ArchetypeCount, len(all))
	}
	for i, a := range all {
		if a.ID != model.ArchetypeID(i+1) {
			t.Errorf("archetype at index %d has id %d", i, a.ID)
		}
		if a.Name == "" || a.CoreDefinition == "" {
			t.Errorf("archetype %d missing name or definition", a.ID)
		}
		if len(a.Required) != 3 || len(a.Prohibited) != 3 || len(a.Optional) != 3 {
			t.Errorf("archetype %d: expected 3/3/3 signals, got %d/%d/%d",
				a.ID, len(a.Required), len(a.Prohibited), len(a.Optional))
		}
		if a.Baseline < 0.2 || a.Baseline > 2.0 {
			t.Errorf("archetype %d baseline %.2f outside expected band", a.ID, a.Baseline)
		}
	}
}

func TestDefault_CurvesAscend(t *testing.T) {
	for _, a := range Default().All() {
		for i := 1; i < len(a.Curve); i++ {
			if a.Curve[i] <= a.Curve[i-1] {
				t.Errorf("archetype %d curve not strictly ascending at %d: %v", a.ID, i, a.Curve)
			}
		}
	}
}

func TestDefault_BenchmarkDirection(t *testing.T) {
	for _, a := range Default().All() {
		for _, d := range model.AllDimensions() {
			b := a.Benchmarks[d]
			if d.HigherIsBetter() {
				if !(b.P25 < b.P50 && b.P50 < b.P75 && b.P75 < b.P90) {
					t.Errorf("archetype %d %s benchmark should ascend: %+v", a.ID, d, b)
				}
			} else if !(b.P25 > b.P50 && b.P50 > b.P75 && b.P75 > b.P90) {
				t.Errorf("archetype %d %s benchmark should descend: %+v", a.ID, d, b)
			}
		}
	}
}

func TestDefault_ImpactDistributionSumsTo100(t *testing.T) {
	for _, a := range Default().All() {
		sum := a.Impact.Operational + a.Impact.Trust + a.Impact.Compliance + a.Impact.Strategic
		if sum != 100 {
			t.Errorf("archetype %d impact distribution sums to %d", a.ID, sum)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	c := Default()
	for _, id := range []model.ArchetypeID{0, 9, -1} {
		_, err := c.Lookup(id)
		if err == nil {
			t.Fatalf("expected error for archetype %d", id)
		}
		if !errors.Is(err, model.ErrUnknownArchetype) {
			t.Errorf("expected ErrUnknownArchetype, got %v", err)
		}
		var cfgErr *model.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("expected ConfigError, got %T", err)
		}
	}
}

func TestLookup_ReturnsCopy(t *testing.T) {
	c := Default()
	a := c.MustLookup(model.FinancialServices)
	a.Keywords[0] = "mutated"
	a.Required = nil

	again := c.MustLookup(model.FinancialServices)
	if again.Keywords[0] == "mutated" {
		t.Error("catalog keywords were mutated through a lookup copy")
	}
	if len(again.Required) != 3 {
		t.Error("catalog signals were mutated through a lookup copy")
	}
}

func TestByPriority(t *testing.T) {
	ordered := Default().ByPriority()
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Priority < ordered[i-1].Priority {
			t.Fatalf("priority order broken at %d", i)
		}
	}
	if ordered[0].ID != model.HybridCommerce {
		t.Errorf("expected hybrid commerce first, got %s", ordered[0].ID)
	}
	if ordered[2].ID != model.DigitalEcosystem {
		t.Errorf("expected digital ecosystem third, got %s", ordered[2].ID)
	}
}

func TestBenchmark_InvalidDimension(t *testing.T) {
	if _, err := Default().Benchmark(model.CriticalSoftware, model.Dimension(7)); !errors.Is(err, model.ErrUnknownDimension) {
		t.Errorf("expected ErrUnknownDimension, got %v", err)
	}
}

func TestRangeMid(t *testing.T) {
	if got := (Range{Min: 24, Max: 48}).Mid(); got != 36 {
		t.Errorf("expected 36, got %v", got)
	}
}

func TestCurvePercentiles_ReturnsCopy(t *testing.T) {
	pts := CurvePercentiles()
	pts[0] = 99

	got := CurvePercentiles()
	if got[0] != 10 {
		t.Errorf("expected first curve percentile 10 after caller edit, got %v", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Errorf("curve percentiles must ascend, got %v", got)
		}
	}
}
