package classify

import (
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/dii/internal/cache"
	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/model"
)

func newClassifier() *Classifier {
	return New(catalog.Default())
}

func TestClassify_BankingShortcut(t *testing.T) {
	res := newClassifier().Classify(model.CompanyProfile{Name: "BBVA México", Industry: "Banking"})

	if res.Archetype != model.FinancialServices {
		t.Errorf("Expected %s, got %s", model.FinancialServices, res.Archetype)
	}
	if res.Confidence <= 0.8 {
		t.Errorf("Expected confidence above 0.8, got %v", res.Confidence)
	}
	if !res.Shortcut {
		t.Error("Expected the banking shortcut to fire")
	}
	if !strings.Contains(res.Reasoning, "Financial Services") {
		t.Errorf("Expected reasoning to name the archetype, got %q", res.Reasoning)
	}
}

func TestClassify_ShortcutOrder(t *testing.T) {
	tests := []struct {
		name    string
		profile model.CompanyProfile
		want    model.ArchetypeID
		conf    float64
	}{
		{"airline", model.CompanyProfile{Name: "Aeromar", Industry: "Airline"}, model.DigitalEcosystem, 0.85},
		{"booking", model.CompanyProfile{Name: "Trips", Description: "Hotel booking engine"}, model.DigitalEcosystem, 0.85},
		{"hospital", model.CompanyProfile{Name: "San José", Industry: "Hospital services"}, model.RegulatedInformation, 0.90},
		{"clinic name", model.CompanyProfile{Name: "Clinica del Valle"}, model.RegulatedInformation, 0.90},
		{"utility", model.CompanyProfile{Name: "Comisión Federal de Electricidad", Industry: "Energy"}, model.LegacyInfrastructure, 0.85},
		{"fintech beats booking", model.CompanyProfile{Name: "Trips", Description: "fintech for booking"}, model.FinancialServices, 0.85},
	}
	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.profile)
			if res.Archetype != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, res.Archetype)
			}
			if res.Confidence != tt.conf {
				t.Errorf("Expected confidence %v, got %v", tt.conf, res.Confidence)
			}
		})
	}
}

func TestClassify_UnknownCompany(t *testing.T) {
	res := newClassifier().Classify(model.CompanyProfile{Name: "Unknown Company"})

	if res.Archetype != model.HybridCommerce {
		t.Errorf("Expected %s, got %s", model.HybridCommerce, res.Archetype)
	}
	if res.Confidence != 0.4 {
		t.Errorf("Expected confidence 0.4, got %v", res.Confidence)
	}
	if res.Reasoning == "" {
		t.Error("Expected reasoning")
	}
	if res.Alternatives == nil {
		t.Error("Expected a non-nil alternatives list")
	}
	want := catalog.SignalIDs(catalog.Default().MustLookup(model.HybridCommerce).Required)
	if !reflect.DeepEqual(res.Missing, want) {
		t.Errorf("Expected missing %v, got %v", want, res.Missing)
	}
}

func TestClassify_EmptyProfileNeverFails(t *testing.T) {
	res := newClassifier().Classify(model.CompanyProfile{})
	if !res.Archetype.Valid() {
		t.Errorf("Expected a valid archetype, got %d", res.Archetype)
	}
	if res.Confidence <= 0 {
		t.Errorf("Expected positive confidence, got %v", res.Confidence)
	}
}

func TestClassify_FinanceFallback(t *testing.T) {
	res := newClassifier().Classify(model.CompanyProfile{Name: "Norte", Description: "consumer credit cooperative"})

	if res.Archetype != model.FinancialServices || res.Confidence != 0.6 {
		t.Errorf("Expected %s at 0.6, got %s at %v", model.FinancialServices, res.Archetype, res.Confidence)
	}
}

func TestClassify_SaaS(t *testing.T) {
	res := newClassifier().Classify(model.CompanyProfile{
		Name:        "Nimbus Cloud",
		Description: "B2B SaaS platform for enterprise clients with continuous deployment and a public API",
	})

	if res.Archetype != model.CriticalSoftware {
		t.Errorf("Expected %s, got %s", model.CriticalSoftware, res.Archetype)
	}
	if res.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %v", res.Confidence)
	}
	for _, sig := range []string{"b2b_saas_model", "public_api"} {
		if !slices.Contains(res.Matched, sig) {
			t.Errorf("Expected %s among matched signals %v", sig, res.Matched)
		}
	}
	if len(res.Prohibited) != 0 {
		t.Errorf("Expected no prohibited signals, got %v", res.Prohibited)
	}
	if !strings.Contains(res.Reasoning, "Software IS the product") {
		t.Errorf("Expected the core definition in reasoning, got %q", res.Reasoning)
	}
}

func TestClassify_Alternatives(t *testing.T) {
	res := newClassifier().Classify(model.CompanyProfile{
		Name:              "Grupo Norte",
		HasPhysicalStores: true,
		Description:       "retail with inventory, own fleet of trucks with gps tracking and edi",
	})

	if res.Archetype != model.HybridCommerce {
		t.Fatalf("Expected %s, got %s", model.HybridCommerce, res.Archetype)
	}
	if math.Abs(res.Confidence-0.68) > 0.001 {
		t.Errorf("Expected confidence 0.68, got %v", res.Confidence)
	}
	if len(res.Alternatives) != 1 {
		t.Fatalf("Expected 1 alternative, got %d", len(res.Alternatives))
	}
	alt := res.Alternatives[0]
	if alt.Archetype != model.SupplyChain || math.Abs(alt.Confidence-0.55) > 0.001 {
		t.Errorf("Expected %s at 0.55, got %s at %v", model.SupplyChain, alt.Archetype, alt.Confidence)
	}
}

func TestClassify_RiskProfileUsesMidpoints(t *testing.T) {
	risk := newClassifier().Classify(model.CompanyProfile{Name: "Unknown Company"}).Risk

	if risk.DigitalDependency != 45 || risk.InterruptionTolerance != 36 || risk.HourlyImpactUSD != 12500 {
		t.Errorf("Expected 45/36/12500, got %v/%v/%v", risk.DigitalDependency, risk.InterruptionTolerance, risk.HourlyImpactUSD)
	}
	if len(risk.PrimaryRisks) != 3 {
		t.Errorf("Expected 3 primary risks, got %d", len(risk.PrimaryRisks))
	}
}

func TestScoreArchetype_ProhibitedDisqualifies(t *testing.T) {
	legacy := catalog.Default().MustLookup(model.LegacyInfrastructure)
	in := enrich(model.CompanyProfile{
		Name:        "Old Corp",
		Description: "mainframe core with middleware, now moving to kubernetes",
	})

	cand := scoreArchetype(legacy, in)
	if cand.score != 0 {
		t.Errorf("Expected score 0, got %d", cand.score)
	}
	if !reflect.DeepEqual(cand.prohibited, []string{"cloud_native"}) {
		t.Errorf("Expected [cloud_native] prohibited, got %v", cand.prohibited)
	}
	if !slices.Contains(cand.matched, "core_systems_10_years_plus") {
		t.Errorf("Expected core_systems_10_years_plus matched, got %v", cand.matched)
	}
}

func TestScoreArchetype_NoRequiredSignals(t *testing.T) {
	fin := catalog.Default().MustLookup(model.FinancialServices)
	cand := scoreArchetype(fin, enrich(model.CompanyProfile{Name: "x", Description: "pci compliant"}))
	if cand.score != 0 || len(cand.missing) != 3 {
		t.Errorf("Expected score 0 with 3 missing, got %d with %v", cand.score, cand.missing)
	}
}

func TestExplicitSignals(t *testing.T) {
	in := enrich(model.CompanyProfile{Name: "x", Signals: []string{"Cloud_Native"}})
	if !in.has(catalog.Signal{ID: "cloud_native"}) {
		t.Error("Expected an explicit signal to match case-insensitively")
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		s, phrase string
		want      bool
	}{
		{"point of sale terminals", "point of sale", true},
		{"possible", "pos", false},
		{"a pos system", "pos", true},
		{"we reach each client", "ach", false},
		{"ci/cd pipeline", "ci/cd", true},
		{"tiendas", "tienda", false},
		{"api, sdk", "api", true},
	}
	for _, tt := range tests {
		if got := containsWord(tt.s, tt.phrase); got != tt.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tt.s, tt.phrase, got, tt.want)
		}
	}
}

func TestIsGovernmentDomain(t *testing.T) {
	tests := map[string]bool{
		"sat.gob.mx":           true,
		"https://www.irs.gov/": true,
		"www.gov.uk":           true,
		"example.com":          false,
		"governance.io":        false,
		"":                     false,
	}
	for host, want := range tests {
		if got := IsGovernmentDomain(host); got != want {
			t.Errorf("IsGovernmentDomain(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestDerive(t *testing.T) {
	if !Derive(model.CompanyProfile{Employees: 20}).Startup {
		t.Error("Expected 20 employees to be a startup")
	}
	if !Derive(model.CompanyProfile{Employees: 20000}).LargeEnterprise {
		t.Error("Expected 20000 employees to be a large enterprise")
	}
	if Derive(model.CompanyProfile{}).Startup {
		t.Error("Expected an unknown headcount not to be a startup")
	}
	if !Derive(model.CompanyProfile{Revenue: 2e9}).Unicorn {
		t.Error("Expected 2B revenue to be a unicorn")
	}

	tr := Derive(model.CompanyProfile{Description: "Software as a Service business solutions"})
	if !tr.SaaS || !tr.B2B {
		t.Errorf("Expected SaaS and B2B, got %+v", tr)
	}
}

func TestValidateClassification(t *testing.T) {
	check := ValidateClassification(model.CompanyProfile{Name: "x"}, model.FinancialServices)
	if check.Valid {
		t.Error("Expected unregulated finance to be flagged")
	}
	if want := []string{"Financial services typically require regulatory compliance"}; !reflect.DeepEqual(check.Issues, want) {
		t.Errorf("Expected issues %v, got %v", want, check.Issues)
	}
	if len(check.Suggestions) != 1 {
		t.Errorf("Expected 1 suggestion, got %v", check.Suggestions)
	}

	tests := []struct {
		name      string
		profile   model.CompanyProfile
		archetype model.ArchetypeID
		valid     bool
	}{
		{"regulated finance", model.CompanyProfile{Name: "x", IsRegulated: true}, model.FinancialServices, true},
		{"software with stores", model.CompanyProfile{Name: "x", HasPhysicalStores: true}, model.CriticalSoftware, false},
		{"platform ecosystem", model.CompanyProfile{Name: "x", Description: "A Platform for sellers"}, model.DigitalEcosystem, true},
		{"unknown archetype", model.CompanyProfile{Name: "x"}, model.ArchetypeID(42), false},
	}
	for _, tt := range tests {
		if got := ValidateClassification(tt.profile, tt.archetype).Valid; got != tt.valid {
			t.Errorf("%s: expected valid=%v, got %v", tt.name, tt.valid, got)
		}
	}
}

func TestCached(t *testing.T) {
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	c := NewCached(newClassifier(), mem, 0)
	p := model.CompanyProfile{Name: "BBVA México", Industry: "Banking"}

	first := c.Classify(p)
	if n := mem.Len("dii:v1:classify:"); n != 1 {
		t.Errorf("Expected 1 cached entry, got %d", n)
	}

	if second := c.Classify(p); !reflect.DeepEqual(first, second) {
		t.Errorf("Expected the cached result, got %+v", second)
	}

	c.Classify(model.CompanyProfile{Name: "Unknown Company"})
	if n := mem.Len("dii:v1:classify:"); n != 2 {
		t.Errorf("Expected 2 cached entries, got %d", n)
	}
}

func TestAssign(t *testing.T) {
	c := newClassifier()

	res, err := c.Assign(model.CompanyProfile{Name: "Northwind", Description: "retail stores"}, model.SupplyChain)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if res.Archetype != model.SupplyChain || res.Confidence != 1.0 {
		t.Errorf("Expected %s at 1.0, got %s at %v", model.SupplyChain, res.Archetype, res.Confidence)
	}
	if !strings.Contains(res.Reasoning, "selected explicitly") {
		t.Errorf("Expected explicit selection in reasoning, got %q", res.Reasoning)
	}
	if res.Alternatives == nil {
		t.Error("Expected a non-nil alternatives list")
	}

	if _, err := c.Assign(model.CompanyProfile{}, model.ArchetypeID(42)); err == nil {
		t.Error("Expected an error for an unknown archetype")
	}
}
