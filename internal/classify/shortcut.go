package classify

import (
	"strings"

	"github.com/ppiankov/dii/internal/model"
)

// shortcutRule classifies well-known industries without signal scoring.
type shortcutRule struct {
	archetype  model.ArchetypeID
	confidence float64
	reasoning  string
	matched    []string
	match      func(name, industry, combined string) bool
}

// Evaluated in order; the first match wins.
var shortcutRules = []shortcutRule{
	{
		archetype:  model.FinancialServices,
		confidence: 0.85,
		reasoning:  "Strong financial services indicators in name or industry.",
		matched:    []string{"financial_keywords", "core_payment_processing"},
		match: func(name, industry, combined string) bool {
			return containsAny(industry, []string{"bank", "financ"}) ||
				containsAny(name, []string{"bank", "pay"}) ||
				strings.Contains(combined, "fintech")
		},
	},
	{
		archetype:  model.DigitalEcosystem,
		confidence: 0.85,
		reasoning:  "Airlines and travel operators run booking platforms and partner ecosystems.",
		matched:    []string{"booking_platform", "partner_network", "two_or_more_sided_model"},
		match: func(name, industry, combined string) bool {
			return containsAny(industry, []string{"airline", "aero"}) ||
				strings.Contains(name, "aero") ||
				strings.Contains(combined, "booking")
		},
	},
	{
		archetype:  model.RegulatedInformation,
		confidence: 0.90,
		reasoning:  "Healthcare organizations handle regulated patient data.",
		matched:    []string{"healthcare_industry", "core_sensitive_personal_data", "mandatory_certifications"},
		match: func(name, industry, combined string) bool {
			return containsAny(industry, []string{"health", "medical", "hospital"}) ||
				strings.Contains(name, "clinic")
		},
	},
	{
		archetype:  model.LegacyInfrastructure,
		confidence: 0.85,
		reasoning:  "Government bodies and utilities typically run legacy systems.",
		matched:    []string{"government_entity", "critical_infrastructure", "core_systems_10_years_plus"},
		match: func(name, industry, combined string) bool {
			return containsAny(industry, []string{"government", "utility", "energy"}) ||
				containsAny(name, []string{"federal", "nacional"})
		},
	},
}

func (c *Classifier) shortcut(p model.CompanyProfile) (model.Classification, bool) {
	name := strings.ToLower(p.Name)
	industry := strings.ToLower(p.Industry)
	combined := name + " " + industry + " " + strings.ToLower(p.Description)

	for _, rule := range shortcutRules {
		if !rule.match(name, industry, combined) {
			continue
		}
		a := c.catalog.MustLookup(rule.archetype)
		return model.Classification{
			Archetype:    a.ID,
			Name:         a.Name,
			Confidence:   rule.confidence,
			Reasoning:    reasoning(a, rule.matched, rule.confidence) + ". " + rule.reasoning,
			Alternatives: []model.Alternative{},
			Matched:      append([]string(nil), rule.matched...),
			Missing:      []string{},
			Prohibited:   []string{},
			Shortcut:     true,
			Risk:         riskProfile(a),
		}, true
	}
	return model.Classification{}, false
}
