package classify

import (
	"strings"

	"github.com/ppiankov/dii/internal/model"
)

// ValidateClassification runs sanity checks on a proposed archetype for a
// profile. It reports issues and remediation hints; it never changes a result.
func ValidateClassification(p model.CompanyProfile, proposed model.ArchetypeID) model.ClassificationCheck {
	check := model.ClassificationCheck{
		Issues:      []string{},
		Suggestions: []string{},
	}

	switch proposed {
	case model.FinancialServices:
		if !p.IsRegulated {
			check.Issues = append(check.Issues, "Financial services typically require regulatory compliance")
			check.Suggestions = append(check.Suggestions, "Verify whether the company holds financial licenses or is under regulatory oversight")
		}
	case model.CriticalSoftware:
		if p.HasPhysicalStores {
			check.Issues = append(check.Issues, "Critical software providers rarely operate physical stores")
			check.Suggestions = append(check.Suggestions, "Consider Hybrid Commerce if physical retail is significant")
		}
	case model.DigitalEcosystem:
		if !p.IsB2B && !strings.Contains(strings.ToLower(p.Description), "platform") {
			check.Issues = append(check.Issues, "Digital ecosystems are typically multi-sided platforms")
			check.Suggestions = append(check.Suggestions, "Verify whether the company connects several user groups such as buyers and sellers or riders and drivers")
		}
	}

	if !proposed.Valid() {
		check.Issues = append(check.Issues, "Unknown business model archetype")
		check.Suggestions = append(check.Suggestions, "Use an archetype id between 1 and 8")
	}

	check.Valid = len(check.Issues) == 0
	return check
}
