package classify

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/model"
)

// Traits are facts derived from a profile before signal scoring.
type Traits struct {
	LargeEnterprise bool `json:"large_enterprise,omitempty"`
	Startup         bool `json:"startup,omitempty"`
	Unicorn         bool `json:"unicorn,omitempty"`
	Government      bool `json:"government,omitempty"`
	B2B             bool `json:"b2b,omitempty"`
	SaaS            bool `json:"saas,omitempty"`
}

type enriched struct {
	profile model.CompanyProfile
	traits  Traits
	text    string
	flags   map[string]bool
}

// Derive computes the traits used to enrich a profile.
func Derive(p model.CompanyProfile) Traits {
	var t Traits
	switch {
	case p.Employees > 10000:
		t.LargeEnterprise = true
	case p.Employees > 0 && p.Employees < 50:
		t.Startup = true
	}
	t.Unicorn = p.Revenue > 1_000_000_000
	t.Government = IsGovernmentDomain(p.Domain)

	desc := strings.ToLower(p.Description)
	t.B2B = p.IsB2B || containsAny(desc, []string{"enterprise", "b2b", "corporate", "business solutions"})
	t.SaaS = containsAny(desc, []string{"saas", "software as a service", "cloud platform"})
	return t
}

func enrich(p model.CompanyProfile) enriched {
	t := Derive(p)

	flags := make(map[string]bool, len(p.Signals)+4)
	for _, s := range p.Signals {
		flags[strings.ToLower(strings.TrimSpace(s))] = true
	}
	if p.HasPhysicalStores {
		flags["physical_stores"] = true
	}
	if t.B2B {
		flags["dependent_enterprise_clients"] = true
	}
	if t.SaaS {
		flags["b2b_saas_model"] = true
	}
	if p.IsRegulated {
		flags["mandatory_certifications"] = true
	}
	if p.CriticalInfrastructure {
		flags["specific_hardware_dependency"] = true
	}

	parts := []string{p.Name, p.Industry, p.Description, p.Domain, p.Country}
	parts = append(parts, p.Signals...)
	if t.Government {
		parts = append(parts, "gobierno")
	}
	if t.B2B {
		parts = append(parts, "b2b")
	}
	if t.SaaS {
		parts = append(parts, "saas")
	}

	return enriched{
		profile: p,
		traits:  t,
		text:    strings.ToLower(strings.Join(parts, " ")),
		flags:   flags,
	}
}

// has reports whether a signal is asserted explicitly or detected in the text.
func (e enriched) has(s catalog.Signal) bool {
	if e.flags[s.ID] {
		return true
	}
	if containsWord(e.text, strings.ReplaceAll(s.ID, "_", " ")) {
		return true
	}
	for _, phrase := range s.Phrases {
		if containsWord(e.text, phrase) {
			return true
		}
	}
	return false
}

func (e enriched) countKeywords(keywords []string) int {
	n := 0
	for _, k := range keywords {
		if containsWord(e.text, strings.ToLower(k)) {
			n++
		}
	}
	return n
}

func (e enriched) containsAny(subs []string) bool {
	return containsAny(e.text, subs)
}

// IsGovernmentDomain reports whether a host or URL sits under a government
// public suffix such as gov, gob.mx or gov.uk.
func IsGovernmentDomain(domain string) bool {
	host := strings.ToLower(strings.TrimSpace(domain))
	if host == "" {
		return false
	}
	if strings.Contains(host, "://") {
		if u, err := url.Parse(host); err == nil {
			host = u.Hostname()
		}
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "www."), ".")

	suffix, _ := publicsuffix.PublicSuffix(host)
	for _, label := range strings.Split(suffix, ".") {
		if label == "gov" || label == "gob" {
			return true
		}
	}
	// Some government registries are not listed as public suffixes.
	return strings.Contains("."+host+".", ".gov.") || strings.Contains("."+host+".", ".gob.")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// containsWord reports whether phrase occurs in s on word boundaries.
func containsWord(s, phrase string) bool {
	if phrase == "" {
		return false
	}
	for start := 0; start < len(s); {
		i := strings.Index(s[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		if boundaryBefore(s, i) && boundaryAfter(s, end) {
			return true
		}
		start = i + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	return !isWordByte(s[i-1])
}

func boundaryAfter(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	return !isWordByte(s[end])
}

func isWordByte(b byte) bool {
	return b >= 0x80 || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b))
}
