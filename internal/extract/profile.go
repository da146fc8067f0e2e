package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/dii/internal/model"
)

var (
	storePhrases = []string{
		"store locator", "find a store", "find a branch", "our stores", "visit our store",
		"locations near you", "sucursales", "tiendas",
	}
	businessPhrases = []string{
		"request a demo", "contact sales", "for enterprises", "for business", "enterprise plan",
		"book a demo", "b2b",
	}
	regulatedPhrases = []string{
		"regulated by", "licensed by", "member fdic", "hipaa", "pci dss", "authorised by the",
		"authorized by the", "cnbv", "condusef",
	}
)

// titleSeparators split "Acme | Shoes and more" style titles.
var titleSeparators = []string{" | ", " - ", " – ", " — ", " · ", ": "}

// Merge fills the empty fields of profile from page. Values supplied by the
// caller always win; boolean traits are only ever switched on.
func Merge(profile model.CompanyProfile, page Page) model.CompanyProfile {
	out := profile

	if out.Name == "" {
		out.Name = firstNonEmpty(page.Facts.Name, page.SiteName, titleName(page.Title))
	}
	if out.Domain == "" {
		out.Domain = firstNonEmpty(Hostname(page.Facts.Website), Hostname(page.URL))
	}
	if out.Industry == "" {
		out.Industry = page.Facts.Industry
	}
	if out.Country == "" {
		out.Country = page.Facts.Country
	}
	if out.Employees == 0 {
		out.Employees = page.Facts.Employees
	}
	if out.Revenue == 0 {
		out.Revenue = page.Facts.Revenue
	}
	if out.Description == "" {
		out.Description = Summary(page)
	}

	text := strings.ToLower(page.Text + " " + page.Description)
	out.HasPhysicalStores = out.HasPhysicalStores || mentions(text, storePhrases)
	out.IsB2B = out.IsB2B || mentions(text, businessPhrases)
	out.IsRegulated = out.IsRegulated || mentions(text, regulatedPhrases)
	return out
}

// Summary joins the page description, keywords and headings into the text
// the classifier reads.
func Summary(page Page) string {
	parts := make([]string, 0, 3)
	if page.Description != "" {
		parts = append(parts, page.Description)
	}
	if len(page.Keywords) > 0 {
		parts = append(parts, strings.Join(page.Keywords, ", "))
	}
	if len(page.Headings) > 0 {
		parts = append(parts, strings.Join(page.Headings, ". "))
	}
	return strings.Join(parts, ". ")
}

func titleName(title string) string {
	title = strings.TrimSpace(title)
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return title
}

func mentions(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var numberPattern = regexp.MustCompile(`\d[\d,.\s]*\d|\d`)

// ParseCount reads the first number in s, e.g. "c. 320,000 (2023)" -> 320000.
func ParseCount(s string) int {
	v, ok := firstNumber(s)
	if !ok {
		return 0
	}
	return int(v * scale(s))
}

// ParseMoney reads an amount such as "US$77.8 billion (2023)". The currency
// is not converted.
func ParseMoney(s string) float64 {
	v, ok := firstNumber(s)
	if !ok {
		return 0
	}
	return v * scale(s)
}

func firstNumber(s string) (float64, bool) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	m = strings.Join(strings.Fields(m), "")

	// "1,234,567" and "1.234.567" are thousands; "77.8" is a decimal.
	if strings.Count(m, ",") > 0 && strings.Count(m, ".") == 0 {
		if isGrouped(m, ",") {
			m = strings.ReplaceAll(m, ",", "")
		} else {
			m = strings.ReplaceAll(m, ",", ".")
		}
	} else if strings.Count(m, ".") > 1 {
		m = strings.ReplaceAll(m, ".", "")
	} else {
		m = strings.ReplaceAll(m, ",", "")
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isGrouped(m, sep string) bool {
	groups := strings.Split(m, sep)
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

func scale(s string) float64 {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "trillion"):
		return 1e12
	case strings.Contains(lower, "billion"), strings.Contains(lower, "bn"):
		return 1e9
	case strings.Contains(lower, "million"), strings.Contains(lower, " mn"):
		return 1e6
	}
	return 1
}
