package adapters

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/dii/internal/extract"
)

// CompanySite reads an organization's own website: meta tags, JSON-LD and
// visible text. Sites without structured data usually still name their
// owner in the copyright footer, which is used when nothing better exists.
type CompanySite struct{}

func NewCompanySite() *CompanySite { return &CompanySite{} }

func (CompanySite) Name() string { return "generic" }

func (CompanySite) Match(*url.URL) bool { return true }

// copyrightHolder matches "© 2019-2025 Acme Retail Ltd. All rights reserved."
var copyrightHolder = regexp.MustCompile(`(?:©|\([cC]\)|[cC]opyright)\s*(?:©\s*)?\d{4}(?:\s*[-–]\s*\d{4})?,?\s+([A-Z0-9][\w&'. -]{1,60}?)(?:\s*[,|]|\.\s|\.$|\s+[Aa]ll [Rr]ights|\s*$)`)

func (CompanySite) Read(doc *html.Node, pageURL string) (extract.Page, error) {
	page := extract.ReadPage(doc, pageURL)
	if page.Facts.Name == "" && page.SiteName == "" {
		page.Facts.Name = CopyrightHolder(page.Text)
	}
	return page, nil
}

// CopyrightHolder returns the owner named in a copyright notice, or "".
func CopyrightHolder(text string) string {
	m := copyrightHolder.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ".")
}
