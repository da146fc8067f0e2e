// Package extract reads company facts out of a fetched web page so a
// classification can start from a URL instead of a hand-written profile.
package extract

import (
	"encoding/json"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

const (
	maxHeadings = 8
	maxText     = 20000
)

// Page is what a company page reveals about the company.
type Page struct {
	URL         string   `json:"url"`
	Adapter     string   `json:"adapter"`
	Title       string   `json:"title,omitempty"`
	SiteName    string   `json:"site_name,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Headings    []string `json:"headings,omitempty"`
	Facts       Facts    `json:"facts"`

	// Text is the visible body text, truncated.
	Text string `json:"-"`
}

// Facts are structured company attributes found in markup such as
// JSON-LD or an infobox.
type Facts struct {
	Name      string  `json:"name,omitempty"`
	Industry  string  `json:"industry,omitempty"`
	Country   string  `json:"country,omitempty"`
	Website   string  `json:"website,omitempty"`
	Employees int     `json:"employees,omitempty"`
	Revenue   float64 `json:"revenue,omitempty"`
}

// ParseHTML parses an HTML document.
func ParseHTML(htmlContent string) (*html.Node, error) {
	return html.Parse(strings.NewReader(htmlContent))
}

// ReadPage collects title, meta tags, headings, JSON-LD organization data
// and visible text from doc.
func ReadPage(doc *html.Node, sourceURL string) Page {
	p := Page{URL: sourceURL}
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if p.Title == "" {
					p.Title = TextOf(n)
				}
				return
			case "meta":
				p.readMeta(n)
			case "script":
				if strings.EqualFold(Attr(n, "type"), "application/ld+json") {
					p.readJSONLD(TextOf(n))
				}
				return
			case "style", "noscript", "template", "svg":
				return
			case "h1", "h2":
				if h := TextOf(n); h != "" && len(p.Headings) < maxHeadings {
					p.Headings = append(p.Headings, h)
				}
			}
		}
		if n.Type == html.TextNode && text.Len() < maxText {
			if s := strings.TrimSpace(n.Data); s != "" {
				text.WriteString(s)
				text.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	p.Text = strings.TrimSpace(text.String())
	if len(p.Text) > maxText {
		p.Text = p.Text[:maxText]
	}
	return p
}

func (p *Page) readMeta(n *html.Node) {
	key := strings.ToLower(Attr(n, "name"))
	if key == "" {
		key = strings.ToLower(Attr(n, "property"))
	}
	content := strings.TrimSpace(Attr(n, "content"))
	if content == "" {
		return
	}

	switch key {
	case "description", "og:description":
		if p.Description == "" {
			p.Description = content
		}
	case "keywords":
		for _, k := range strings.Split(content, ",") {
			if k = strings.TrimSpace(k); k != "" {
				p.Keywords = append(p.Keywords, k)
			}
		}
	case "og:site_name", "application-name":
		if p.SiteName == "" {
			p.SiteName = content
		}
	}
}

type ldAddress struct {
	Country json.RawMessage `json:"addressCountry"`
}

type ldOrganization struct {
	Type        json.RawMessage   `json:"@type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	URL         string            `json:"url"`
	Industry    string            `json:"industry"`
	Employees   json.RawMessage   `json:"numberOfEmployees"`
	Address     ldAddress         `json:"address"`
	Graph       []json.RawMessage `json:"@graph"`
}

// readJSONLD fills Facts from the first Organization object in a JSON-LD
// block. Malformed blocks are ignored.
func (p *Page) readJSONLD(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" || p.Facts.Name != "" {
		return
	}

	var objects []json.RawMessage
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &objects); err != nil {
			return
		}
	} else {
		objects = []json.RawMessage{json.RawMessage(raw)}
	}

	for len(objects) > 0 {
		var org ldOrganization
		obj := objects[0]
		objects = objects[1:]
		if err := json.Unmarshal(obj, &org); err != nil {
			continue
		}
		objects = append(objects, org.Graph...)
		if !isOrganization(org.Type) {
			continue
		}

		p.Facts.Name = org.Name
		p.Facts.Industry = org.Industry
		p.Facts.Website = org.URL
		p.Facts.Employees = ldEmployees(org.Employees)
		p.Facts.Country = ldCountry(org.Address.Country)
		if p.Description == "" {
			p.Description = org.Description
		}
		return
	}
}

var organizationTypes = map[string]bool{
	"organization":           true,
	"corporation":            true,
	"localbusiness":          true,
	"store":                  true,
	"onlinestore":            true,
	"governmentorganization": true,
	"ngo":                    true,
}

func isOrganization(raw json.RawMessage) bool {
	var single string
	if json.Unmarshal(raw, &single) == nil {
		return organizationTypes[strings.ToLower(single)]
	}
	var many []string
	if json.Unmarshal(raw, &many) == nil {
		for _, t := range many {
			if organizationTypes[strings.ToLower(t)] {
				return true
			}
		}
	}
	return false
}

// ldEmployees accepts a number, a numeric string or a QuantitativeValue.
func ldEmployees(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return int(n)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return ParseCount(s)
	}
	var qv struct {
		Value    json.RawMessage `json:"value"`
		MinValue json.RawMessage `json:"minValue"`
	}
	if json.Unmarshal(raw, &qv) == nil {
		if v := ldEmployees(qv.Value); v > 0 {
			return v
		}
		return ldEmployees(qv.MinValue)
	}
	return 0
}

func ldCountry(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var c struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(raw, &c) == nil {
		return c.Name
	}
	return ""
}

// TextOf returns the whitespace-normalized text content of n.
func TextOf(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
			buf.WriteByte(' ')
		}
		if node.Type == html.ElementNode && (node.Data == "style" || node.Data == "sup") {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// Attr returns the value of attribute key, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether n carries the CSS class.
func HasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// FindFirst returns the first node, depth first, matching pred.
func FindFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node matching pred.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if pred(node) {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Hostname returns the host of rawURL without a leading "www.".
func Hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	if u.Host == "" && u.Scheme == "" {
		// Bare domains parse as paths.
		u, err = url.Parse("https://" + strings.TrimSpace(rawURL))
		if err != nil {
			return ""
		}
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
