package adapters

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/dii/internal/extract"
)

// WikipediaAdapter reads company articles, where the infobox carries
// industry, headcount and revenue.
type WikipediaAdapter struct {
	labels map[string]func(*extract.Facts, *html.Node)
}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{
		labels: map[string]func(*extract.Facts, *html.Node){
			"industry": func(f *extract.Facts, n *html.Node) {
				f.Industry = firstItem(n)
			},
			"number of employees": func(f *extract.Facts, n *html.Node) {
				f.Employees = extract.ParseCount(extract.TextOf(n))
			},
			"revenue": func(f *extract.Facts, n *html.Node) {
				f.Revenue = extract.ParseMoney(extract.TextOf(n))
			},
			"headquarters": func(f *extract.Facts, n *html.Node) {
				f.Country = lastSegment(extract.TextOf(n))
			},
			"website": func(f *extract.Facts, n *html.Node) {
				if a := extract.FindFirst(n, isLink); a != nil {
					f.Website = extract.Attr(a, "href")
				} else {
					f.Website = extract.TextOf(n)
				}
			},
		},
	}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// Match accepts articles on any language edition.
func (a *WikipediaAdapter) Match(u *url.URL) bool {
	host := u.Hostname()
	return host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org")
}

// Read takes the article title, lead paragraph and infobox
func (a *WikipediaAdapter) Read(doc *html.Node, rawURL string) (extract.Page, error) {
	page := extract.ReadPage(doc, rawURL)

	// The site name and title describe Wikipedia, not the company.
	page.SiteName = ""
	if h := extract.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1" && extract.Attr(n, "id") == "firstHeading"
	}); h != nil {
		page.Facts.Name = extract.TextOf(h)
	}

	content := extract.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" &&
			(extract.HasClass(n, "mw-parser-output") || extract.Attr(n, "id") == "mw-content-text")
	})
	if content == nil {
		content = doc
	}

	if lead := a.leadParagraph(content); lead != "" {
		page.Description = lead
	}

	if box := extract.FindFirst(content, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "table" && extract.HasClass(n, "infobox")
	}); box != nil {
		a.readInfobox(box, &page.Facts)
	}

	return page, nil
}

// leadParagraph returns the first non-empty paragraph before the first h2,
// skipping infoboxes and navigation boxes.
func (a *WikipediaAdapter) leadParagraph(content *html.Node) string {
	var lead string
	done := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if done {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "h2":
				done = true
				return
			case n.Data == "table" && (extract.HasClass(n, "infobox") || extract.HasClass(n, "navbox")):
				return
			case n.Data == "p":
				if text := extract.TextOf(n); len(text) > 40 {
					lead = text
					done = true
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(content)
	return lead
}

func (a *WikipediaAdapter) readInfobox(box *html.Node, facts *extract.Facts) {
	rows := extract.FindAll(box, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "tr"
	})
	for _, row := range rows {
		var label, value *html.Node
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "th":
				label = c
			case "td":
				if value == nil {
					value = c
				}
			}
		}
		if label == nil || value == nil {
			continue
		}
		key := strings.ToLower(extract.TextOf(label))
		if set, ok := a.labels[key]; ok {
			set(facts, value)
		}
	}
}

func isLink(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "a" && extract.Attr(n, "href") != ""
}

// firstItem returns the first entry of a list cell, or the whole text.
func firstItem(n *html.Node) string {
	if li := extract.FindFirst(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && c.Data == "li"
	}); li != nil {
		return extract.TextOf(li)
	}
	text := extract.TextOf(n)
	if i := strings.IndexAny(text, ",;"); i > 0 {
		return strings.TrimSpace(text[:i])
	}
	return text
}

func lastSegment(s string) string {
	parts := strings.Split(s, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}
