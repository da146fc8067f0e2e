// Package adapters picks a page reader by site. Company websites get the
// generic reader; sites with a known layout, such as Wikipedia articles,
// get one that understands it.
package adapters

import (
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/dii/internal/extract"
)

// ErrNotHTML is returned for pages that are not HTML documents.
var ErrNotHTML = errors.New("page is not HTML")

// Adapter reads company facts from one kind of site.
type Adapter interface {
	Name() string
	// Match reports whether the adapter understands pages at u.
	Match(u *url.URL) bool
	Read(doc *html.Node, pageURL string) (extract.Page, error)
}

// Registry tries site adapters in registration order and falls back to the
// company website reader.
type Registry struct {
	sites    []Adapter
	fallback Adapter
}

func NewRegistry() *Registry {
	r := &Registry{fallback: NewCompanySite()}
	r.Register(NewWikipediaAdapter())
	return r
}

func (r *Registry) Register(a Adapter) {
	r.sites = append(r.sites, a)
}

// For returns the adapter for pageURL.
func (r *Registry) For(pageURL string) Adapter {
	u, err := url.Parse(pageURL)
	if err != nil {
		return r.fallback
	}
	for _, a := range r.sites {
		if a.Match(u) {
			return a
		}
	}
	return r.fallback
}

// Extract parses body and reads it with the adapter for pageURL. An empty
// content type is treated as HTML.
func (r *Registry) Extract(body, pageURL, contentType string) (extract.Page, error) {
	if !isHTML(contentType) {
		return extract.Page{}, fmt.Errorf("%s (%s): %w", pageURL, contentType, ErrNotHTML)
	}
	doc, err := extract.ParseHTML(body)
	if err != nil {
		return extract.Page{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	a := r.For(pageURL)
	page, err := a.Read(doc, pageURL)
	if err != nil {
		return extract.Page{}, fmt.Errorf("%s adapter: %w", a.Name(), err)
	}
	page.Adapter = a.Name()
	return page, nil
}

func isHTML(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
