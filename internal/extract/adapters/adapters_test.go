package adapters

import (
	"errors"
	"testing"
)

const wikipediaArticle = `
<html>
<head><title>Siemens - Wikipedia</title><meta property="og:site_name" content="Wikipedia"></head>
<body>
<h1 id="firstHeading">Siemens</h1>
<div id="mw-content-text"><div class="mw-parser-output">
	<table class="infobox vcard">
		<tr><th>Industry</th><td><ul><li>Conglomerate</li><li>Automation</li></ul></td></tr>
		<tr><th>Headquarters</th><td>Munich, Germany</td></tr>
		<tr><th>Revenue</th><td>€77.8 billion<sup>[1]</sup> (2023)</td></tr>
		<tr><th>Number of employees</th><td>c. 320,000 (2023)</td></tr>
		<tr><th>Website</th><td><a href="https://www.siemens.com/">siemens.com</a></td></tr>
	</table>
	<p>Short.</p>
	<p>Siemens AG is a German multinational technology conglomerate focused on industrial automation and infrastructure.</p>
	<h2>History</h2>
	<p>Founded in 1847 by Werner von Siemens.</p>
</div></div>
</body>
</html>`

func TestRegistry_For(t *testing.T) {
	registry := NewRegistry()

	tests := map[string]string{
		"https://en.wikipedia.org/wiki/Siemens": "wikipedia",
		"https://de.wikipedia.org/wiki/Siemens": "wikipedia",
		"https://www.siemens.com/":              "generic",
		"https://notwikipedia.org/":             "generic",
		"https://wikipedia.org.example.com/":    "generic",
		"::not a url":                           "generic",
	}
	for url, want := range tests {
		if got := registry.For(url).Name(); got != want {
			t.Errorf("For(%q) = %s, want %s", url, got, want)
		}
	}
}

func TestRegistry_ContentTypes(t *testing.T) {
	registry := NewRegistry()
	body := "<html><head><title>Acme</title></head></html>"

	for _, ct := range []string{"", "text/html", "text/html; charset=UTF-8", "application/xhtml+xml"} {
		if _, err := registry.Extract(body, "https://acme.example", ct); err != nil {
			t.Errorf("content type %q rejected: %v", ct, err)
		}
	}
	for _, ct := range []string{"application/pdf", "application/json", "image/png"} {
		if _, err := registry.Extract(body, "https://acme.example", ct); !errors.Is(err, ErrNotHTML) {
			t.Errorf("content type %q: err = %v, want ErrNotHTML", ct, err)
		}
	}
}

func TestWikipediaAdapter_Infobox(t *testing.T) {
	page, err := NewRegistry().Extract(wikipediaArticle, "https://en.wikipedia.org/wiki/Siemens", "text/html")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if page.Adapter != "wikipedia" {
		t.Errorf("Expected wikipedia adapter, got %s", page.Adapter)
	}
	if page.SiteName != "" {
		t.Errorf("Site name should be cleared, got %q", page.SiteName)
	}

	f := page.Facts
	if f.Name != "Siemens" {
		t.Errorf("Expected name Siemens, got %q", f.Name)
	}
	if f.Industry != "Conglomerate" {
		t.Errorf("Expected first industry item, got %q", f.Industry)
	}
	if f.Country != "Germany" {
		t.Errorf("Expected country Germany, got %q", f.Country)
	}
	if f.Employees != 320000 {
		t.Errorf("Expected 320000 employees, got %d", f.Employees)
	}
	if f.Revenue != 77.8e9 {
		t.Errorf("Expected revenue 77.8e9, got %v", f.Revenue)
	}
	if f.Website != "https://www.siemens.com/" {
		t.Errorf("Unexpected website %q", f.Website)
	}
}

func TestWikipediaAdapter_LeadParagraph(t *testing.T) {
	page, err := NewRegistry().Extract(wikipediaArticle, "https://en.wikipedia.org/wiki/Siemens", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := "Siemens AG is a German multinational technology conglomerate focused on industrial automation and infrastructure."
	if page.Description != want {
		t.Errorf("Expected lead paragraph, got %q", page.Description)
	}
}

func TestCompanySite(t *testing.T) {
	page, err := NewRegistry().Extract(`<html><head><title>Northwind</title></head><body><h1>Fresh groceries</h1></body></html>`,
		"https://northwind.example", "text/html")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.Adapter != "generic" {
		t.Errorf("Expected generic adapter, got %s", page.Adapter)
	}
	if page.Title != "Northwind" || len(page.Headings) != 1 {
		t.Errorf("Unexpected page %+v", page)
	}
}

func TestCompanySite_CopyrightName(t *testing.T) {
	page, err := NewRegistry().Extract(`<html><head><title>Home</title></head><body>
		<h1>Fresh groceries, delivered</h1>
		<footer>© 2019-2025 Northwind Traders Ltd. All rights reserved.</footer>
		</body></html>`, "https://northwind.example", "text/html")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if page.Facts.Name != "Northwind Traders Ltd" {
		t.Errorf("name = %q, want the copyright holder", page.Facts.Name)
	}

	withSiteName, _ := NewRegistry().Extract(`<html><head><meta property="og:site_name" content="Northwind"></head>
		<body>© 2025 Northwind Holdings</body></html>`, "https://northwind.example", "")
	if withSiteName.Facts.Name != "" {
		t.Errorf("site name should take precedence, got fact name %q", withSiteName.Facts.Name)
	}
}

func TestCopyrightHolder(t *testing.T) {
	tests := map[string]string{
		"© 2025 Acme Retail":                                  "Acme Retail",
		"Copyright 2024, Globex Corporation | Privacy":         "Globex Corporation",
		"(c) 2010 - 2024 Initech Inc. All rights reserved":    "Initech Inc",
		"Copyright © 2023 Umbrella Health all rights reserved": "Umbrella Health",
		"Copyright infringement policy":                       "",
		"no notice here":                                      "",
	}
	for in, want := range tests {
		if got := CopyrightHolder(in); got != want {
			t.Errorf("CopyrightHolder(%q) = %q, want %q", in, got, want)
		}
	}
}
