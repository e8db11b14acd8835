package converter

import (
	"github.com/PuerkitoBio/goquery"
)

// Metadata maps meta tag names to values. The "title" key is always present.
type Metadata map[string]string

// ExtractMetadata reads the document title and every named meta tag.
// Later meta tags overwrite earlier ones with the same name.
func ExtractMetadata(doc *goquery.Document) Metadata {
	md := Metadata{
		"title": doc.Find("title").First().Text(),
	}

	doc.Find("meta").Each(func(i int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		if name != "" && content != "" {
			md[name] = content
		}
	})

	return md
}

// Title returns the document title.
func (m Metadata) Title() string {
	return m["title"]
}

// Get returns the value for key, or def when the key is absent or empty.
func (m Metadata) Get(key, def string) string {
	if v := m[key]; v != "" {
		return v
	}
	return def
}
