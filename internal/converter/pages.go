package converter

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuanying/paged2epub/internal/epub"
)

// Page is one rendered page of the source document.
type Page struct {
	Number int    // 1-based position in the page sequence
	Markup string // XHTML serialization of the page container
}

// ID returns the manifest id of the page.
func (p Page) ID() string {
	return fmt.Sprintf("section_%d", p.Number)
}

// Filename returns the content file name of the page.
func (p Page) Filename() string {
	return pageFilename(p.Number)
}

// Href returns the page location relative to the package document.
func (p Page) Href() string {
	return epub.ContentDir + "/" + p.Filename()
}

func pageFilename(n int) string {
	return fmt.Sprintf("section_%d.xhtml", n)
}

// PartitionPages splits the document into its page containers, in document
// order. Content files, manifest, spine and navigation all derive from the
// returned sequence.
func PartitionPages(doc *goquery.Document, opts ConvertOptions) ([]Page, error) {
	opts = opts.withDefaults()

	var pages []Page
	var partErr error
	doc.Find(opts.pageSequenceSelector()).EachWithBreak(func(i int, s *goquery.Selection) bool {
		markup, err := toXHTML(s.Get(0))
		if err != nil {
			partErr = fmt.Errorf("failed to serialize page %d: %w", i+1, err)
			return false
		}
		pages = append(pages, Page{
			Number: i + 1,
			Markup: markup,
		})
		return true
	})
	if partErr != nil {
		return nil, partErr
	}

	return pages, nil
}
