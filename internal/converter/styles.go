package converter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CollectStyles concatenates the text of every style block in document
// order, one block per line.
func CollectStyles(doc *goquery.Document) string {
	var styles []string
	doc.Find("style").Each(func(i int, s *goquery.Selection) {
		styles = append(styles, s.Text())
	})
	return strings.Join(styles, "\n")
}
