package converter

import (
	"fmt"

	"github.com/beevik/etree"
)

const xhtml11Doctype = `DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd"`

// BuildPageDocument wraps a page fragment in an XHTML content document with
// a fixed viewport, the shared stylesheet and a page counter reset to the
// page's number.
func BuildPageDocument(page Page, title string, size Size, stylesheetPath string) (*etree.Document, error) {
	fragment := etree.NewDocument()
	if err := fragment.ReadFromString(page.Markup); err != nil {
		return nil, fmt.Errorf("failed to parse page %d markup: %w", page.Number, err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective(xhtml11Doctype)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")

	head := html.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")

	viewport := head.CreateElement("meta")
	viewport.CreateAttr("name", "viewport")
	viewport.CreateAttr("content", fmt.Sprintf("width=%s, height=%s", size.Width, size.Height))

	head.CreateElement("title").SetText(title)

	link := head.CreateElement("link")
	link.CreateAttr("href", "../"+stylesheetPath)
	link.CreateAttr("type", "text/css")
	link.CreateAttr("rel", "stylesheet")

	body := html.CreateElement("body")
	wrapper := body.CreateElement("div")
	wrapper.CreateAttr("style", fmt.Sprintf("counter-reset: page %d", page.Number))
	if root := fragment.Root(); root != nil {
		wrapper.AddChild(root)
	}

	return doc, nil
}
