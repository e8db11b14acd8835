package epub

import (
	"bytes"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/beevik/etree"
)

const (
	xhtmlNamespace = "http://www.w3.org/1999/xhtml"
	opsNamespace   = "http://www.idpf.org/2007/ops"
)

// Navigation holds the entries of an EPUB 3 navigation document.
type Navigation struct {
	Title    string
	Language string
	TOC      []NavEntry
	PageList []NavEntry
}

// BuildNavDocument renders the navigation document: a table of contents
// plus a page-list for reading systems that expose print page numbers.
func BuildNavDocument(nav Navigation) *etree.Document {
	lang := nav.Language
	if lang == "" {
		lang = "en"
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", xhtmlNamespace)
	html.CreateAttr("xmlns:epub", opsNamespace)
	html.CreateAttr("lang", lang)
	html.CreateAttr("xml:lang", lang)

	head := html.CreateElement("head")
	head.CreateElement("title").SetText(nav.Title)
	head.CreateElement("meta").CreateAttr("charset", "utf-8")

	body := html.CreateElement("body")
	section := body.CreateElement("section")
	section.CreateAttr("class", "frontmatter TableOfContents")
	section.CreateAttr("epub:type", "frontmatter toc")

	header := section.CreateElement("header")
	header.CreateElement("h1").SetText("Table of Contents")

	toc := section.CreateElement("nav")
	toc.CreateAttr("epub:type", "toc")
	toc.CreateAttr("id", "toc")
	writeNavList(toc, nav.TOC)

	pageList := section.CreateElement("nav")
	pageList.CreateAttr("epub:type", "page-list")
	pageList.CreateAttr("id", "page-list")
	pageList.CreateAttr("hidden", "hidden")
	writeNavList(pageList, nav.PageList)

	doc.Indent(2)
	return doc
}

func writeNavList(parent *etree.Element, entries []NavEntry) {
	ol := parent.CreateElement("ol")
	for _, e := range entries {
		a := ol.CreateElement("li").CreateElement("a")
		a.CreateAttr("href", e.Href)
		a.SetText(e.Label)
	}
}

// ParseNavDocument reads the toc and page-list entries back from a
// navigation document.
func ParseNavDocument(content []byte) (*Navigation, error) {
	root, err := xmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse navigation document: %w", err)
	}

	nav := &Navigation{}
	if title := xmlquery.FindOne(root, "//*[local-name()='head']/*[local-name()='title']"); title != nil {
		nav.Title = title.InnerText()
	}
	if html := xmlquery.FindOne(root, "//*[local-name()='html']"); html != nil {
		nav.Language = html.SelectAttr("lang")
	}
	nav.TOC = navEntries(root, "toc")
	nav.PageList = navEntries(root, "page-list")
	return nav, nil
}

func navEntries(root *xmlquery.Node, id string) []NavEntry {
	var entries []NavEntry
	for _, a := range xmlquery.Find(root, "//*[local-name()='nav'][@id='"+id+"']//*[local-name()='a']") {
		entries = append(entries, NavEntry{
			Label: a.InnerText(),
			Href:  a.SelectAttr("href"),
		})
	}
	return entries
}
