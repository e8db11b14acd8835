package converter

import (
	"strings"
	"testing"

	"github.com/yuanying/paged2epub/internal/epub"
)

func TestBuildPageDocument(t *testing.T) {
	page := Page{Number: 3, Markup: `<div class="pagedjs_page"><p>three</p></div>`}

	doc, err := BuildPageDocument(page, "Tom & Jerry", Size{Width: "600", Height: "800"}, "styles/main.css")
	if err != nil {
		t.Fatalf("BuildPageDocument() error = %v", err)
	}
	out, err := doc.WriteToString()
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN"`,
		`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">`,
		`<meta name="viewport" content="width=600, height=800"/>`,
		`<title>Tom &amp; Jerry</title>`,
		`<link href="../styles/main.css" type="text/css" rel="stylesheet"/>`,
		`<div style="counter-reset: page 3"><div class="pagedjs_page"><p>three</p></div></div>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page document missing %s\n%s", want, out)
		}
	}
}

func TestBuildPageDocument_InvalidMarkup(t *testing.T) {
	_, err := BuildPageDocument(Page{Number: 1, Markup: "<div><p></div>"}, "t", Size{"1", "1"}, "styles/main.css")
	if err == nil || !strings.Contains(err.Error(), "page 1") {
		t.Fatalf("BuildPageDocument() error = %v, want parse error for page 1", err)
	}
}

func TestCollectStyles(t *testing.T) {
	doc := newDocument(t, `<html><head><style>p { margin: 0 }</style></head>
<body><style>h1 { color: red }</style><p>x</p></body></html>`)

	if got := CollectStyles(doc); got != "p { margin: 0 }\nh1 { color: red }" {
		t.Errorf("CollectStyles() = %q", got)
	}
	if got := CollectStyles(newDocument(t, "<p>x</p>")); got != "" {
		t.Errorf("CollectStyles() without styles = %q, want empty", got)
	}
}

func TestBuildNavigation(t *testing.T) {
	pages := []Page{{Number: 1}, {Number: 2}}

	nav := BuildNavigation(pages, "Book", "ja")

	if nav.Title != "Book" || nav.Language != "ja" {
		t.Errorf("Title, Language = %q, %q", nav.Title, nav.Language)
	}
	wantTOC := []epub.NavEntry{
		{Label: "Page 1", Href: "section_1.xhtml"},
		{Label: "Page 2", Href: "section_2.xhtml"},
	}
	wantPages := []epub.NavEntry{
		{Label: "1", Href: "section_1.xhtml"},
		{Label: "2", Href: "section_2.xhtml"},
	}
	for i := range pages {
		if nav.TOC[i] != wantTOC[i] {
			t.Errorf("TOC[%d] = %+v, want %+v", i, nav.TOC[i], wantTOC[i])
		}
		if nav.PageList[i] != wantPages[i] {
			t.Errorf("PageList[%d] = %+v, want %+v", i, nav.PageList[i], wantPages[i])
		}
	}
}

func TestBuildManifestAndSpine(t *testing.T) {
	pages := []Page{{Number: 1}, {Number: 2}}
	assets := []packagedAsset{
		{Asset: Asset{Filename: "cover.png"}, ID: "asset_2"},
		{Asset: Asset{Filename: "font.woff2"}, ID: "asset_3"},
	}
	cover := &CoverInfo{AssetID: "asset_2", Filename: "cover.png"}

	items := BuildManifest(pages, assets, cover, "styles/main.css")

	want := []struct {
		id, href, mediaType, props string
	}{
		{"section_1", "content/section_1.xhtml", epub.XHTMLMediaType, ""},
		{"section_2", "content/section_2.xhtml", epub.XHTMLMediaType, ""},
		{"asset_2", "assets/cover.png", "image/png", "cover-image"},
		{"asset_3", "assets/font.woff2", "font/woff2", ""},
		{"css", "styles/main.css", epub.CSSMediaType, ""},
		{"nav", "content/nav.xhtml", epub.XHTMLMediaType, "nav"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d: %+v", len(items), len(want), items)
	}
	for i, w := range want {
		it := items[i]
		if it.ID != w.id || it.Href != w.href || it.MediaType != w.mediaType || strings.Join(it.Properties, " ") != w.props {
			t.Errorf("items[%d] = %+v, want %+v", i, it, w)
		}
	}

	spine := BuildSpine(pages)
	if len(spine) != 2 || spine[0].IDRef != "section_1" || spine[1].IDRef != "section_2" {
		t.Errorf("BuildSpine() = %+v", spine)
	}

	if got := BuildManifest(nil, assets, nil, "styles/main.css"); len(got[0].Properties) != 0 {
		t.Errorf("asset without cover has properties %v", got[0].Properties)
	}
}
