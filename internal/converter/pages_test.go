package converter

import (
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/beevik/etree"
)

func TestPartitionPages(t *testing.T) {
	html := `<html><body>
<div class="pagedjs_page" data-page-number="0"><p>stray page outside the sequence</p></div>
<div class="pagedjs_pages">
  <div class="pagedjs_page" data-page-number="1"><p>one</p></div>
  <div class="pagedjs_page" data-page-number="2"><p>two</p></div>
  <div class="pagedjs_page" data-page-number="3"><p>three</p></div>
</div></body></html>`

	pages, err := PartitionPages(newDocument(t, html), DefaultOptions())
	if err != nil {
		t.Fatalf("PartitionPages() error = %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}

	for i, p := range pages {
		n := i + 1
		if p.Number != n {
			t.Errorf("pages[%d].Number = %d, want %d", i, p.Number, n)
		}
		if !strings.HasPrefix(p.Markup, `<div class="pagedjs_page"`) {
			t.Errorf("pages[%d].Markup = %q, want the page container", i, p.Markup)
		}
	}
	if !strings.Contains(pages[1].Markup, "<p>two</p>") {
		t.Errorf("pages[1].Markup = %q", pages[1].Markup)
	}

	p := pages[2]
	if p.ID() != "section_3" || p.Filename() != "section_3.xhtml" || p.Href() != "content/section_3.xhtml" {
		t.Errorf("page 3 naming = %s %s %s", p.ID(), p.Filename(), p.Href())
	}
}

func TestPartitionPages_CustomSelectors(t *testing.T) {
	html := `<html><body><main id="book">
<section class="page"><p>a</p></section>
<section class="page"><p>b</p></section>
</main></body></html>`

	opts := DefaultOptions()
	opts.PagesSelector = "#book"
	opts.PageSelector = "section.page"

	pages, err := PartitionPages(newDocument(t, html), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
}

func TestToXHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
		omit []string
	}{
		{
			name: "void elements",
			html: `<div><br><img src="a.png" alt="a"><hr><input type="checkbox" checked></div>`,
			want: []string{"<br/>", `<img src="a.png" alt="a"/>`, "<hr/>", `checked=""`},
		},
		{
			name: "escaping",
			html: `<div title="a &quot;b&quot; &amp; c">1 &lt; 2 &amp;&amp; 3 &gt; 2</div>`,
			want: []string{`title="a &quot;b&quot; &amp; c"`, "1 &lt; 2 &amp;&amp; 3 &gt; 2"},
		},
		{
			name: "svg namespace",
			html: `<div><svg viewBox="0 0 1 1"><use xlink:href="#s"></use></svg></div>`,
			want: []string{
				`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 1 1">`,
				`<use xlink:href="#s"/>`,
			},
		},
		{
			name: "invalid attribute names dropped",
			html: `<div @click="go()" :class="x" data-ok="1">x</div>`,
			want: []string{`data-ok="1"`},
			omit: []string{"@click", "go()", ":class"},
		},
		{
			name: "prefixed element unwrapped",
			html: `<div><p>Word<o:p><b>!</b></o:p></p></div>`,
			want: []string{"<p>Word<b>!</b></p>"},
			omit: []string{"o:p"},
		},
		{
			name: "invalid element name unwrapped",
			html: `<div><p>a<x@y>b</x@y>c</p></div>`,
			want: []string{"<p>abc</p>"},
			omit: []string{"x@y"},
		},
		{
			name: "html inside foreignObject",
			html: `<div><svg><foreignObject><p id="fo">hi</p></foreignObject></svg></div>`,
			want: []string{`<foreignObject><p xmlns="http://www.w3.org/1999/xhtml" id="fo">hi</p></foreignObject>`},
		},
		{
			name: "comments stay well-formed",
			html: `<div><!-- a -- b -->x</div>`,
			want: []string{"<!-- a - - b -->"},
		},
		{
			name: "control characters stripped",
			html: "<div>a\x01b</div>",
			want: []string{"<div>ab</div>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDocument(t, "<html><body>"+tt.html+"</body></html>")
			out, err := toXHTML(doc.Find("body > div").Get(0))
			if err != nil {
				t.Fatalf("toXHTML() error = %v", err)
			}
			if err := etree.NewDocument().ReadFromString(out); err != nil {
				t.Fatalf("output is not well-formed: %v\n%s", err, out)
			}
			if _, err := xmlquery.Parse(strings.NewReader(out)); err != nil {
				t.Fatalf("output is not namespace-well-formed: %v\n%s", err, out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %s\n%s", w, out)
				}
			}
			for _, o := range tt.omit {
				if strings.Contains(out, o) {
					t.Errorf("output should not contain %s\n%s", o, out)
				}
			}
		})
	}
}
