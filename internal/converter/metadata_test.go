package converter

import (
	"testing"
	"time"
)

func TestExtractMetadata(t *testing.T) {
	doc := newDocument(t, `<html><head>
<title>First</title><title>Second</title>
<meta charset="utf-8">
<meta name="author" content="Ada">
<meta name="author" content="Grace">
<meta name="lang" content="">
<meta name="description" content="A book">
</head><body></body></html>`)

	md := ExtractMetadata(doc)

	if md.Title() != "First" {
		t.Errorf("Title() = %q, want First", md.Title())
	}
	if md["author"] != "Grace" {
		t.Errorf("author = %q, later meta should win", md["author"])
	}
	if _, ok := md["lang"]; ok {
		t.Error("empty meta content should be ignored")
	}
	if md["description"] != "A book" {
		t.Errorf("description = %q", md["description"])
	}
}

func TestExtractMetadata_NoTitle(t *testing.T) {
	md := ExtractMetadata(newDocument(t, `<html><body><p>x</p></body></html>`))

	if title, ok := md["title"]; !ok || title != "" {
		t.Errorf("title = %q, %v; want empty and present", title, ok)
	}
}

func TestMetadata_Get(t *testing.T) {
	md := Metadata{"lang": "ja", "empty": ""}

	tests := []struct {
		key, def, want string
	}{
		{"lang", "en", "ja"},
		{"empty", "en", "en"},
		{"missing", "en", "en"},
	}
	for _, tt := range tests {
		if got := md.Get(tt.key, tt.def); got != tt.want {
			t.Errorf("Get(%q, %q) = %q, want %q", tt.key, tt.def, got, tt.want)
		}
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		option string
		want   string
	}{
		{"option", `<html lang="fr"><head><meta name="lang" content="de"></head></html>`, "ja", "ja"},
		{"meta", `<html lang="fr"><head><meta name="lang" content="de"></head></html>`, "", "de"},
		{"html attribute", `<html lang="fr"><head></head></html>`, "", "fr"},
		{"default", `<html><head></head></html>`, "", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDocument(t, tt.html)
			opts := DefaultOptions()
			opts.Language = tt.option
			if got := resolveLanguage(doc, ExtractMetadata(doc), opts); got != tt.want {
				t.Errorf("resolveLanguage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveModified(t *testing.T) {
	opts := DefaultOptions()
	if got := resolveModified(Metadata{}, opts); got != "" {
		t.Errorf("resolveModified() = %q, want empty", got)
	}

	opts.Modified = time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("JST", 9*60*60))
	if got := resolveModified(Metadata{}, opts); got != "2025-01-01T18:04:05Z" {
		t.Errorf("resolveModified() = %q, want the option in UTC", got)
	}
	if got := resolveModified(Metadata{"modified": "2024-06-01T00:00:00Z"}, opts); got != "2024-06-01T00:00:00Z" {
		t.Errorf("resolveModified() = %q, want the meta value", got)
	}
}
