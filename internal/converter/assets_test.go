package converter

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSelectAssets(t *testing.T) {
	var logs bytes.Buffer
	opts := DefaultOptions().withDefaults()
	opts.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	assets := []Asset{
		{URL: "data:image/png;base64,AAAA", Filename: "inline.png"},
		{URL: "images/a.png", Filename: "a.png", Data: []byte("a")},
		{URL: "other/a.png", Filename: "a.png", Data: []byte("a2")},
		{URL: "fonts/b.woff2", Filename: "b.woff2", Data: []byte("b")},
	}

	got, err := selectAssets(assets, opts)
	if err != nil {
		t.Fatalf("selectAssets() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d assets, want 2: %+v", len(got), got)
	}
	if got[0].ID != "asset_2" || got[0].URL != "images/a.png" {
		t.Errorf("got[0] = %s %s, want asset_2 images/a.png", got[0].ID, got[0].URL)
	}
	if got[1].ID != "asset_4" {
		t.Errorf("got[1].ID = %s, want asset_4", got[1].ID)
	}
	if !strings.Contains(logs.String(), "duplicate asset filename") {
		t.Errorf("expected duplicate warning:\n%s", logs.String())
	}

	if got[1].archivePath() != "OEBPS/assets/b.woff2" || got[1].href() != "assets/b.woff2" {
		t.Errorf("paths = %s %s", got[1].archivePath(), got[1].href())
	}
}

func TestSelectAssets_FilenameOutsideAssets(t *testing.T) {
	assets := []Asset{
		{URL: "file:x", Filename: "../../META-INF/container.xml", Data: []byte("x")},
		{URL: "file:y", Filename: "../styles/main.css", Data: []byte("y")},
		{URL: "file:z", Filename: "/etc/passwd", Data: []byte("z")},
		{URL: "file:w", Filename: "./w.png", Data: []byte("w")},
		{URL: "file:ok", Filename: "fonts/ok.woff2", Data: []byte("ok")},
	}

	var logs bytes.Buffer
	opts := DefaultOptions().withDefaults()
	opts.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	got, err := selectAssets(assets, opts)
	if err != nil {
		t.Fatalf("selectAssets() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "asset_5" || got[0].href() != "assets/fonts/ok.woff2" {
		t.Fatalf("selectAssets() = %+v, want only asset_5", got)
	}
	if n := strings.Count(logs.String(), "asset filename leaves the assets folder"); n != 4 {
		t.Errorf("got %d warnings, want 4:\n%s", n, logs.String())
	}

	opts.Strict = true
	_, err = selectAssets(assets, opts)
	if !errors.Is(err, ErrInvalidAsset) || !strings.Contains(err.Error(), "container.xml") {
		t.Errorf("strict selectAssets() error = %v, want ErrInvalidAsset", err)
	}
}

func TestSelectAssets_MissingFilename(t *testing.T) {
	_, err := selectAssets([]Asset{{URL: "images/x.png", Filename: " "}}, DefaultOptions().withDefaults())
	if err == nil || !strings.Contains(err.Error(), "images/x.png") {
		t.Fatalf("selectAssets() error = %v, want missing filename error", err)
	}
}

func TestIsDataURI(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"data:image/png;base64,AAAA", true},
		{" DATA:text/plain,hello", true},
		{"images/data.png", false},
		{"https://example.com/data:x", false},
		{"%zz", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isDataURI(tt.ref); got != tt.want {
			t.Errorf("isDataURI(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestAssetBasename(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"images/photo.jpg?v=1", "photo.jpg"},
		{"https://cdn.example.com/a/b/diagram.svg#top", "diagram.svg"},
		{"%zz/x.png", "x.png"},
	}
	for _, tt := range tests {
		if got := assetBasename(tt.ref); got != tt.want {
			t.Errorf("assetBasename(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestContentIdentifier(t *testing.T) {
	html := []byte("<html><body></body></html>")
	assets := []Asset{{URL: "a.png", Filename: "a.png", Data: []byte{1, 2, 3}}}

	id := contentIdentifier(html, assets)
	if id != contentIdentifier(html, assets) {
		t.Error("identifier is not deterministic")
	}
	if !strings.HasPrefix(id, "urn:uuid:") {
		t.Fatalf("identifier = %q, want urn:uuid: prefix", id)
	}

	u, err := uuid.Parse(strings.TrimPrefix(id, "urn:uuid:"))
	if err != nil {
		t.Fatalf("identifier is not a UUID: %v", err)
	}
	if u.Version() != 5 {
		t.Errorf("version = %d, want 5", u.Version())
	}

	changed := []Asset{{URL: "a.png", Filename: "a.png", Data: []byte{1, 2, 4}}}
	if contentIdentifier(html, changed) == id {
		t.Error("identifier should change with asset data")
	}
	if contentIdentifier([]byte("<html></html>"), assets) == id {
		t.Error("identifier should change with the document")
	}
}
