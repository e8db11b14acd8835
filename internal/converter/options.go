package converter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/yuanying/paged2epub/internal/epub"
)

const (
	defaultStylesheetPath = "styles/main.css"
	defaultPagesSelector  = ".pagedjs_pages"
	defaultPageSelector   = ".pagedjs_page"
	defaultPageNumberAttr = "data-page-number"

	// A4 at 96 dpi, the paged.js default page box.
	defaultPageWidth  = "794"
	defaultPageHeight = "1123"
)

var ErrInvalidOptions = errors.New("invalid options")

// Size is the fixed page size written into every page's viewport, in CSS
// length units.
type Size struct {
	Width  string
	Height string
}

// ConvertOptions holds options for the conversion pipeline.
type ConvertOptions struct {
	Size Size

	// StylesheetPath is the consolidated stylesheet location relative to
	// the package root.
	StylesheetPath string

	// Identifier overrides the package unique identifier. When empty, the
	// document's identifier meta tag is used, then a content-derived UUID.
	Identifier string

	// Language overrides the document's lang meta tag.
	Language string

	// Modified is used for dcterms:modified when the document has no
	// modified meta tag. Zero omits the property.
	Modified time.Time

	// Cover names the asset marked as cover-image. When empty, the
	// document's cover meta tag is used, then the first image asset with
	// "cover" in its filename.
	Cover string

	PagesSelector  string
	PageSelector   string
	PageNumberAttr string

	Rendition epub.Rendition

	// Strict turns reference anomalies (unresolvable anchors, images
	// without an asset) into errors instead of warnings.
	Strict bool

	Logger *slog.Logger
}

// DefaultOptions returns options for paged.js output.
func DefaultOptions() ConvertOptions {
	return ConvertOptions{
		Size: Size{
			Width:  defaultPageWidth,
			Height: defaultPageHeight,
		},
		StylesheetPath: defaultStylesheetPath,
		PagesSelector:  defaultPagesSelector,
		PageSelector:   defaultPageSelector,
		PageNumberAttr: defaultPageNumberAttr,
		Rendition:      epub.DefaultRendition(),
	}
}

// withDefaults fills every empty field from DefaultOptions.
func (o ConvertOptions) withDefaults() ConvertOptions {
	d := DefaultOptions()
	if o.Size.Width == "" {
		o.Size.Width = d.Size.Width
	}
	if o.Size.Height == "" {
		o.Size.Height = d.Size.Height
	}
	if o.StylesheetPath == "" {
		o.StylesheetPath = d.StylesheetPath
	}
	if o.PagesSelector == "" {
		o.PagesSelector = d.PagesSelector
	}
	if o.PageSelector == "" {
		o.PageSelector = d.PageSelector
	}
	if o.PageNumberAttr == "" {
		o.PageNumberAttr = d.PageNumberAttr
	}
	if o.Rendition.Layout == "" {
		o.Rendition.Layout = d.Rendition.Layout
	}
	if o.Rendition.Spread == "" {
		o.Rendition.Spread = d.Rendition.Spread
	}
	if o.Rendition.Orientation == "" {
		o.Rendition.Orientation = d.Rendition.Orientation
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Validate checks that the selectors compile and the paths are usable.
func (o ConvertOptions) Validate() error {
	if strings.TrimSpace(o.Size.Width) == "" || strings.TrimSpace(o.Size.Height) == "" {
		return fmt.Errorf("%w: page size requires width and height", ErrInvalidOptions)
	}

	for _, s := range []struct{ name, sel string }{
		{"pages selector", o.PagesSelector},
		{"page selector", o.PageSelector},
	} {
		if _, err := cascadia.Compile(s.sel); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidOptions, s.name, s.sel, err)
		}
	}
	if strings.TrimSpace(o.PageNumberAttr) == "" {
		return fmt.Errorf("%w: page number attribute is empty", ErrInvalidOptions)
	}

	p := o.StylesheetPath
	if p == "" || strings.HasPrefix(p, "/") || path.Clean(p) != p || strings.HasPrefix(p, "../") {
		return fmt.Errorf("%w: stylesheet path %q must be a clean relative path", ErrInvalidOptions, p)
	}
	if path.Ext(p) != ".css" {
		return fmt.Errorf("%w: stylesheet path %q must end in .css", ErrInvalidOptions, p)
	}

	switch o.Rendition.Layout {
	case "pre-paginated", "reflowable":
	default:
		return fmt.Errorf("%w: rendition layout %q", ErrInvalidOptions, o.Rendition.Layout)
	}

	return nil
}

// pageSequenceSelector selects page containers nested under the pages root.
func (o ConvertOptions) pageSequenceSelector() string {
	return o.PagesSelector + " " + o.PageSelector
}
