package converter

import (
	"github.com/yuanying/paged2epub/internal/epub"
)

// BuildManifest lists one item per page followed by one per packaged
// asset, then the fixed stylesheet and navigation entries.
func BuildManifest(pages []Page, assets []packagedAsset, cover *CoverInfo, stylesheetPath string) []epub.ManifestItem {
	items := make([]epub.ManifestItem, 0, len(pages)+len(assets)+2)

	for _, p := range pages {
		items = append(items, epub.ManifestItem{
			ID:        p.ID(),
			Href:      p.Href(),
			MediaType: epub.XHTMLMediaType,
		})
	}

	for _, a := range assets {
		item := epub.ManifestItem{
			ID:        a.ID,
			Href:      a.href(),
			MediaType: epub.MediaTypeByFilename(a.Filename),
		}
		if cover != nil && cover.AssetID == a.ID {
			item.Properties = []string{"cover-image"}
		}
		items = append(items, item)
	}

	items = append(items,
		epub.ManifestItem{
			ID:        "css",
			Href:      stylesheetPath,
			MediaType: epub.CSSMediaType,
		},
		epub.ManifestItem{
			ID:         "nav",
			Href:       navHref(),
			MediaType:  epub.XHTMLMediaType,
			Properties: []string{"nav"},
		},
	)

	return items
}

// BuildSpine lists the pages in reading order.
func BuildSpine(pages []Page) []epub.SpineItem {
	spine := make([]epub.SpineItem, len(pages))
	for i, p := range pages {
		spine[i] = epub.SpineItem{IDRef: p.ID()}
	}
	return spine
}

func navHref() string {
	return epub.ContentDir + "/" + epub.NavFilename
}
