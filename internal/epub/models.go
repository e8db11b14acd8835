package epub

// Package represents an OPF package document, either built for output or
// read back from an archive.
type Package struct {
	Metadata PackageMetadata
	Manifest []ManifestItem
	Spine    []SpineItem
}

// PackageMetadata represents the metadata section of the OPF
type PackageMetadata struct {
	Identifier string
	Title      string
	Creator    string // dc:creator (author)
	Publisher  string
	Language   string
	Modified   string // dcterms:modified; omitted from the document when empty
	Rendition  Rendition
}

// Rendition holds the fixed-layout rendition properties of the package.
type Rendition struct {
	Layout      string // "pre-paginated" or "reflowable"
	Spread      string
	Orientation string
}

// DefaultRendition returns the pre-paginated rendition used for paged output.
func DefaultRendition() Rendition {
	return Rendition{
		Layout:      "pre-paginated",
		Spread:      "auto",
		Orientation: "auto",
	}
}

// ManifestItem represents an item in the manifest
type ManifestItem struct {
	ID         string
	Href       string // relative to the package document
	MediaType  string
	Properties []string
}

// SpineItem represents an item reference in the spine
type SpineItem struct {
	IDRef string
}

// NavEntry is a single link in a navigation list.
type NavEntry struct {
	Label string
	Href  string // relative to the navigation document
}

// Item returns the manifest item with the given id.
func (p *Package) Item(id string) (ManifestItem, bool) {
	for _, item := range p.Manifest {
		if item.ID == id {
			return item, true
		}
	}
	return ManifestItem{}, false
}

// HasProperty reports whether the item carries the given manifest property.
func (m ManifestItem) HasProperty(prop string) bool {
	for _, p := range m.Properties {
		if p == prop {
			return true
		}
	}
	return false
}
