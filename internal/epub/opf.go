package epub

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/beevik/etree"
)

var (
	packageExpr  = xpath.MustCompile("//*[local-name()='package']")
	manifestExpr = xpath.MustCompile("//*[local-name()='manifest']/*[local-name()='item']")
	spineExpr    = xpath.MustCompile("//*[local-name()='spine']/*[local-name()='itemref']")
)

const (
	opfNamespace = "http://www.idpf.org/2007/opf"
	dcNamespace  = "http://purl.org/dc/elements/1.1/"

	// packagePrefixes declares the rendition and iBooks vocabularies used by
	// the metadata meta elements.
	packagePrefixes = "rendition: http://www.idpf.org/vocab/rendition/# " +
		"ibooks: http://vocabulary.itunes.apple.com/rdf/ibooks/vocabulary-extensions-1.0/"

	identifierID = "ident"
)

// Validate checks manifest id uniqueness and that every spine itemref points
// at a manifest item.
func (p *Package) Validate() error {
	seen := make(map[string]bool, len(p.Manifest))
	for _, item := range p.Manifest {
		if seen[item.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = true
	}
	for _, ref := range p.Spine {
		if !seen[ref.IDRef] {
			return fmt.Errorf("spine itemref %q not found in manifest", ref.IDRef)
		}
	}
	return nil
}

// BuildPackageDocument renders the OPF package document.
func BuildPackageDocument(pkg *Package) *etree.Document {
	md := pkg.Metadata
	lang := md.Language
	if lang == "" {
		lang = "en"
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8" standalone="yes"`)

	root := doc.CreateElement("package")
	root.CreateAttr("xmlns", opfNamespace)
	root.CreateAttr("prefix", packagePrefixes)
	root.CreateAttr("unique-identifier", identifierID)
	root.CreateAttr("version", "3.0")
	root.CreateAttr("xml:lang", lang)

	metadata := root.CreateElement("metadata")
	metadata.CreateAttr("xmlns:dc", dcNamespace)
	metadata.CreateAttr("xmlns:opf", opfNamespace)

	identifier := metadata.CreateElement("dc:identifier")
	identifier.CreateAttr("id", identifierID)
	identifier.SetText(md.Identifier)
	metadata.CreateElement("dc:title").SetText(md.Title)
	metadata.CreateElement("dc:creator").SetText(md.Creator)
	metadata.CreateElement("dc:publisher").SetText(md.Publisher)
	metadata.CreateElement("dc:language").SetText(lang)

	if md.Modified != "" {
		addMeta(metadata, "dcterms:modified", md.Modified)
	}
	addMeta(metadata, "ibooks:version", "3.0")

	rendition := md.Rendition
	if rendition == (Rendition{}) {
		rendition = DefaultRendition()
	}
	addMeta(metadata, "rendition:layout", rendition.Layout)
	addMeta(metadata, "rendition:spread", rendition.Spread)
	addMeta(metadata, "rendition:orientation", rendition.Orientation)
	addMeta(metadata, "ibooks:specified-fonts", "true")

	manifest := root.CreateElement("manifest")
	for _, item := range pkg.Manifest {
		el := manifest.CreateElement("item")
		el.CreateAttr("href", item.Href)
		el.CreateAttr("id", item.ID)
		el.CreateAttr("media-type", item.MediaType)
		if len(item.Properties) > 0 {
			el.CreateAttr("properties", strings.Join(item.Properties, " "))
		}
	}

	spine := root.CreateElement("spine")
	for _, ref := range pkg.Spine {
		spine.CreateElement("itemref").CreateAttr("idref", ref.IDRef)
	}

	doc.Indent(2)
	return doc
}

func addMeta(parent *etree.Element, property, value string) {
	meta := parent.CreateElement("meta")
	meta.CreateAttr("property", property)
	meta.SetText(value)
}

// ParsePackage parses OPF content into a Package.
func ParsePackage(content []byte) (*Package, error) {
	root, err := xmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OPF XML: %w", err)
	}

	pkgNode := xmlquery.QuerySelector(root, packageExpr)
	if pkgNode == nil {
		return nil, fmt.Errorf("failed to parse OPF XML: no package element")
	}

	pkg := &Package{}
	pkg.Metadata = parseMetadata(pkgNode)

	for _, n := range xmlquery.QuerySelectorAll(pkgNode, manifestExpr) {
		item := ManifestItem{
			ID:        n.SelectAttr("id"),
			Href:      n.SelectAttr("href"),
			MediaType: n.SelectAttr("media-type"),
		}
		// Properties are space-separated
		if props := n.SelectAttr("properties"); props != "" {
			item.Properties = strings.Fields(props)
		}
		pkg.Manifest = append(pkg.Manifest, item)
	}

	for _, n := range xmlquery.QuerySelectorAll(pkgNode, spineExpr) {
		pkg.Spine = append(pkg.Spine, SpineItem{IDRef: n.SelectAttr("idref")})
	}

	return pkg, nil
}

// parseMetadata reads the metadata section of a package element.
func parseMetadata(pkgNode *xmlquery.Node) PackageMetadata {
	text := func(name string) string {
		n := xmlquery.FindOne(pkgNode, "//*[local-name()='metadata']/*[local-name()='"+name+"']")
		if n == nil {
			return ""
		}
		return strings.TrimSpace(n.InnerText())
	}
	meta := func(property string) string {
		n := xmlquery.FindOne(pkgNode, "//*[local-name()='metadata']/*[local-name()='meta'][@property='"+property+"']")
		if n == nil {
			return ""
		}
		return strings.TrimSpace(n.InnerText())
	}

	return PackageMetadata{
		Identifier: text("identifier"),
		Title:      text("title"),
		Creator:    text("creator"),
		Publisher:  text("publisher"),
		Language:   text("language"),
		Modified:   meta("dcterms:modified"),
		Rendition: Rendition{
			Layout:      meta("rendition:layout"),
			Spread:      meta("rendition:spread"),
			Orientation: meta("rendition:orientation"),
		},
	}
}
