package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuanying/paged2epub/internal/epub"
)

// ErrEmptyHTML is returned when no HTML input is given.
var ErrEmptyHTML = errors.New("html input is empty")

// Convert assembles an EPUB 3 archive from a paginated HTML document and
// its assets. The conversion is a single synchronous pass over in-memory
// data; any failure aborts it and no partial output is returned.
func Convert(ctx context.Context, html []byte, assets []Asset, opts ConvertOptions) ([]byte, error) {
	if len(bytes.TrimSpace(html)) == 0 {
		return nil, ErrEmptyHTML
	}

	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := opts.Logger

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	md := ExtractMetadata(doc)
	log.Debug("metadata extracted", "title", md.Title(), "keys", len(md))

	refs, err := RewriteReferences(doc, opts)
	if err != nil {
		return nil, err
	}
	log.Debug("references rewritten", "images", len(refs.Images), "links", len(refs.Links))

	pages, err := PartitionPages(doc, opts)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		log.Warn("no page containers found", "selector", opts.pageSequenceSelector())
	}
	log.Debug("document partitioned", "pages", len(pages))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := epub.NewContainer()
	if err := c.AddDocument(epub.ContainerPath, epub.BuildContainerDocument(epub.PackagePath())); err != nil {
		return nil, err
	}

	packaged, err := selectAssets(assets, opts)
	if err != nil {
		return nil, err
	}
	if err := checkImageAssets(refs, packaged, opts); err != nil {
		return nil, err
	}
	for _, a := range packaged {
		if err := c.AddFile(a.archivePath(), a.Data); err != nil {
			return nil, fmt.Errorf("failed to add asset %s: %w", a.Filename, err)
		}
	}
	log.Debug("assets written", "count", len(packaged), "skipped", len(assets)-len(packaged))

	title := md.Title()
	for _, p := range pages {
		pageDoc, err := BuildPageDocument(p, title, opts.Size, opts.StylesheetPath)
		if err != nil {
			return nil, err
		}
		if err := c.AddDocument(epub.RootDir+"/"+p.Href(), pageDoc); err != nil {
			return nil, err
		}
	}
	log.Debug("content written", "pages", len(pages))

	if err := c.AddText(epub.RootDir+"/"+opts.StylesheetPath, CollectStyles(doc)); err != nil {
		return nil, err
	}

	cover, err := DetectCover(packaged, md, opts)
	if err != nil {
		return nil, err
	}
	if cover != nil {
		log.Debug("cover detected", "filename", cover.Filename, "method", cover.DetectionMethod)
	}

	lang := resolveLanguage(doc, md, opts)
	pkg := &epub.Package{
		Metadata: epub.PackageMetadata{
			Identifier: resolveIdentifier(html, assets, md, opts),
			Title:      title,
			Creator:    md["author"],
			Publisher:  md["creator"],
			Language:   lang,
			Modified:   resolveModified(md, opts),
			Rendition:  opts.Rendition,
		},
		Manifest: BuildManifest(pages, packaged, cover, opts.StylesheetPath),
		Spine:    BuildSpine(pages),
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}

	nav := BuildNavigation(pages, title, lang)
	if err := c.AddDocument(epub.RootDir+"/"+navHref(), epub.BuildNavDocument(nav)); err != nil {
		return nil, err
	}

	if err := c.AddDocument(epub.PackagePath(), epub.BuildPackageDocument(pkg)); err != nil {
		return nil, err
	}

	if err := c.Validate(pkg); err != nil {
		return nil, err
	}

	out, err := c.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to package EPUB: %w", err)
	}
	log.Info("EPUB assembled", "pages", len(pages), "assets", len(packaged), "bytes", len(out))
	return out, nil
}

// resolveIdentifier picks the package identifier: the option, then the
// identifier meta tag, then a content-derived UUID.
func resolveIdentifier(html []byte, assets []Asset, md Metadata, opts ConvertOptions) string {
	if opts.Identifier != "" {
		return opts.Identifier
	}
	if id := md["identifier"]; id != "" {
		return id
	}
	return contentIdentifier(html, assets)
}

// resolveLanguage picks the publication language: the option, the lang
// meta tag, the root element's lang attribute, then "en".
func resolveLanguage(doc *goquery.Document, md Metadata, opts ConvertOptions) string {
	if opts.Language != "" {
		return opts.Language
	}
	def := "en"
	if lang, ok := doc.Find("html").First().Attr("lang"); ok && lang != "" {
		def = lang
	}
	return md.Get("lang", def)
}

func resolveModified(md Metadata, opts ConvertOptions) string {
	var def string
	if !opts.Modified.IsZero() {
		def = opts.Modified.UTC().Format(time.RFC3339)
	}
	return md.Get("modified", def)
}
