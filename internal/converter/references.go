package converter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuanying/paged2epub/internal/epub"
)

var (
	ErrUnresolvedReference = errors.New("unresolved in-document reference")
	ErrMissingAsset        = errors.New("referenced asset not supplied")
)

// Link is an in-document anchor rewritten to point at a page file.
type Link struct {
	Fragment string
	Page     int
}

// Href returns the rewritten href, relative to the content directory.
func (l Link) Href() string {
	return pageFilename(l.Page) + "#" + l.Fragment
}

// References records what the rewriter changed.
type References struct {
	Images []string // asset basenames in document order
	Links  []Link
}

// RewriteReferences rewrites image sources to the assets folder and
// fragment links to the page file holding their target. It must run before
// PartitionPages so the rewritten attributes end up in the page markup.
func RewriteReferences(doc *goquery.Document, opts ConvertOptions) (*References, error) {
	opts = opts.withDefaults()
	refs := &References{}

	doc.Find("img[src]").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if strings.TrimSpace(src) == "" || isDataURI(src) {
			return
		}
		name := assetBasename(src)
		refs.Images = append(refs.Images, name)
		s.SetAttr("src", "../"+epub.AssetsDir+"/"+name)
	})

	pages := doc.Find(opts.pageSequenceSelector())
	ids := indexIDs(doc)

	var rewriteErr error
	doc.Find(`a[href^="#"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		fragment := href[1:]
		if fragment == "" {
			return true
		}

		page, reason := resolvePage(fragment, ids, pages, opts)
		if page == 0 {
			if opts.Strict {
				rewriteErr = fmt.Errorf("%w: #%s: %s", ErrUnresolvedReference, fragment, reason)
				return false
			}
			opts.Logger.Warn("removing unresolved link", "fragment", fragment, "reason", reason)
			s.RemoveAttr("href")
			return true
		}

		link := Link{Fragment: fragment, Page: page}
		s.SetAttr("href", link.Href())
		refs.Links = append(refs.Links, link)
		return true
	})
	if rewriteErr != nil {
		return nil, rewriteErr
	}

	return refs, nil
}

// resolvePage returns the 1-based position of the page holding the
// fragment's target, or 0 and a reason when there is none.
func resolvePage(fragment string, ids map[string]*goquery.Selection, pages *goquery.Selection, opts ConvertOptions) (int, string) {
	target, ok := ids[fragment]
	if !ok {
		// Fragments may be percent-encoded (e.g. #caf%C3%A9)
		if decoded, err := url.PathUnescape(fragment); err == nil {
			target, ok = ids[decoded]
		}
	}
	if !ok {
		return 0, "target not found"
	}

	container := target.Closest(opts.PageSelector)
	if container.Length() == 0 {
		return 0, "target is outside any page"
	}

	pos := pages.IndexOfNode(container.Get(0))
	if pos < 0 {
		return 0, "enclosing page is not part of the page sequence"
	}
	page := pos + 1

	// The page-number attribute is informational; file names follow the
	// page sequence so links always match a generated section.
	if attr, ok := container.Attr(opts.PageNumberAttr); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(attr)); err != nil || n != page {
			opts.Logger.Warn("page number attribute does not match page position",
				"fragment", fragment, "attribute", attr, "position", page)
		}
	} else {
		opts.Logger.Debug("page has no page number attribute", "fragment", fragment, "position", page)
	}

	return page, ""
}

// indexIDs maps every element id to its first element in document order.
func indexIDs(doc *goquery.Document) map[string]*goquery.Selection {
	ids := make(map[string]*goquery.Selection)
	doc.Find("[id]").Each(func(i int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		if id == "" {
			return
		}
		if _, exists := ids[id]; !exists {
			ids[id] = s
		}
	})
	return ids
}

// checkImageAssets reports image references with no packaged asset.
func checkImageAssets(refs *References, assets []packagedAsset, opts ConvertOptions) error {
	available := make(map[string]bool, len(assets))
	for _, a := range assets {
		available[a.Filename] = true
	}

	for _, name := range refs.Images {
		if available[name] {
			continue
		}
		if opts.Strict {
			return fmt.Errorf("%w: %s", ErrMissingAsset, name)
		}
		opts.Logger.Warn("image references an asset that was not supplied", "filename", name)
	}
	return nil
}
