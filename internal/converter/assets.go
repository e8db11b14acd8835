package converter

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/yuanying/paged2epub/internal/epub"
)

// ErrInvalidAsset is returned in strict mode for an asset whose filename
// would leave the assets folder.
var ErrInvalidAsset = errors.New("invalid asset filename")

// Asset is a binary resource (image, font) referenced by the document.
type Asset struct {
	URL      string
	Filename string
	Data     []byte
}

// IsDataURI reports whether the asset was inlined as a data: URI. Such
// assets are neither packaged nor listed in the manifest.
func (a Asset) IsDataURI() bool {
	return isDataURI(a.URL)
}

// archivePath returns the asset's location inside the container.
func (a Asset) archivePath() string {
	return epub.RootDir + "/" + a.href()
}

// href returns the asset's location relative to the package document.
func (a Asset) href() string {
	return epub.AssetsDir + "/" + a.Filename
}

// packagedAsset is an asset that made it into the archive, with its
// manifest id.
type packagedAsset struct {
	Asset
	ID string
}

// selectAssets drops data URI assets, duplicate filenames and filenames
// that would leave the assets folder (an error in strict mode). Manifest
// ids follow the caller's list position, so skipped assets leave gaps in
// the numbering.
func selectAssets(assets []Asset, opts ConvertOptions) ([]packagedAsset, error) {
	var selected []packagedAsset
	seen := make(map[string]bool)

	for i, a := range assets {
		if a.IsDataURI() {
			continue
		}
		if strings.TrimSpace(a.Filename) == "" {
			return nil, fmt.Errorf("asset %d (%s) has no filename", i+1, a.URL)
		}
		if !isConfinedFilename(a.Filename) {
			if opts.Strict {
				return nil, fmt.Errorf("%w: %q", ErrInvalidAsset, a.Filename)
			}
			opts.Logger.Warn("asset filename leaves the assets folder, skipping", "filename", a.Filename, "url", a.URL)
			continue
		}
		if seen[a.Filename] {
			opts.Logger.Warn("duplicate asset filename, skipping", "filename", a.Filename, "url", a.URL)
			continue
		}
		seen[a.Filename] = true
		selected = append(selected, packagedAsset{
			Asset: a,
			ID:    fmt.Sprintf("asset_%d", i+1),
		})
	}

	return selected, nil
}

// isDataURI reports whether ref parses as a URI with the data scheme.
// Unparseable values count as regular references.
func isDataURI(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "data")
}

// assetBasename returns the filename part of an image reference, ignoring
// any query string or fragment.
func assetBasename(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(ref)
}

// isConfinedFilename reports whether name is a clean relative path with no
// parent segments, so it stays under the assets folder.
func isConfinedFilename(name string) bool {
	if strings.HasPrefix(name, "/") || strings.Contains(name, "\\") || path.Clean(name) != name {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}
