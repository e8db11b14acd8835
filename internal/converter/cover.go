package converter

import (
	"fmt"
	"path"
	"strings"

	"github.com/yuanying/paged2epub/internal/epub"
)

// CoverInfo represents the detected cover image details.
type CoverInfo struct {
	AssetID         string
	Filename        string
	DetectionMethod string // "option", "meta", "filename"
}

// DetectCover picks the asset to mark as cover-image, trying in order:
//  1. the Cover option
//  2. a cover meta tag in the document
//  3. the first image asset whose filename contains "cover"
//
// An explicitly named cover that matches no asset is reported as a warning
// (an error in strict mode). Returns nil if no cover is found.
func DetectCover(assets []packagedAsset, md Metadata, opts ConvertOptions) (*CoverInfo, error) {
	if info, err := detectCoverByName(assets, opts.Cover, "option", opts); info != nil || err != nil {
		return info, err
	}
	if info, err := detectCoverByName(assets, md["cover"], "meta", opts); info != nil || err != nil {
		return info, err
	}
	return detectCoverByFilename(assets), nil
}

func detectCoverByName(assets []packagedAsset, name, method string, opts ConvertOptions) (*CoverInfo, error) {
	if name == "" {
		return nil, nil
	}
	base := path.Base(name)
	for _, a := range assets {
		if a.Filename == name || a.Filename == base {
			return &CoverInfo{
				AssetID:         a.ID,
				Filename:        a.Filename,
				DetectionMethod: method,
			}, nil
		}
	}
	if opts.Strict {
		return nil, fmt.Errorf("%w: cover %s", ErrMissingAsset, name)
	}
	opts.Logger.Warn("cover asset not found", "cover", name, "source", method)
	return nil, nil
}

func detectCoverByFilename(assets []packagedAsset) *CoverInfo {
	for _, a := range assets {
		if !epub.IsImageMediaType(epub.MediaTypeByFilename(a.Filename)) {
			continue
		}
		if strings.Contains(strings.ToLower(path.Base(a.Filename)), "cover") {
			return &CoverInfo{
				AssetID:         a.ID,
				Filename:        a.Filename,
				DetectionMethod: "filename",
			}
		}
	}
	return nil
}
