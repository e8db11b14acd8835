package epub

import (
	"mime"
	"path"
	"strings"
)

// coreMediaTypes covers the EPUB 3 core media types plus common extras, so
// lookups do not depend on the host's mime tables.
var coreMediaTypes = map[string]string{
	".gif":   "image/gif",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".webp":  "image/webp",
	".css":   "text/css",
	".js":    "application/javascript",
	".xhtml": "application/xhtml+xml",
	".html":  "application/xhtml+xml",
	".ncx":   "application/x-dtbncx+xml",
	".smil":  "application/smil+xml",
	".pls":   "application/pls+xml",
	".otf":   "font/otf",
	".ttf":   "font/ttf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".mp3":   "audio/mpeg",
	".m4a":   "audio/mp4",
	".mp4":   "video/mp4",
	".opus":  "audio/ogg",
}

// MediaTypeByFilename resolves a media type from a filename extension.
// Unknown extensions fall back to application/octet-stream.
func MediaTypeByFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return "application/octet-stream"
	}
	if mt, ok := coreMediaTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		// Drop parameters such as "; charset=utf-8"
		if i := strings.Index(mt, ";"); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		return mt
	}
	return "application/octet-stream"
}

// IsImageMediaType checks if a media type is an image, SVG included.
func IsImageMediaType(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}
