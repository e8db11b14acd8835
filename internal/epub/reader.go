package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Reader provides access to the contents of an EPUB archive
type Reader struct {
	zipReader *zip.Reader
	closer    io.Closer // non-nil only when created via Open
	files     map[string]*zip.File
	names     []string
	opfPath   string
}

// container.xml structure
type containerXML struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

var (
	ErrInvalidMimetype    = errors.New("invalid mimetype: must be 'application/epub+zip'")
	ErrMimetypeCompressed = errors.New("mimetype must not be compressed")
	ErrMimetypeNotFirst   = errors.New("mimetype must be the first archive entry")
	ErrMimetypeNotFound   = errors.New("mimetype file not found")
	ErrContainerNotFound  = errors.New("META-INF/container.xml not found")
	ErrOPFPathNotFound    = errors.New("OPF path not found in container.xml")
)

// Open opens an EPUB file and validates its structure
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open EPUB: %w", err)
	}

	r, err := newReader(&zr.Reader, zr)
	if err != nil {
		zr.Close()
		return nil, err
	}
	return r, nil
}

// NewReader reads an EPUB archive held in memory.
func NewReader(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open EPUB: %w", err)
	}
	return newReader(zr, nil)
}

func newReader(zr *zip.Reader, closer io.Closer) (*Reader, error) {
	r := &Reader{
		zipReader: zr,
		closer:    closer,
		files:     make(map[string]*zip.File),
	}

	// Build file map with normalized paths
	for _, f := range zr.File {
		name := normalizePath(f.Name)
		r.files[name] = f
		r.names = append(r.names, name)
	}

	if err := r.validateMimetype(); err != nil {
		return nil, err
	}

	if err := r.parseContainer(); err != nil {
		return nil, err
	}

	return r, nil
}

// Close closes the underlying file, if any
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// OPFPath returns the path to the OPF file
func (r *Reader) OPFPath() string {
	return r.opfPath
}

// Names returns entry paths in archive order
func (r *Reader) Names() []string {
	return append([]string(nil), r.names...)
}

// Method returns the compression method of an entry.
func (r *Reader) Method(name string) (uint16, bool) {
	f, ok := r.files[normalizePath(name)]
	if !ok {
		return 0, false
	}
	return f.Method, true
}

// ReadFile reads the contents of a file from the EPUB
func (r *Reader) ReadFile(name string) ([]byte, error) {
	name = normalizePath(name)
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Package reads and parses the package document.
func (r *Reader) Package() (*Package, error) {
	data, err := r.ReadFile(r.opfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OPF: %w", err)
	}
	return ParsePackage(data)
}

// Navigation locates the manifest item with the "nav" property and parses it.
func (r *Reader) Navigation() (*Navigation, error) {
	pkg, err := r.Package()
	if err != nil {
		return nil, err
	}
	for _, item := range pkg.Manifest {
		if !item.HasProperty("nav") {
			continue
		}
		data, err := r.ReadFile(r.Resolve(item.Href))
		if err != nil {
			return nil, fmt.Errorf("failed to read navigation document: %w", err)
		}
		return ParseNavDocument(data)
	}
	return nil, fmt.Errorf("%w: no manifest item with nav property", ErrMissingEntry)
}

// Resolve returns the archive path of an href relative to the package document.
func (r *Reader) Resolve(href string) string {
	return path.Join(path.Dir(r.opfPath), href)
}

// validateMimetype checks that the mimetype file exists, comes first and is valid
func (r *Reader) validateMimetype() error {
	f, ok := r.files[MimetypePath]
	if !ok {
		return ErrMimetypeNotFound
	}

	if r.names[0] != MimetypePath {
		return ErrMimetypeNotFirst
	}

	// Check that mimetype is not compressed
	if f.Method != zip.Store {
		return ErrMimetypeCompressed
	}

	content, err := r.ReadFile(MimetypePath)
	if err != nil {
		return fmt.Errorf("failed to read mimetype: %w", err)
	}

	if string(content) != MimetypeContent {
		return ErrInvalidMimetype
	}

	return nil
}

// parseContainer parses container.xml to extract OPF path
func (r *Reader) parseContainer() error {
	content, err := r.ReadFile(ContainerPath)
	if err != nil {
		return ErrContainerNotFound
	}

	var c containerXML
	if err := xml.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("failed to parse container.xml: %w", err)
	}

	for _, rf := range c.Rootfiles.Rootfile {
		if rf.MediaType == PackageMediaType || rf.MediaType == "" {
			r.opfPath = normalizePath(rf.FullPath)
			return nil
		}
	}

	// If no media-type match, use the first one
	if len(c.Rootfiles.Rootfile) > 0 {
		r.opfPath = normalizePath(c.Rootfiles.Rootfile[0].FullPath)
		return nil
	}

	return ErrOPFPathNotFound
}

// normalizePath normalizes file paths (removes ./ prefix)
func normalizePath(p string) string {
	return strings.TrimPrefix(p, "./")
}
