package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// Fixed OCF paths and media types.
const (
	MimetypePath    = "mimetype"
	MimetypeContent = "application/epub+zip"
	ContainerPath   = "META-INF/container.xml"
	RootDir         = "OEBPS"
	PackageFilename = "content.opf"
	ContentDir      = "content"
	AssetsDir       = "assets"
	NavFilename     = "nav.xhtml"

	PackageMediaType = "application/oebps-package+xml"
	XHTMLMediaType   = "application/xhtml+xml"
	CSSMediaType     = "text/css"
)

var (
	ErrInvalidPath  = errors.New("invalid archive path")
	ErrMissingEntry = errors.New("archive entry not found")
	ErrDuplicateID  = errors.New("duplicate manifest id")
)

// PackagePath returns the archive path of the package document.
func PackagePath() string {
	return RootDir + "/" + PackageFilename
}

// entry is a single file in the container tree.
type entry struct {
	name   string
	data   []byte
	method uint16
}

// Container is the in-memory OCF tree. Entries keep insertion order so that
// packaging is deterministic; folders exist implicitly through entry paths.
//
// A Container is not safe for concurrent use.
type Container struct {
	entries []*entry
	index   map[string]int
}

// NewContainer creates a container holding only the mimetype entry.
func NewContainer() *Container {
	c := &Container{index: make(map[string]int)}
	c.put(&entry{
		name:   MimetypePath,
		data:   []byte(MimetypeContent),
		method: zip.Store,
	})
	return c
}

// AddFile stores binary content at name. Writing an existing path replaces
// its content but keeps its position in the archive.
func (c *Container) AddFile(name string, data []byte) error {
	name, err := cleanPath(name)
	if err != nil {
		return err
	}
	if name == MimetypePath {
		return fmt.Errorf("%w: %s is reserved", ErrInvalidPath, name)
	}
	c.put(&entry{name: name, data: data, method: zip.Deflate})
	return nil
}

// AddText stores text content at name.
func (c *Container) AddText(name, text string) error {
	return c.AddFile(name, []byte(text))
}

// AddDocument serializes an XML document and stores it at name.
func (c *Container) AddDocument(name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", name, err)
	}
	return c.AddFile(name, buf.Bytes())
}

// Has reports whether an entry exists at name.
func (c *Container) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Names returns entry paths in archive order.
func (c *Container) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// ReadFile returns the content stored at name.
func (c *Container) ReadFile(name string) ([]byte, error) {
	i, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, name)
	}
	return c.entries[i].data, nil
}

// Validate checks that the container descriptor, the package document and
// every manifest item of pkg exist in the tree.
func (c *Container) Validate(pkg *Package) error {
	required := []string{ContainerPath, PackagePath()}
	for _, item := range pkg.Manifest {
		required = append(required, path.Join(RootDir, item.Href))
	}
	for _, name := range required {
		if !c.Has(name) {
			return fmt.Errorf("%w: %s", ErrMissingEntry, name)
		}
	}
	return nil
}

// WriteTo serializes the container as a ZIP archive. The mimetype entry is
// written first and stored without compression or data descriptor; all
// other entries are deflated.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	for _, e := range c.entries {
		if err := writeEntry(zw, e); err != nil {
			return cw.n, fmt.Errorf("failed to write %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return cw.n, nil
}

// Bytes serializes the container into a single buffer.
func (c *Container) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Container) put(e *entry) {
	if i, ok := c.index[e.name]; ok {
		c.entries[i] = e
		return
	}
	c.index[e.name] = len(c.entries)
	c.entries = append(c.entries, e)
}

func writeEntry(zw *zip.Writer, e *entry) error {
	if e.method == zip.Store {
		// CreateRaw lets us write sizes and CRC up front, so no data
		// descriptor follows the entry.
		fh := &zip.FileHeader{
			Name:               e.name,
			Method:             zip.Store,
			CRC32:              crc32.ChecksumIEEE(e.data),
			CompressedSize64:   uint64(len(e.data)),
			UncompressedSize64: uint64(len(e.data)),
		}
		w, err := zw.CreateRaw(fh)
		if err != nil {
			return err
		}
		_, err = w.Write(e.data)
		return err
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   e.name,
		Method: e.method,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(e.data)
	return err
}

// cleanPath normalizes an archive path and rejects paths that escape the
// archive root.
func cleanPath(name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "./")
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return cleaned, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// BuildContainerDocument builds META-INF/container.xml pointing at the
// package document.
func BuildContainerDocument(packagePath string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")

	rootfiles := container.CreateElement("rootfiles")
	rootfile := rootfiles.CreateElement("rootfile")
	rootfile.CreateAttr("full-path", packagePath)
	rootfile.CreateAttr("media-type", PackageMediaType)

	doc.Indent(2)
	return doc
}
