// Debug program for inspecting generated EPUB packages
//
// Usage:
//
//	go run ./cmd/test/epub_reader/main.go <epub-file-path> (<content-filename> ...)
//
// This program checks the following:
// - Opening the EPUB file (ZIP archive)
// - mimetype is the first, stored entry
// - Package document path from container.xml
// - Manifest, spine and navigation entries
// - Every nav link points at an existing entry and fragment target
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuanying/paged2epub/internal/epub"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/test/epub_reader/main.go <epub-file> (<content-filename> ...)")
		os.Exit(1)
	}

	epubPath := os.Args[1]
	filePaths := os.Args[2:]

	fmt.Printf("Opening EPUB file: %s\n", epubPath)
	reader, err := epub.Open(epubPath)
	if err != nil {
		log.Fatalf("Failed to open EPUB: %v", err)
	}
	defer reader.Close()

	fmt.Printf("✓ EPUB opened successfully\n")
	fmt.Printf("OPF Path: %s\n\n", reader.OPFPath())

	names := reader.Names()
	fmt.Printf("Total files: %d\n", len(names))
	fmt.Println("\nFile list:")
	for _, name := range names {
		method, _ := reader.Method(name)
		fmt.Printf("  - %s (method %d)\n", name, method)
	}

	pkg, err := reader.Package()
	if err != nil {
		log.Fatalf("Failed to parse OPF: %v", err)
	}
	md := pkg.Metadata
	fmt.Println("\nMetadata:")
	fmt.Printf("  identifier: %s\n", md.Identifier)
	fmt.Printf("  title:      %s\n", md.Title)
	fmt.Printf("  creator:    %s\n", md.Creator)
	fmt.Printf("  publisher:  %s\n", md.Publisher)
	fmt.Printf("  language:   %s\n", md.Language)
	fmt.Printf("  modified:   %s\n", md.Modified)
	fmt.Printf("  rendition:  %s / %s / %s\n", md.Rendition.Layout, md.Rendition.Spread, md.Rendition.Orientation)

	fmt.Printf("\nManifest (%d items):\n", len(pkg.Manifest))
	missing := 0
	for _, item := range pkg.Manifest {
		status := "✓"
		if _, err := reader.ReadFile(reader.Resolve(item.Href)); err != nil {
			status = "✗"
			missing++
		}
		fmt.Printf("  %s %-12s %-40s %s %s\n", status, item.ID, item.Href, item.MediaType, strings.Join(item.Properties, " "))
	}

	fmt.Printf("\nSpine (%d items):\n", len(pkg.Spine))
	for i, ref := range pkg.Spine {
		fmt.Printf("  %d. %s\n", i+1, ref.IDRef)
	}

	nav, err := reader.Navigation()
	if err != nil {
		log.Fatalf("Failed to read navigation: %v", err)
	}
	fmt.Printf("\nTOC (%d entries), page-list (%d entries)\n", len(nav.TOC), len(nav.PageList))
	for _, e := range nav.TOC {
		fmt.Printf("  - %s -> %s\n", e.Label, e.Href)
	}

	// Check in-page links resolve to an element in the target page
	broken := 0
	for _, ref := range pkg.Spine {
		item, ok := pkg.Item(ref.IDRef)
		if !ok {
			continue
		}
		data, err := reader.ReadFile(reader.Resolve(item.Href))
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
		if err != nil {
			log.Fatalf("Failed to parse %s: %v", item.Href, err)
		}
		doc.Find(`a[href*="#"]`).Each(func(i int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if !linkResolves(reader, item.Href, href) {
				fmt.Printf("  ✗ %s: broken link %s\n", item.Href, href)
				broken++
			}
		})
	}

	for _, filePath := range filePaths {
		fmt.Printf("\nReading content file: %s\n", filePath)
		content, err := reader.ReadFile(filePath)
		if err != nil {
			log.Fatalf("Failed to read content file %s: %v", filePath, err)
		}
		fmt.Printf("✓ Content file %s read successfully (%d bytes)\n", filePath, len(content))
		fmt.Printf("Content:\n%s\n", string(content))
	}

	if missing > 0 || broken > 0 {
		fmt.Printf("\n✗ %d missing manifest items, %d broken links\n", missing, broken)
		os.Exit(1)
	}
	fmt.Println("\n✓ All checks passed!")
}

// linkResolves reports whether href, relative to the content document at
// fromHref, names an existing entry holding the fragment's id.
func linkResolves(reader *epub.Reader, fromHref, href string) bool {
	file, fragment, _ := strings.Cut(href, "#")
	dir := fromHref[:strings.LastIndex(fromHref, "/")+1]
	data, err := reader.ReadFile(reader.Resolve(dir + file))
	if err != nil {
		return false
	}
	if fragment == "" {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return false
	}
	found := false
	doc.Find("[id]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if id, _ := s.Attr("id"); id == fragment {
			found = true
			return false
		}
		return true
	})
	return found
}
