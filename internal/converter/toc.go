package converter

import (
	"strconv"

	"github.com/yuanying/paged2epub/internal/epub"
)

// BuildNavigation creates the table of contents ("Page N" entries) and the
// page-list (bare numbers) for the page sequence. Hrefs are relative to the
// navigation document, which sits next to the page files.
func BuildNavigation(pages []Page, title, language string) epub.Navigation {
	nav := epub.Navigation{
		Title:    title,
		Language: language,
		TOC:      make([]epub.NavEntry, 0, len(pages)),
		PageList: make([]epub.NavEntry, 0, len(pages)),
	}
	for _, p := range pages {
		nav.TOC = append(nav.TOC, epub.NavEntry{
			Label: "Page " + strconv.Itoa(p.Number),
			Href:  p.Filename(),
		})
		nav.PageList = append(nav.PageList, epub.NavEntry{
			Label: strconv.Itoa(p.Number),
			Href:  p.Filename(),
		})
	}
	return nav
}
