package generate

import (
	"strings"

	"darkroom/internal/manifest"
)

// navView is the navigation tree prepared for rendering, with the current
// item marked per page.
type navView struct {
	Items []navItem
	Pages []navPage
}

type navItem struct {
	Title    string
	Path     string
	Current  bool
	Children []navItem
}

type navPage struct {
	Title    string
	Href     string
	Current  bool
	External bool
}

// buildNav marks the navigation tree for one page. currentPath is the
// album path being rendered, or a page slug, or empty for the index.
func buildNav(items []manifest.NavItem, pages []manifest.Page, currentPath string) navView {
	view := navView{Items: markItems(items, currentPath)}

	for _, page := range pages {
		if !page.InNav {
			continue
		}
		if page.IsLink {
			view.Pages = append(view.Pages, navPage{
				Title:    page.LinkTitle,
				Href:     strings.TrimSpace(page.Body),
				External: true,
			})
			continue
		}
		view.Pages = append(view.Pages, navPage{
			Title:   page.LinkTitle,
			Href:    "/" + page.Slug + ".html",
			Current: currentPath == page.Slug,
		})
	}
	return view
}

func markItems(items []manifest.NavItem, currentPath string) []navItem {
	out := make([]navItem, 0, len(items))
	for _, item := range items {
		out = append(out, navItem{
			Title:    item.Title,
			Path:     item.Path,
			Current:  item.Path == currentPath || strings.HasPrefix(currentPath, item.Path+"/"),
			Children: markItems(item.Children, currentPath),
		})
	}
	return out
}
