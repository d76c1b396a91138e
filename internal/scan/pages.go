package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"darkroom/internal/manifest"
	"darkroom/internal/naming"
)

// unnumberedSortKey places pages without a number prefix after every
// numbered page.
const unnumberedSortKey = 1 << 30

// parsePages turns the markdown files of the content root into pages.
// Numbered files appear in navigation sorted by number; unnumbered files
// are generated but hidden. A file whose entire body is a single URL
// becomes an external navigation link instead of a rendered page.
func parsePages(root string) ([]manifest.Page, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read content root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var pages []manifest.Page
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", name, err)
		}
		pages = append(pages, parsePage(name, string(data)))
	}

	sort.SliceStable(pages, func(a, b int) bool {
		return pages[a].SortKey < pages[b].SortKey
	})
	return pages, nil
}

func parsePage(filename, body string) manifest.Page {
	stem := naming.Stem(filename)
	parsed := naming.Parse(stem)

	page := manifest.Page{
		Body:    body,
		InNav:   parsed.Numbered,
		SortKey: unnumberedSortKey,
	}
	if parsed.Numbered {
		page.SortKey = parsed.Number
		page.LinkTitle = parsed.DisplayTitle
		page.Slug = parsed.Name
	} else {
		page.LinkTitle = parsed.DisplayTitle
		page.Slug = stem
	}

	trimmed := strings.TrimSpace(body)
	page.IsLink = !strings.Contains(trimmed, "\n") &&
		(strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://"))

	page.Title = page.LinkTitle
	if !page.IsLink {
		if heading := firstHeading(body); heading != "" {
			page.Title = heading
		}
	}
	return page
}

// firstHeading returns the text of the first level-1 markdown heading.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
