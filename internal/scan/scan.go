// Package scan implements the first build stage: walking the content root,
// classifying directories into albums and groups, and producing the scan
// manifest consumed by the process stage.
//
// The content root follows a naming convention:
//
//	images/
//	├── config.toml          site configuration (optional)
//	├── 040-about.md         page (numbered = appears in nav)
//	├── 010-Landscapes/      album (numbered = appears in nav)
//	│   ├── info.txt         album description (optional)
//	│   ├── 001-dawn.jpg     preview image (lowest number)
//	│   └── 002-sunset.jpg
//	├── 020-Travel/          group directory (has subdirectories)
//	│   └── 010-Japan/       nested album
//	└── wip-drafts/          unnumbered = hidden from nav
//
// A directory holding images is an album; a directory holding
// subdirectories is a group. Holding both is a structural error that
// aborts the scan.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"darkroom/internal/config"
	"darkroom/internal/logging"
	"darkroom/internal/manifest"
	"darkroom/internal/naming"
)

// imageExtensions lists the decodable source formats, lowercase with dot.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// MixedContentError reports a directory holding both images and
// subdirectories, which the layout convention forbids.
type MixedContentError struct {
	Dir string
}

func (e *MixedContentError) Error() string {
	return fmt.Sprintf("directory contains both images and subdirectories: %s", e.Dir)
}

// DuplicateNumberError reports two images in one album sharing a number
// prefix, which would make their sort order ambiguous.
type DuplicateNumberError struct {
	Number int
	Dir    string
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("duplicate image number %d in %s", e.Number, e.Dir)
}

// DuplicateStemError reports two images in one album whose filenames
// differ only by extension. Derived artifact names are built from the
// stem, so such a pair would write to the same output paths.
type DuplicateStemError struct {
	Stem string
	Dir  string
}

func (e *DuplicateStemError) Error() string {
	return fmt.Sprintf("images sharing the stem %q in %s would collide in the output", e.Stem, e.Dir)
}

// Run scans the content root and builds the scan manifest. Structural
// violations (mixed content, duplicate numbers, colliding stems) are
// fatal: a broken layout should be fixed, not partially built.
func Run(root string) (*manifest.Scan, error) {
	site, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	var albums []manifest.Album
	nav, err := scanDirectory(root, root, &albums)
	if err != nil {
		return nil, err
	}

	pages, err := parsePages(root)
	if err != nil {
		return nil, err
	}

	logging.Info("Scanned %d albums, %d pages", len(albums), len(pages))
	return &manifest.Scan{
		Navigation: nav,
		Albums:     albums,
		Pages:      pages,
		Config:     site,
	}, nil
}

// scanDirectory classifies one directory and recurses into groups. It
// returns the navigation items contributed at this level.
func scanDirectory(dir, root string, albums *[]manifest.Album) ([]manifest.NavItem, error) {
	entries, err := collectEntries(dir)
	if err != nil {
		return nil, err
	}

	var images, subdirs []string
	for _, entry := range entries {
		full := filepath.Join(dir, entry)
		info, err := os.Stat(full)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", full, err)
		}
		switch {
		case info.IsDir():
			subdirs = append(subdirs, entry)
		case isImage(entry):
			images = append(images, entry)
		}
	}

	if len(images) > 0 && len(subdirs) > 0 {
		return nil, &MixedContentError{Dir: dir}
	}

	if len(images) > 0 {
		album, err := buildAlbum(dir, root, images)
		if err != nil {
			return nil, err
		}
		*albums = append(*albums, album)
		if album.InNav {
			return []manifest.NavItem{{Title: album.Title, Path: album.Path}}, nil
		}
		return nil, nil
	}

	// Group directory: recurse in number order.
	sort.Slice(subdirs, func(a, b int) bool {
		pa, pb := naming.Parse(subdirs[a]), naming.Parse(subdirs[b])
		if pa.Numbered != pb.Numbered {
			return pa.Numbered
		}
		if pa.Numbered && pa.Number != pb.Number {
			return pa.Number < pb.Number
		}
		return subdirs[a] < subdirs[b]
	})

	var nav []manifest.NavItem
	for _, sub := range subdirs {
		childNav, err := scanDirectory(filepath.Join(dir, sub), root, albums)
		if err != nil {
			return nil, err
		}
		nav = append(nav, childNav...)
	}

	if dir == root {
		return nav, nil
	}

	parsed := naming.Parse(filepath.Base(dir))
	if !parsed.Numbered {
		// Unnumbered group: its children surface at the parent level.
		return nav, nil
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return nil, err
	}
	return []manifest.NavItem{{
		Title:    parsed.DisplayTitle,
		Path:     filepath.ToSlash(rel),
		Children: nav,
	}}, nil
}

// buildAlbum assembles one album from its image entries. Numbered images
// sort by number; unnumbered images sort after them in filename order.
func buildAlbum(dir, root string, entries []string) (manifest.Album, error) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return manifest.Album{}, err
	}
	relSlash := filepath.ToSlash(rel)

	parsed := naming.Parse(filepath.Base(dir))
	title := parsed.DisplayTitle
	if !parsed.Numbered {
		title = filepath.Base(dir)
	}

	// Unnumbered images sort to the end, keeping their filename order.
	const unnumberedBase = 1_000_000

	seen := make(map[int]bool, len(entries))
	seenStems := make(map[string]bool, len(entries))
	var images []manifest.Image
	unnumbered := 0
	for _, entry := range entries {
		stem := naming.Stem(entry)
		p := naming.Parse(stem)

		// Artifact names derive from the stem, so stems must be unique
		// within an album regardless of numbering.
		if seenStems[stem] {
			return manifest.Album{}, &DuplicateStemError{Stem: stem, Dir: dir}
		}
		seenStems[stem] = true

		number := unnumberedBase + unnumbered
		if p.Numbered {
			if seen[p.Number] {
				return manifest.Album{}, &DuplicateNumberError{Number: p.Number, Dir: dir}
			}
			seen[p.Number] = true
			number = p.Number
		} else {
			unnumbered++
		}

		var imgTitle string
		if p.Name != "" {
			imgTitle = p.DisplayTitle
		}

		sidecar, err := readSidecar(dir, stem)
		if err != nil {
			return manifest.Album{}, err
		}

		images = append(images, manifest.Image{
			Number:      number,
			SourcePath:  relSlash + "/" + entry,
			Filename:    entry,
			Title:       imgTitle,
			Description: sidecar,
		})
	}

	sort.Slice(images, func(a, b int) bool {
		return images[a].Number < images[b].Number
	})

	// Preview: image 001 if present, else the lowest-numbered image.
	preview := images[0].SourcePath
	for _, img := range images {
		if img.Number == 1 {
			preview = img.SourcePath
			break
		}
	}

	description, err := readDescription(dir)
	if err != nil {
		return manifest.Album{}, err
	}

	return manifest.Album{
		Path:         relSlash,
		Title:        title,
		Description:  description,
		PreviewImage: preview,
		Images:       images,
		InNav:        parsed.Numbered,
	}, nil
}

// readSidecar loads an optional per-image description from a text file
// sharing the image's stem, e.g. 001-dawn.txt next to 001-dawn.jpg.
func readSidecar(dir, stem string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, stem+".txt"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read image description: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// readDescription loads an optional info.txt album description.
func readDescription(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "info.txt"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read album description: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// collectEntries lists a directory's relevant entries in sorted order,
// skipping hidden files and build artifacts.
func collectEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasPrefix(name, "."):
		case name == "info.txt" || name == "config.toml":
		case name == "processed" || name == "dist" || name == manifest.Filename:
		default:
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func isImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}
