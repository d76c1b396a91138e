// Package generate implements the third build stage: rendering the static
// HTML site from the processed manifest and copying the encoded artifacts
// into the site directory.
//
// Output layout:
//
//	dist/
//	├── index.html             album grid
//	├── about.html             markdown pages
//	├── 010-Landscapes/
//	│   ├── index.html         thumbnail grid
//	│   ├── 1.html             image viewer pages, 1-based
//	│   ├── 001-dawn-800.jpg   copied artifacts
//	│   └── ...
//	└── ...
package generate

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/russross/blackfriday/v2"

	"darkroom/internal/cache"
	"darkroom/internal/logging"
	"darkroom/internal/manifest"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/style.css
var baseCSS string

//go:embed static/nav.js
var viewerJS string

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// pageHead is the part every rendered page shares.
type pageHead struct {
	Title      string
	CSS        template.CSS
	Breadcrumb []crumb
	Nav        navView
}

// crumb is one breadcrumb segment; an empty Href renders as plain text.
type crumb struct {
	Label string
	Href  string
}

// Run renders the site from the processed manifest. processedDir holds
// the encoded artifacts from the process stage; outputDir receives the
// finished site.
func Run(processed *manifest.Processed, processedDir, outputDir string) error {
	css := template.CSS(ColorCSS(processed.Config.Colors) + "\n\n" + ThemeCSS(processed.Config.Theme) + "\n\n" + baseCSS)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}

	if err := copyArtifacts(processedDir, outputDir); err != nil {
		return fmt.Errorf("copy artifacts: %w", err)
	}

	if err := renderIndex(processed, css, outputDir); err != nil {
		return err
	}

	for i := range processed.Albums {
		if err := renderAlbum(&processed.Albums[i], processed, css, outputDir); err != nil {
			return err
		}
	}

	for _, page := range processed.Pages {
		if page.IsLink {
			continue
		}
		if err := renderPage(page, processed, css, outputDir); err != nil {
			return err
		}
	}

	logging.Info("Site generated at %s", outputDir)
	return nil
}

func renderIndex(processed *manifest.Processed, css template.CSS, outputDir string) error {
	type albumCard struct {
		Title     string
		Href      string
		Thumbnail string
	}
	data := struct {
		pageHead
		Albums []albumCard
	}{
		pageHead: pageHead{
			Title:      "Gallery",
			CSS:        css,
			Breadcrumb: []crumb{{Label: "Gallery", Href: "/"}},
			Nav:        buildNav(processed.Navigation, processed.Pages, ""),
		},
	}
	for _, album := range processed.Albums {
		if !album.InNav || album.Thumbnail == "" {
			continue
		}
		data.Albums = append(data.Albums, albumCard{
			Title:     album.Title,
			Href:      album.Path + "/",
			Thumbnail: album.Thumbnail,
		})
	}

	return writeTemplate(filepath.Join(outputDir, "index.html"), "index.html", data)
}

func renderAlbum(album *manifest.ProcessedAlbum, processed *manifest.Processed, css template.CSS, outputDir string) error {
	albumDir := filepath.Join(outputDir, filepath.FromSlash(album.Path))
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		return fmt.Errorf("create album dir: %w", err)
	}

	type thumb struct {
		Href string
		Src  string
		Alt  string
	}
	data := struct {
		pageHead
		Album  *manifest.ProcessedAlbum
		Thumbs []thumb
	}{
		pageHead: pageHead{
			Title:      album.Title,
			CSS:        css,
			Breadcrumb: []crumb{{Label: "Gallery", Href: "/"}, {Label: album.Title}},
			Nav:        buildNav(processed.Navigation, processed.Pages, album.Path),
		},
		Album: album,
	}
	for i, img := range album.Images {
		data.Thumbs = append(data.Thumbs, thumb{
			Href: strconv.Itoa(i+1) + ".html",
			Src:  stripAlbumPrefix(img.Thumbnail, album.Path),
			Alt:  fmt.Sprintf("Image %d", i+1),
		})
	}

	if err := writeTemplate(filepath.Join(albumDir, "index.html"), "album.html", data); err != nil {
		return err
	}

	for i := range album.Images {
		if err := renderImage(album, i, processed, css, albumDir); err != nil {
			return err
		}
	}
	return nil
}

func renderImage(album *manifest.ProcessedAlbum, idx int, processed *manifest.Processed, css template.CSS, albumDir string) error {
	img := &album.Images[idx]

	// Variants keyed by breakpoint, ordered small to large.
	keys := make([]int, 0, len(img.Variants))
	for k := range img.Variants {
		if n, err := strconv.Atoi(k); err == nil {
			keys = append(keys, n)
		}
	}
	sort.Ints(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := img.Variants[strconv.Itoa(k)]
		parts = append(parts, fmt.Sprintf("%s %dw", stripAlbumPrefix(v.Path, album.Path), v.Width))
	}

	defaultSrc := ""
	if len(keys) > 0 {
		mid := img.Variants[strconv.Itoa(keys[len(keys)/2])]
		defaultSrc = stripAlbumPrefix(mid.Path, album.Path)
	}

	prevURL := "index.html"
	if idx > 0 {
		prevURL = strconv.Itoa(idx) + ".html"
	}
	nextURL := "index.html"
	if idx < len(album.Images)-1 {
		nextURL = strconv.Itoa(idx+2) + ".html"
	}

	aspect := 1.0
	if img.Height > 0 {
		aspect = float64(img.Width) / float64(img.Height)
	}

	data := struct {
		pageHead
		AspectStyle template.CSS
		DefaultSrc  string
		Srcset      string
		Alt         string
		Caption     string
		PrevURL     string
		NextURL     string
		JS          template.JS
	}{
		pageHead: pageHead{
			Title:      fmt.Sprintf("%s - %d", album.Title, idx+1),
			CSS:        css,
			Breadcrumb: []crumb{{Label: "Gallery", Href: "/"}, {Label: album.Title, Href: "index.html"}},
			Nav:        buildNav(processed.Navigation, processed.Pages, album.Path),
		},
		AspectStyle: template.CSS(fmt.Sprintf("--aspect-ratio: %.4f;", aspect)),
		DefaultSrc:  defaultSrc,
		Srcset:      strings.Join(parts, ", "),
		Alt:         fmt.Sprintf("%s - Image %d", album.Title, idx+1),
		Caption:     img.Description,
		PrevURL:     prevURL,
		NextURL:     nextURL,
		JS:          template.JS(viewerJS),
	}

	return writeTemplate(filepath.Join(albumDir, strconv.Itoa(idx+1)+".html"), "image.html", data)
}

func renderPage(page manifest.Page, processed *manifest.Processed, css template.CSS, outputDir string) error {
	body := blackfriday.Run([]byte(page.Body))

	data := struct {
		pageHead
		Body template.HTML
	}{
		pageHead: pageHead{
			Title:      page.Title,
			CSS:        css,
			Breadcrumb: []crumb{{Label: "Gallery", Href: "/"}, {Label: page.Title}},
			Nav:        buildNav(processed.Navigation, processed.Pages, page.Slug),
		},
		Body: template.HTML(body),
	}

	return writeTemplate(filepath.Join(outputDir, page.Slug+".html"), "page.html", data)
}

func writeTemplate(path, name string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := pageTemplates.ExecuteTemplate(f, name, data); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

// stripAlbumPrefix makes an artifact path relative to its album page.
func stripAlbumPrefix(p, albumPath string) string {
	return strings.TrimPrefix(p, albumPath+"/")
}

// copyArtifacts mirrors the processed directory into the site directory,
// skipping the stage manifest and the cache side-car.
func copyArtifacts(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == manifest.Filename || name == cache.IndexFilename || strings.HasPrefix(name, cache.IndexFilename) {
			continue
		}
		srcPath := filepath.Join(src, name)
		dstPath := filepath.Join(dst, name)

		if entry.IsDir() {
			if err := os.MkdirAll(dstPath, 0o755); err != nil {
				return err
			}
			if err := copyArtifacts(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
