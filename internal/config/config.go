package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Filename is the configuration file looked up in the content root.
const Filename = "config.toml"

// Site is the full site configuration.
type Site struct {
	Thumbnails ThumbnailsConfig `toml:"thumbnails" json:"thumbnails"`
	Images     ImagesConfig     `toml:"images" json:"images"`
	Theme      ThemeConfig      `toml:"theme" json:"theme"`
	Colors     ColorsConfig     `toml:"colors" json:"colors"`
	Processing ProcessingConfig `toml:"processing" json:"processing"`
}

// ThumbnailsConfig controls the cropped grid thumbnails.
type ThumbnailsConfig struct {
	// AspectRatio is the target ratio as [width, height], e.g. [4, 5].
	AspectRatio [2]int `toml:"aspect_ratio" json:"aspect_ratio"`
	// Size is the pixel size of the thumbnail's short edge.
	Size int `toml:"size" json:"size"`
}

// ImagesConfig controls the responsive image variants.
type ImagesConfig struct {
	// Sizes are the responsive breakpoints, measured on the longer edge.
	Sizes []int `toml:"sizes" json:"sizes"`
	// Quality is the lossy encode quality (0-100).
	Quality int `toml:"quality" json:"quality"`
}

// ProcessingConfig bounds the encode worker pool.
type ProcessingConfig struct {
	// MaxProcesses is the maximum number of parallel workers.
	// 0 means auto (one per available CPU). Values above the CPU count
	// are clamped down; 1 forces sequential processing.
	MaxProcesses int `toml:"max_processes" json:"max_processes"`
}

// ThemeConfig holds layout values passed through to the generated CSS.
type ThemeConfig struct {
	ThumbnailGap string `toml:"thumbnail_gap" json:"thumbnail_gap"`
	GridPadding  string `toml:"grid_padding" json:"grid_padding"`
}

// ColorsConfig holds the light and dark color schemes.
type ColorsConfig struct {
	Light ColorScheme `toml:"light" json:"light"`
	Dark  ColorScheme `toml:"dark" json:"dark"`
}

// ColorScheme is one set of page colors.
type ColorScheme struct {
	Background string `toml:"background" json:"background"`
	Text       string `toml:"text" json:"text"`
	TextMuted  string `toml:"text_muted" json:"text_muted"`
	Border     string `toml:"border" json:"border"`
	Link       string `toml:"link" json:"link"`
	LinkHover  string `toml:"link_hover" json:"link_hover"`
}

// Default returns the configuration used when config.toml is absent.
func Default() Site {
	return Site{
		Thumbnails: ThumbnailsConfig{
			AspectRatio: [2]int{4, 5},
			Size:        400,
		},
		Images: ImagesConfig{
			Sizes:   []int{800, 1400, 2080},
			Quality: 90,
		},
		Theme: ThemeConfig{
			ThumbnailGap: "1rem",
			GridPadding:  "2rem",
		},
		Colors: ColorsConfig{
			Light: ColorScheme{
				Background: "#ffffff",
				Text:       "#111111",
				TextMuted:  "#666666",
				Border:     "#e0e0e0",
				Link:       "#333333",
				LinkHover:  "#000000",
			},
			Dark: ColorScheme{
				Background: "#0a0a0a",
				Text:       "#eeeeee",
				TextMuted:  "#999999",
				Border:     "#333333",
				Link:       "#cccccc",
				LinkHover:  "#ffffff",
			},
		},
	}
}

// Load reads config.toml from the content root, applying defaults for any
// missing values. A missing file is not an error; a malformed file or an
// out-of-range value is.
func Load(contentRoot string) (Site, error) {
	site := Default()

	path := filepath.Join(contentRoot, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return site, nil
		}
		return site, fmt.Errorf("read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &site); err != nil {
		return site, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := site.Validate(); err != nil {
		return site, fmt.Errorf("%s: %w", path, err)
	}
	return site, nil
}

// Validate checks the ranges the pipeline assumes hold.
func (s Site) Validate() error {
	if s.Images.Quality < 0 || s.Images.Quality > 100 {
		return fmt.Errorf("images.quality must be within 0-100, got %d", s.Images.Quality)
	}
	if len(s.Images.Sizes) == 0 {
		return errors.New("images.sizes must list at least one size")
	}
	for _, size := range s.Images.Sizes {
		if size <= 0 {
			return fmt.Errorf("images.sizes entries must be positive, got %d", size)
		}
	}
	if s.Thumbnails.AspectRatio[0] <= 0 || s.Thumbnails.AspectRatio[1] <= 0 {
		return fmt.Errorf("thumbnails.aspect_ratio components must be positive, got %v", s.Thumbnails.AspectRatio)
	}
	if s.Thumbnails.Size <= 0 {
		return fmt.Errorf("thumbnails.size must be positive, got %d", s.Thumbnails.Size)
	}
	if s.Processing.MaxProcesses < 0 {
		return fmt.Errorf("processing.max_processes must not be negative, got %d", s.Processing.MaxProcesses)
	}
	return nil
}
