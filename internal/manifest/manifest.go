package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"darkroom/internal/config"
)

// Filename is the manifest file name within each stage directory.
const Filename = "manifest.json"

// NavItem is one entry of the navigation tree. Only numbered directories
// appear here.
type NavItem struct {
	Title    string    `json:"title"`
	Path     string    `json:"path"`
	Children []NavItem `json:"children,omitempty"`
}

// Image is one source photograph discovered by the scan stage.
type Image struct {
	Number      int    `json:"number"`
	SourcePath  string `json:"source_path"`
	Filename    string `json:"filename"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Album is a leaf content unit holding a sequence of images.
type Album struct {
	Path         string  `json:"path"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	PreviewImage string  `json:"preview_image"`
	Images       []Image `json:"images"`
	InNav        bool    `json:"in_nav"`
}

// Page is a standalone markdown page from the content root. A page whose
// entire body is a URL becomes an external link in navigation.
type Page struct {
	Title     string `json:"title"`
	LinkTitle string `json:"link_title"`
	Slug      string `json:"slug"`
	Body      string `json:"body"`
	InNav     bool   `json:"in_nav"`
	SortKey   int    `json:"sort_key"`
	IsLink    bool   `json:"is_link"`
}

// Scan is the output of the scan stage.
type Scan struct {
	BuildID    string      `json:"build_id,omitempty"`
	Navigation []NavItem   `json:"navigation"`
	Albums     []Album     `json:"albums"`
	Pages      []Page      `json:"pages,omitempty"`
	Config     config.Site `json:"config"`
}

// Variant is one produced responsive artifact.
type Variant struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ProcessedImage records every artifact produced for one source image.
// Variants is keyed by the breakpoint label (target longer-edge size);
// encoding/json serializes map keys sorted, keeping output stable.
type ProcessedImage struct {
	Number      int                `json:"number"`
	SourcePath  string             `json:"source_path"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Variants    map[string]Variant `json:"variants"`
	Thumbnail   string             `json:"thumbnail"`
}

// ProcessedAlbum is an album after image processing.
type ProcessedAlbum struct {
	Path         string           `json:"path"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	PreviewImage string           `json:"preview_image"`
	Thumbnail    string           `json:"thumbnail"`
	Images       []ProcessedImage `json:"images"`
	InNav        bool             `json:"in_nav"`
}

// BuildStats carries the per-build outcome counters.
type BuildStats struct {
	Encoded int    `json:"encoded"`
	Reused  int    `json:"reused"`
	Copied  int    `json:"copied"`
	Failed  int    `json:"failed"`
	Summary string `json:"summary"`
}

// Processed is the output of the process stage and the input to generate.
type Processed struct {
	BuildID    string           `json:"build_id,omitempty"`
	Navigation []NavItem        `json:"navigation"`
	Albums     []ProcessedAlbum `json:"albums"`
	Pages      []Page           `json:"pages,omitempty"`
	Config     config.Site      `json:"config"`
	Stats      BuildStats       `json:"stats"`
}

// WriteScan writes the scan manifest into dir.
func WriteScan(dir string, m *Scan) error {
	return write(filepath.Join(dir, Filename), m)
}

// LoadScan reads the scan manifest from dir.
func LoadScan(dir string) (*Scan, error) {
	var m Scan
	if err := load(filepath.Join(dir, Filename), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteProcessed writes the processed manifest into dir.
func WriteProcessed(dir string, m *Processed) error {
	return write(filepath.Join(dir, Filename), m)
}

// LoadProcessed reads the processed manifest from dir.
func LoadProcessed(dir string) (*Processed, error) {
	var m Processed
	if err := load(filepath.Join(dir, Filename), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func write(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
