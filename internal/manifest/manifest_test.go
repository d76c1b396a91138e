package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"darkroom/internal/config"
)

func TestScanRoundtrip(t *testing.T) {
	dir := t.TempDir()

	in := &Scan{
		BuildID: "run-1",
		Navigation: []NavItem{
			{Title: "Travel", Path: "020-travel", Children: []NavItem{
				{Title: "Japan", Path: "020-travel/010-japan"},
			}},
		},
		Albums: []Album{{
			Path:         "010-album",
			Title:        "Album",
			Description:  "A test album",
			PreviewImage: "010-album/001-test.jpg",
			Images: []Image{
				{Number: 1, SourcePath: "010-album/001-test.jpg", Filename: "001-test.jpg", Title: "Test"},
			},
			InNav: true,
		}},
		Config: config.Default(),
	}

	if err := WriteScan(dir, in); err != nil {
		t.Fatalf("WriteScan() error = %v", err)
	}

	out, err := LoadScan(dir)
	if err != nil {
		t.Fatalf("LoadScan() error = %v", err)
	}

	if out.BuildID != "run-1" {
		t.Errorf("BuildID = %q", out.BuildID)
	}
	if len(out.Navigation) != 1 || len(out.Navigation[0].Children) != 1 {
		t.Errorf("navigation lost structure: %+v", out.Navigation)
	}
	if len(out.Albums) != 1 || out.Albums[0].Images[0].Title != "Test" {
		t.Errorf("albums lost data: %+v", out.Albums)
	}
	if out.Config.Images.Quality != 90 {
		t.Errorf("config quality = %d, want 90", out.Config.Images.Quality)
	}
}

func TestProcessedRoundtrip(t *testing.T) {
	dir := t.TempDir()

	in := &Processed{
		Albums: []ProcessedAlbum{{
			Path:      "010-album",
			Title:     "Album",
			Thumbnail: "010-album/001-test-thumb.jpg",
			Images: []ProcessedImage{{
				Number: 1,
				Width:  2000, Height: 1500,
				Variants: map[string]Variant{
					"800":  {Path: "010-album/001-test-800.jpg", Width: 800, Height: 600},
					"1400": {Path: "010-album/001-test-1400.jpg", Width: 1400, Height: 1050},
				},
				Thumbnail: "010-album/001-test-thumb.jpg",
			}},
			InNav: true,
		}},
		Config: config.Default(),
		Stats:  BuildStats{Encoded: 3, Reused: 2, Summary: "2 cached, 3 encoded (5 total)"},
	}

	if err := WriteProcessed(dir, in); err != nil {
		t.Fatalf("WriteProcessed() error = %v", err)
	}
	out, err := LoadProcessed(dir)
	if err != nil {
		t.Fatalf("LoadProcessed() error = %v", err)
	}

	img := out.Albums[0].Images[0]
	if len(img.Variants) != 2 || img.Variants["800"].Height != 600 {
		t.Errorf("variants lost data: %+v", img.Variants)
	}
	if out.Stats.Summary != "2 cached, 3 encoded (5 total)" {
		t.Errorf("stats = %+v", out.Stats)
	}
}

func TestLoadScanMissing(t *testing.T) {
	if _, err := LoadScan(t.TempDir()); err == nil {
		t.Fatal("LoadScan() on empty dir succeeded, want error")
	}
}

func TestLoadScanMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScan(dir); err == nil {
		t.Fatal("LoadScan() on malformed JSON succeeded, want error")
	}
}
