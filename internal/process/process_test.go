package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"darkroom/internal/config"
	"darkroom/internal/imaging"
	"darkroom/internal/manifest"
)

// fakeEngine is a deterministic Engine double. Identify answers from a
// fixed table keyed by source base name; Resize and Thumbnail write a
// small text artifact so cache copies have real bytes to duplicate.
type fakeEngine struct {
	dims        map[string]imaging.Dimensions
	failEncode  string // base name whose encodes fail
	failOutput  string // output base name that fails
	encodes     atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func (e *fakeEngine) Identify(path string) (imaging.Dimensions, error) {
	d, ok := e.dims[filepath.Base(path)]
	if !ok {
		return imaging.Dimensions{}, &imaging.DecodeError{Path: path, Err: fmt.Errorf("unknown test image")}
	}
	return d, nil
}

func (e *fakeEngine) Resize(p imaging.ResizeParams) error {
	return e.emit(p.Source, p.Output, p.Width, p.Height)
}

func (e *fakeEngine) Thumbnail(p imaging.ThumbnailParams) error {
	return e.emit(p.Source, p.Output, p.CropWidth, p.CropHeight)
}

func (e *fakeEngine) emit(source, output string, w, h int) error {
	cur := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		max := e.maxInFlight.Load()
		if cur <= max || e.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}

	if e.failEncode != "" && filepath.Base(source) == e.failEncode {
		return &imaging.EncodeError{Path: output, Err: fmt.Errorf("forced test failure")}
	}
	if e.failOutput != "" && filepath.Base(output) == e.failOutput {
		return &imaging.EncodeError{Path: output, Err: fmt.Errorf("forced test failure")}
	}
	e.encodes.Add(1)

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	content := fmt.Sprintf("%s %dx%d", filepath.Base(source), w, h)
	return os.WriteFile(output, []byte(content), 0o644)
}

func testConfig() config.Site {
	site := config.Default()
	site.Images.Sizes = []int{800, 1400}
	site.Processing.MaxProcesses = 2
	return site
}

// writeSource creates a stand-in source file; content only feeds the
// hash, the fake engine never decodes it.
func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testScan(albums ...manifest.Album) *manifest.Scan {
	return &manifest.Scan{Albums: albums, Config: testConfig()}
}

func singleAlbum(albumPath string, images ...manifest.Image) manifest.Album {
	return manifest.Album{
		Path:   albumPath,
		Title:  "Test Album",
		Images: images,
		InNav:  true,
	}
}

func img(number int, albumPath, filename string) manifest.Image {
	return manifest.Image{
		Number:     number,
		SourcePath: albumPath + "/" + filename,
		Filename:   filename,
	}
}

func TestRunFreshBuildEncodesEverything(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "01-trip/001-dawn.jpg", "dawn bytes")
	writeSource(t, src, "01-trip/002-dusk.jpg", "dusk bytes")

	engine := &fakeEngine{dims: map[string]imaging.Dimensions{
		"001-dawn.jpg": {Width: 4000, Height: 3000},
		"002-dusk.jpg": {Width: 1200, Height: 900},
	}}
	dawnImg := img(1, "01-trip", "001-dawn.jpg")
	dawnImg.Description = "First light over the bay."
	scan := testScan(singleAlbum("01-trip",
		dawnImg,
		img(2, "01-trip", "002-dusk.jpg"),
	))

	processed, err := Run(context.Background(), engine, scan, Options{SourceRoot: src, OutputDir: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(processed.Albums) != 1 || len(processed.Albums[0].Images) != 2 {
		t.Fatalf("expected 1 album with 2 images, got %+v", processed.Albums)
	}

	// dawn: both 800 and 1400 fit under the 4000px longer edge.
	dawn := processed.Albums[0].Images[0]
	if len(dawn.Variants) != 2 {
		t.Fatalf("dawn variants = %v, want 800 and 1400", dawn.Variants)
	}
	v800 := dawn.Variants["800"]
	if v800.Width != 800 || v800.Height != 600 {
		t.Errorf("dawn 800 variant = %dx%d, want 800x600", v800.Width, v800.Height)
	}
	if dawn.Thumbnail != "01-trip/001-dawn-thumb.jpg" {
		t.Errorf("dawn thumbnail = %q", dawn.Thumbnail)
	}
	if dawn.Description != "First light over the bay." {
		t.Errorf("dawn description = %q, want the sidecar text carried through", dawn.Description)
	}

	// dusk: longer edge 1200 fits only 800; 1400 is skipped, no upscale.
	dusk := processed.Albums[0].Images[1]
	if len(dusk.Variants) != 1 {
		t.Fatalf("dusk variants = %v, want only 800", dusk.Variants)
	}

	if processed.Stats.Failed != 0 {
		t.Errorf("failed = %d, want 0", processed.Stats.Failed)
	}
	if processed.Stats.Encoded != 5 {
		t.Errorf("encoded = %d, want 5 (2 dawn variants, 1 dusk variant, 2 thumbnails)", processed.Stats.Encoded)
	}

	for _, v := range dawn.Variants {
		full := filepath.Join(out, filepath.FromSlash(v.Path))
		if _, err := os.Stat(full); err != nil {
			t.Errorf("artifact missing: %v", err)
		}
	}
}

func TestRunSecondBuildReusesCache(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "01-trip/001-dawn.jpg", "dawn bytes")

	engine := &fakeEngine{dims: map[string]imaging.Dimensions{
		"001-dawn.jpg": {Width: 4000, Height: 3000},
	}}
	scan := testScan(singleAlbum("01-trip", img(1, "01-trip", "001-dawn.jpg")))
	opts := Options{SourceRoot: src, OutputDir: out}

	if _, err := Run(context.Background(), engine, scan, opts); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	firstEncodes := engine.encodes.Load()

	processed, err := Run(context.Background(), engine, scan, opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if engine.encodes.Load() != firstEncodes {
		t.Errorf("second build encoded %d new artifacts, want 0", engine.encodes.Load()-firstEncodes)
	}
	if processed.Stats.Reused != int(firstEncodes) {
		t.Errorf("reused = %d, want %d", processed.Stats.Reused, firstEncodes)
	}
	if processed.Stats.Encoded != 0 {
		t.Errorf("encoded = %d, want 0", processed.Stats.Encoded)
	}
	if len(processed.Albums[0].Images) != 1 {
		t.Fatalf("reused build lost the image from the manifest")
	}
}

func TestRunRenamedAlbumCopiesArtifacts(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "01-trip/001-dawn.jpg", "dawn bytes")

	engine := &fakeEngine{dims: map[string]imaging.Dimensions{
		"001-dawn.jpg": {Width: 4000, Height: 3000},
	}}
	opts := Options{SourceRoot: src, OutputDir: out}

	first := testScan(singleAlbum("01-trip", img(1, "01-trip", "001-dawn.jpg")))
	if _, err := Run(context.Background(), engine, first, opts); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	firstEncodes := engine.encodes.Load()

	// Same bytes, new album directory name.
	writeSource(t, src, "01-grand-trip/001-dawn.jpg", "dawn bytes")
	second := testScan(singleAlbum("01-grand-trip", img(1, "01-grand-trip", "001-dawn.jpg")))

	processed, err := Run(context.Background(), engine, second, opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if engine.encodes.Load() != firstEncodes {
		t.Errorf("rename triggered %d re-encodes, want 0", engine.encodes.Load()-firstEncodes)
	}
	if processed.Stats.Copied != int(firstEncodes) {
		t.Errorf("copied = %d, want %d", processed.Stats.Copied, firstEncodes)
	}

	thumb := filepath.Join(out, "01-grand-trip", "001-dawn-thumb.jpg")
	data, err := os.ReadFile(thumb)
	if err != nil {
		t.Fatalf("copied thumbnail missing: %v", err)
	}
	if !strings.Contains(string(data), "001-dawn.jpg") {
		t.Errorf("copied artifact has wrong content: %q", data)
	}
}

func TestRunNoCacheForcesEncode(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "01-trip/001-dawn.jpg", "dawn bytes")

	engine := &fakeEngine{dims: map[string]imaging.Dimensions{
		"001-dawn.jpg": {Width: 4000, Height: 3000},
	}}
	scan := testScan(singleAlbum("01-trip", img(1, "01-trip", "001-dawn.jpg")))
	opts := Options{SourceRoot: src, OutputDir: out}

	if _, err := Run(context.Background(), engine, scan, opts); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	firstEncodes := engine.encodes.Load()

	opts.NoCache = true
	processed, err := Run(context.Background(), engine, scan, opts)
	if err != nil {
		t.Fatalf("no-cache Run: %v", err)
	}
	if processed.Stats.Reused != 0 || processed.Stats.Copied != 0 {
		t.Errorf("no-cache build hit the cache: %+v", processed.Stats)
	}
	if engine.encodes.Load() != 2*firstEncodes {
		t.Errorf("no-cache build encoded %d, want %d", engine.encodes.Load()-firstEncodes, firstEncodes)
	}
}

func TestRunFailedImageIsIsolated(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "01-trip/001-dawn.jpg", "dawn bytes")
	writeSource(t, src, "01-trip/002-dusk.jpg", "dusk bytes")

	engine := &fakeEngine{
		dims: map[string]imaging.Dimensions{
			"001-dawn.jpg": {Width: 4000, Height: 3000},
			"002-dusk.jpg": {Width: 4000, Height: 3000},
		},
		failEncode: "002-dusk.jpg",
	}
	scan := testScan(singleAlbum("01-trip",
		img(1, "01-trip", "001-dawn.jpg"),
		img(2, "01-trip", "002-dusk.jpg"),
	))

	processed, err := Run(context.Background(), engine, scan, Options{SourceRoot: src, OutputDir: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	images := processed.Albums[0].Images
	if len(images) != 1 || images[0].Number != 1 {
		t.Fatalf("surviving images = %+v, want only number 1", images)
	}
	if processed.Stats.Failed == 0 {
		t.Error("failed jobs were not counted")
	}
	if processed.Stats.Encoded == 0 {
		t.Error("healthy image was not encoded")
	}
}

func TestRunPartialVariantFailureKeepsImage(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "01-trip/001-dawn.jpg", "dawn bytes")

	engine := &fakeEngine{
		dims: map[string]imaging.Dimensions{
			"001-dawn.jpg": {Width: 4000, Height: 3000},
		},
		failOutput: "001-dawn-1400.jpg",
	}
	scan := testScan(singleAlbum("01-trip", img(1, "01-trip", "001-dawn.jpg")))

	processed, err := Run(context.Background(), engine, scan, Options{SourceRoot: src, OutputDir: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	images := processed.Albums[0].Images
	if len(images) != 1 {
		t.Fatalf("image with one surviving variant was dropped")
	}
	if _, ok := images[0].Variants["800"]; !ok {
		t.Errorf("surviving 800 variant missing: %v", images[0].Variants)
	}
	if _, ok := images[0].Variants["1400"]; ok {
		t.Errorf("failed 1400 variant present in manifest")
	}
	if images[0].Thumbnail == "" {
		t.Errorf("thumbnail should survive a variant failure")
	}
	if processed.Stats.Failed != 1 {
		t.Errorf("failed = %d, want 1", processed.Stats.Failed)
	}
}

func TestRunUnidentifiableImageIsDropped(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "01-trip/001-dawn.jpg", "dawn bytes")
	writeSource(t, src, "01-trip/002-bad.jpg", "not an image")

	engine := &fakeEngine{dims: map[string]imaging.Dimensions{
		"001-dawn.jpg": {Width: 4000, Height: 3000},
		// 002-bad.jpg intentionally absent: Identify fails.
	}}
	scan := testScan(singleAlbum("01-trip",
		img(1, "01-trip", "001-dawn.jpg"),
		img(2, "01-trip", "002-bad.jpg"),
	))

	processed, err := Run(context.Background(), engine, scan, Options{SourceRoot: src, OutputDir: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(processed.Albums[0].Images) != 1 {
		t.Fatalf("images = %+v, want only the decodable one", processed.Albums[0].Images)
	}
	if processed.Stats.Failed != 1 {
		t.Errorf("failed = %d, want 1", processed.Stats.Failed)
	}
}

func TestRunMaxProcessesOneIsSequential(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	for i := 1; i <= 4; i++ {
		writeSource(t, src, fmt.Sprintf("01-trip/%03d-shot.jpg", i), fmt.Sprintf("shot %d", i))
	}

	dims := make(map[string]imaging.Dimensions)
	var images []manifest.Image
	for i := 1; i <= 4; i++ {
		name := fmt.Sprintf("%03d-shot.jpg", i)
		dims[name] = imaging.Dimensions{Width: 4000, Height: 3000}
		images = append(images, img(i, "01-trip", name))
	}

	engine := &fakeEngine{dims: dims}
	scan := testScan(singleAlbum("01-trip", images...))
	scan.Config.Processing.MaxProcesses = 1

	if _, err := Run(context.Background(), engine, scan, Options{SourceRoot: src, OutputDir: out}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := engine.maxInFlight.Load(); got > 1 {
		t.Errorf("max concurrent encodes = %d, want 1", got)
	}
}

func TestRunAlbumThumbnailSelection(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "01-trip/002-dusk.jpg", "dusk bytes")
	writeSource(t, src, "01-trip/003-noon.jpg", "noon bytes")

	engine := &fakeEngine{dims: map[string]imaging.Dimensions{
		"002-dusk.jpg": {Width: 4000, Height: 3000},
		"003-noon.jpg": {Width: 4000, Height: 3000},
	}}

	// No image number 1 and no preview override: first surviving image.
	album := singleAlbum("01-trip",
		img(2, "01-trip", "002-dusk.jpg"),
		img(3, "01-trip", "003-noon.jpg"),
	)
	scan := testScan(album)

	processed, err := Run(context.Background(), engine, scan, Options{SourceRoot: src, OutputDir: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := processed.Albums[0].Thumbnail; got != "01-trip/002-dusk-thumb.jpg" {
		t.Errorf("thumbnail = %q, want first image's", got)
	}

	// Explicit preview image wins.
	album.PreviewImage = "003-noon.jpg"
	scan = testScan(album)
	processed, err = Run(context.Background(), engine, scan, Options{SourceRoot: src, OutputDir: out})
	if err != nil {
		t.Fatalf("Run with preview: %v", err)
	}
	if got := processed.Albums[0].Thumbnail; got != "01-trip/003-noon-thumb.jpg" {
		t.Errorf("thumbnail = %q, want preview image's", got)
	}
}

func TestRunObserverSeesEveryJob(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "01-trip/001-dawn.jpg", "dawn bytes")

	engine := &fakeEngine{dims: map[string]imaging.Dimensions{
		"001-dawn.jpg": {Width: 4000, Height: 3000},
	}}
	scan := testScan(singleAlbum("01-trip", img(1, "01-trip", "001-dawn.jpg")))

	var seen atomic.Int64
	obs := observerFunc(func(JobResult) { seen.Add(1) })

	processed, err := Run(context.Background(), engine, scan, Options{
		SourceRoot: src, OutputDir: out, Observer: obs,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := int64(processed.Stats.Encoded)
	if seen.Load() != want {
		t.Errorf("observer saw %d jobs, want %d", seen.Load(), want)
	}
}

type observerFunc func(JobResult)

func (f observerFunc) JobCompleted(r JobResult) { f(r) }
