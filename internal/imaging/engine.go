package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"darkroom/internal/logging"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Engine performs the pixel work. Implementations must be deterministic:
// identical decoded pixels and identical parameters produce identical
// output bytes, which is what licenses the content-addressed cache to
// skip or copy instead of re-encoding.
type Engine interface {
	// Identify returns the source's pixel dimensions without a full decode.
	Identify(path string) (Dimensions, error)
	// Resize downsamples the full frame to exactly Width x Height and
	// encodes it to the output path.
	Resize(p ResizeParams) error
	// Thumbnail resizes to fill the crop box, center-crops, optionally
	// sharpens, and encodes to the output path.
	Thumbnail(p ThumbnailParams) error
}

// JPEGEngine is the production engine: pure-Go decode and Lanczos
// resampling via the imaging library, JPEG output. When libvips has been
// initialized (see InitVips) it is used as a decode-time-shrink fast path
// for sources much larger than the target.
type JPEGEngine struct{}

// NewJPEGEngine returns the production engine.
func NewJPEGEngine() *JPEGEngine {
	return &JPEGEngine{}
}

// Identify reads only the image header.
func (e *JPEGEngine) Identify(path string) (Dimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s: %v", path, err)
		}
	}()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return Dimensions{}, &DecodeError{Path: path, Err: err}
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// Resize implements the responsive variant: full framing, Lanczos
// downsample, no sharpening.
func (e *JPEGEngine) Resize(p ResizeParams) error {
	img, err := e.load(p.Source, Dimensions{Width: p.Width, Height: p.Height})
	if err != nil {
		return err
	}

	out := imaging.Resize(img, p.Width, p.Height, imaging.Lanczos)
	return e.encode(out, p.Output, p.Quality)
}

// Thumbnail implements the fill, center-crop, sharpen pipeline. It always
// takes the pure-Go decode path: a decode-time shrink fits within the
// target box and could undershoot the crop coverage guarantee.
func (e *JPEGEngine) Thumbnail(p ThumbnailParams) error {
	crop := Dimensions{Width: p.CropWidth, Height: p.CropHeight}

	img, err := imaging.Open(p.Source, imaging.AutoOrientation(true))
	if err != nil {
		return &DecodeError{Path: p.Source, Err: err}
	}

	src := Dimensions{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	fill := FillDimensions(src, crop)

	out := imaging.Resize(img, fill.Width, fill.Height, imaging.Lanczos)
	out = imaging.CropCenter(out, p.CropWidth, p.CropHeight)
	if p.Sharpened && p.Sharpen.Sigma > 0 {
		out = imaging.Sharpen(out, p.Sharpen.Sigma)
	}
	return e.encode(out, p.Output, p.Quality)
}

// load decodes the source, preferring the libvips fast path for large
// sources when available.
func (e *JPEGEngine) load(path string, target Dimensions) (image.Image, error) {
	if vipsReady() {
		if img, err := loadWithVips(path, target); err == nil {
			return img, nil
		} else {
			logging.Debug("vips decode of %s failed, falling back: %v", path, err)
		}
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// encode writes the image as JPEG at the given quality.
func (e *JPEGEngine) encode(img image.Image, output string, quality int) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return &EncodeError{Path: output, Err: err}
	}
	if err := imaging.Save(img, output, imaging.JPEGQuality(quality)); err != nil {
		return &EncodeError{Path: output, Err: err}
	}
	return nil
}
