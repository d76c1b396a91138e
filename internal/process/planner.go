package process

import (
	"path"
	"path/filepath"
	"strconv"

	"darkroom/internal/cache"
	"darkroom/internal/config"
	"darkroom/internal/imaging"
	"darkroom/internal/logging"
	"darkroom/internal/manifest"
	"darkroom/internal/naming"
)

// Config is the fully resolved per-album encoding configuration. The
// pipeline never consults the hierarchical site config directly; this
// value is constructed once before planning.
type Config struct {
	Sizes        []int
	Quality      int
	ThumbAspectW int
	ThumbAspectH int
	ThumbSize    int
	MaxProcesses int
}

// ConfigFromSite resolves the site configuration into pipeline parameters.
func ConfigFromSite(site config.Site) Config {
	return Config{
		Sizes:        site.Images.Sizes,
		Quality:      site.Images.Quality,
		ThumbAspectW: site.Thumbnails.AspectRatio[0],
		ThumbAspectH: site.Thumbnails.AspectRatio[1],
		ThumbSize:    site.Thumbnails.Size,
		MaxProcesses: site.Processing.MaxProcesses,
	}
}

// Job is one independent unit of work: produce a single artifact for a
// single source image. No two jobs in a run share an output path.
type Job struct {
	Source *cache.Source
	Spec   imaging.EncodingSpec

	// OutputPath is relative to the output directory, slash-separated.
	OutputPath string

	// Width and Height are the planned output dimensions.
	Width  int
	Height int
}

// ImagePlan groups one image's jobs with its identity and geometry.
type ImagePlan struct {
	Album  *manifest.Album
	Image  manifest.Image
	Dims   imaging.Dimensions
	Source *cache.Source

	// Responsive jobs in breakpoint order, then exactly one thumbnail job.
	Responsive []Job
	Thumbnail  Job
}

// Jobs returns the responsive jobs followed by the thumbnail job.
func (p *ImagePlan) Jobs() []Job {
	jobs := make([]Job, 0, len(p.Responsive)+1)
	jobs = append(jobs, p.Responsive...)
	jobs = append(jobs, p.Thumbnail)
	return jobs
}

// PlanFailure records an image that could not be planned (unreadable or
// undecodable source). Planning failures isolate like job failures do.
type PlanFailure struct {
	Album      *manifest.Album
	Image      manifest.Image
	SourcePath string
	Err        error
}

// PlanAlbum enumerates the jobs for every image of one album.
//
// Per image: one job per configured responsive width that does not exceed
// the source's longer edge (no-upscale policy); if every width is skipped,
// a single job at native dimensions; always exactly one thumbnail job.
func PlanAlbum(engine imaging.Engine, sourceRoot string, album *manifest.Album, cfg Config) ([]ImagePlan, []PlanFailure) {
	var plans []ImagePlan
	var failures []PlanFailure

	for _, img := range album.Images {
		sourcePath := filepath.Join(sourceRoot, filepath.FromSlash(img.SourcePath))

		dims, err := engine.Identify(sourcePath)
		if err != nil {
			logging.Error("cannot identify %s: %v", sourcePath, err)
			failures = append(failures, PlanFailure{
				Album: album, Image: img, SourcePath: sourcePath, Err: err,
			})
			continue
		}

		src := cache.NewSource(sourcePath)
		stem := naming.Stem(img.Filename)

		var responsive []Job
		for _, size := range imaging.ResponsiveSizes(dims, cfg.Sizes) {
			responsive = append(responsive, Job{
				Source:     src,
				Spec:       imaging.ResponsiveSpec(size.Target, cfg.Quality),
				OutputPath: path.Join(album.Path, stem+"-"+strconv.Itoa(size.Target)+".jpg"),
				Width:      size.Width,
				Height:     size.Height,
			})
		}

		thumbDims := imaging.ThumbnailDimensions(cfg.ThumbAspectW, cfg.ThumbAspectH, cfg.ThumbSize)
		thumbnail := Job{
			Source:     src,
			Spec:       imaging.ThumbnailSpec(cfg.ThumbAspectW, cfg.ThumbAspectH, cfg.ThumbSize, cfg.Quality),
			OutputPath: path.Join(album.Path, stem+"-thumb.jpg"),
			Width:      thumbDims.Width,
			Height:     thumbDims.Height,
		}

		plans = append(plans, ImagePlan{
			Album:      album,
			Image:      img,
			Dims:       dims,
			Source:     src,
			Responsive: responsive,
			Thumbnail:  thumbnail,
		})
	}

	return plans, failures
}
