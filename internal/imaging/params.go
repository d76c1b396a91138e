package imaging

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LongerEdge returns the larger of width and height.
func (d Dimensions) LongerEdge() int {
	if d.Width >= d.Height {
		return d.Width
	}
	return d.Height
}

// Sharpening holds unsharp-mask parameters applied to thumbnails to
// compensate for softening at small target sizes.
type Sharpening struct {
	// Sigma is the standard deviation of the Gaussian blur; higher means
	// more sharpening.
	Sigma float64 `json:"sigma"`
	// Threshold is the minimum brightness difference to sharpen
	// (0 sharpens all pixels).
	Threshold int `json:"threshold"`
}

// LightSharpening is the fixed policy applied to thumbnails.
func LightSharpening() Sharpening {
	return Sharpening{Sigma: 0.5, Threshold: 0}
}

// SpecKind tags the two derived-output kinds.
type SpecKind uint8

const (
	// KindResponsive is a width-constrained full-frame variant.
	KindResponsive SpecKind = iota
	// KindThumbnail is an aspect-ratio-cropped, sharpened small variant.
	KindThumbnail
)

func (k SpecKind) String() string {
	switch k {
	case KindResponsive:
		return "responsive"
	case KindThumbnail:
		return "thumbnail"
	default:
		return "unknown"
	}
}

// EncodingSpec fully describes one requested artifact. It is a value type:
// two specs with equal fields are interchangeable regardless of which
// source image they apply to, which is what makes content-addressed
// caching sound.
type EncodingSpec struct {
	Kind SpecKind

	// Target is the longer-edge size for responsive variants.
	Target int

	// AspectW, AspectH, and ShortEdge describe thumbnails.
	AspectW   int
	AspectH   int
	ShortEdge int

	// Quality is the lossy encode quality (0-100), taken verbatim from
	// the resolved configuration.
	Quality int

	// Sharpen applies only when Sharpened is true (thumbnails).
	Sharpen   Sharpening
	Sharpened bool
}

// ResponsiveSpec builds the spec for one responsive width.
func ResponsiveSpec(target, quality int) EncodingSpec {
	return EncodingSpec{
		Kind:    KindResponsive,
		Target:  target,
		Quality: quality,
	}
}

// ThumbnailSpec builds the spec for the album thumbnail. Sharpening is a
// fixed policy constant.
func ThumbnailSpec(aspectW, aspectH, shortEdge, quality int) EncodingSpec {
	return EncodingSpec{
		Kind:      KindThumbnail,
		AspectW:   aspectW,
		AspectH:   aspectH,
		ShortEdge: shortEdge,
		Quality:   quality,
		Sharpen:   LightSharpening(),
		Sharpened: true,
	}
}

// ResizeParams specifies a full-frame resize-and-encode.
type ResizeParams struct {
	Source  string
	Output  string
	Width   int
	Height  int
	Quality int
}

// ThumbnailParams specifies a fill, center-crop, sharpen, and encode.
type ThumbnailParams struct {
	Source     string
	Output     string
	CropWidth  int
	CropHeight int
	Quality    int
	Sharpen    Sharpening
	Sharpened  bool
}
