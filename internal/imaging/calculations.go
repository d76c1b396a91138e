package imaging

import "math"

// roundHalfUp rounds a positive ratio to the nearest integer, halves up.
// This is a committed contract: derived dimensions feed cache keys, so the
// rounding rule must not vary across platforms.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ThumbnailDimensions computes final thumbnail dimensions from a target
// aspect ratio and the size of the short edge.
//
//	ThumbnailDimensions(4, 5, 400) → 400x500 (portrait: width is short)
//	ThumbnailDimensions(3, 2, 300) → 450x300 (landscape: height is short)
func ThumbnailDimensions(aspectW, aspectH, shortEdge int) Dimensions {
	if aspectW <= aspectH {
		// Portrait or square: width is the short edge
		w := shortEdge
		h := roundHalfUp(float64(w) * float64(aspectH) / float64(aspectW))
		return Dimensions{Width: w, Height: h}
	}
	// Landscape: height is the short edge
	h := shortEdge
	w := roundHalfUp(float64(h) * float64(aspectW) / float64(aspectH))
	return Dimensions{Width: w, Height: h}
}

// FillDimensions computes the resize needed to completely cover target
// while preserving the source aspect ratio. One dimension matches the
// target exactly; the other meets or exceeds it, so a center crop never
// letterboxes.
func FillDimensions(source, target Dimensions) Dimensions {
	srcAspect := float64(source.Width) / float64(source.Height)
	tgtAspect := float64(target.Width) / float64(target.Height)

	if srcAspect > tgtAspect {
		// Source is wider: height matches, width exceeds
		h := target.Height
		w := roundHalfUp(float64(h) * srcAspect)
		return Dimensions{Width: w, Height: h}
	}
	// Source is taller (or same aspect): width matches, height exceeds
	w := target.Width
	h := roundHalfUp(float64(w) / srcAspect)
	return Dimensions{Width: w, Height: h}
}

// ResponsiveSize is one planned responsive variant.
type ResponsiveSize struct {
	// Target is the requested longer-edge size (the breakpoint label).
	Target int
	// Width and Height are the output dimensions, aspect preserved.
	Width  int
	Height int
}

// ResponsiveSizes filters the configured breakpoints against the source
// dimensions and computes output geometry for each survivor.
//
// Sizes exceeding the source's longer edge are skipped (no-upscale
// policy). If every configured size is skipped, the source's native
// dimensions are returned as the single entry so each image always has at
// least one responsive artifact.
func ResponsiveSizes(original Dimensions, sizes []int) []ResponsiveSize {
	longerEdge := original.LongerEdge()

	var result []ResponsiveSize
	for _, target := range sizes {
		if target > longerEdge {
			continue
		}
		var out Dimensions
		if original.Width >= original.Height {
			// Landscape or square: target applies to width
			ratio := float64(target) / float64(original.Width)
			out = Dimensions{
				Width:  target,
				Height: roundHalfUp(float64(original.Height) * ratio),
			}
		} else {
			// Portrait: target applies to height
			ratio := float64(target) / float64(original.Height)
			out = Dimensions{
				Width:  roundHalfUp(float64(original.Width) * ratio),
				Height: target,
			}
		}
		result = append(result, ResponsiveSize{Target: target, Width: out.Width, Height: out.Height})
	}

	if len(result) == 0 {
		result = append(result, ResponsiveSize{
			Target: longerEdge,
			Width:  original.Width,
			Height: original.Height,
		})
	}
	return result
}
