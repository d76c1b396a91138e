// Package imaging implements the image transform engine: dimension
// calculations, decode, high-quality downsampling, fill-and-center-crop
// thumbnails with unsharp sharpening, and JPEG encoding.
//
// The calculation functions are pure and deterministic; derived dimensions
// use round-half-up so output geometry is reproducible across machines.
// The Engine interface separates "what to produce" from "how pixels are
// produced", which lets the process stage run against a mock in tests.
package imaging
