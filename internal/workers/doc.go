/*
Package workers determines worker pool sizes for the image processing
pipeline.

Encoding is CPU-bound, so the pool defaults to one worker per available
execution unit. GOMAXPROCS (not runtime.NumCPU) is consulted so container
CPU limits are respected in Go 1.19+. A configured maximum can only
constrain the pool downward: values larger than the available core count
are clamped, and a value of 1 degrades to strictly sequential processing.

The DARKROOM_WORKERS environment variable overrides the configured value,
which is useful for forcing sequential runs when debugging:

	DARKROOM_WORKERS=1 darkroom build
*/
package workers
