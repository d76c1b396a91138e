/*
Package process is stage 2 of the build pipeline: it turns the scan
manifest into processed image artifacts plus a manifest describing them.

For every source image it plans a set of independent jobs (one per
applicable responsive breakpoint plus exactly one thumbnail), runs them
across a bounded worker pool, and consults the content-addressed cache
index before paying for an encode. Job outcomes:

  - Encoded: the engine decoded, transformed, and encoded fresh bytes
  - Reused: the target path already held the artifact for this key
  - Copied: the same key existed under a different path (album renamed or
    image renumbered) and the output was copied instead of re-encoded
  - Failed: terminal per-job error, isolated from sibling jobs

All jobs reach a terminal state before the output manifest is aggregated.
A single image's failure never aborts the build; an image is reported as
unprocessable only when none of its responsive jobs succeed.
*/
package process
