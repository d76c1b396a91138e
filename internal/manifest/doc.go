// Package manifest defines the JSON documents passed between build
// stages: the scan manifest (filesystem structure) and the processed
// manifest (generated artifacts and their geometry), which is the sole
// interface the HTML generation stage consumes.
package manifest
