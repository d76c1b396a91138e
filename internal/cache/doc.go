/*
Package cache implements the content-addressed processing cache.

Encoding is the bottleneck of a build; a single image at three responsive
sizes can take seconds. The cache lets the process stage skip encoding
when neither the source bytes nor the encoding parameters have changed
since a previous build.

# Keys

Each artifact is keyed by a SHA-256 digest over the source file's content
hash concatenated with a canonical serialization of its encoding spec.
Content-based rather than mtime-based hashing survives git checkouts;
path independence means renaming an album or renumbering an image never
invalidates the key, so the index can satisfy such moves by copying an
existing output instead of re-encoding.

# Storage

The index is a SQLite side-car database next to the processed output
directory, updated incrementally per job so an interrupted build loses at
most the in-flight jobs. A missing, corrupt, or version-mismatched index
degrades to "everything is a miss", never to a failed build.
*/
package cache
