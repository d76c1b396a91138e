package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"os"
	"sync"

	"darkroom/internal/imaging"
)

// Source is one physical input file. Its content hash is computed lazily
// on first use and cached for the lifetime of the build, so the multiple
// derived artifacts of one image share a single read-and-hash.
type Source struct {
	Path string

	once sync.Once
	hash string
	err  error
}

// NewSource wraps a source image path.
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// ContentHash returns the SHA-256 of the file contents as a hex string.
// The first caller pays for the read; concurrent callers block until it
// completes and then share the result.
func (s *Source) ContentHash() (string, error) {
	s.once.Do(func() {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			s.err = err
			return
		}
		sum := sha256.Sum256(data)
		s.hash = hex.EncodeToString(sum[:])
	})
	return s.hash, s.err
}

// DeriveKey computes the cache key for one artifact: a SHA-256 digest over
// the source content hash and the canonical serialization of the spec.
//
// The key is intentionally independent of file path, album position, and
// title. Any change to the source bytes or to any spec field changes the
// key; nothing else does.
func DeriveKey(sourceHash string, spec imaging.EncodingSpec) string {
	h := sha256.New()
	h.Write([]byte(sourceHash))
	h.Write(canonicalSpec(spec))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalSpec serializes a spec with a fixed field order and fixed-width
// little-endian integers so the digest is stable across platforms.
func canonicalSpec(spec imaging.EncodingSpec) []byte {
	buf := make([]byte, 0, 64)

	switch spec.Kind {
	case imaging.KindResponsive:
		buf = append(buf, "responsive\x00"...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(spec.Target))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(spec.Quality))
	case imaging.KindThumbnail:
		buf = append(buf, "thumbnail\x00"...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(spec.AspectW))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(spec.AspectH))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(spec.ShortEdge))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(spec.Quality))
		if spec.Sharpened {
			buf = append(buf, 0x01)
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(spec.Sharpen.Sigma)))
			buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(spec.Sharpen.Threshold)))
		} else {
			buf = append(buf, 0x00)
		}
	}

	return buf
}
