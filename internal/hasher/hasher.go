// Package hasher provides short xxHash64 fingerprints for batch outputs.
package hasher

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// ContentHash returns the xxHash64 of data as hex, truncated to hexLen
// characters when 0 < hexLen < 16.
func ContentHash(data []byte, hexLen int) string {
	return truncHex(xxhash.Sum64(data), hexLen)
}

// Digest is an order-sensitive fingerprint over a sequence of named
// records. Two batches that write the same files with the same contents in
// the same order produce the same digest.
type Digest struct {
	h *xxhash.Digest
}

// NewDigest returns an empty Digest.
func NewDigest() *Digest {
	return &Digest{h: xxhash.New()}
}

// Add folds one record into the digest. Lengths are written first so that
// ("ab","c") and ("a","bc") differ.
func (d *Digest) Add(name string, data []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(name)))
	d.h.Write(lenBuf[:])
	d.h.WriteString(name)
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(data)))
	d.h.Write(lenBuf[:])
	d.h.Write(data)
}

// Hex returns the full 16-character digest.
func (d *Digest) Hex() string {
	return truncHex(d.h.Sum64(), 0)
}

func truncHex(v uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
