package diffsketch

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// Key is an opaque 64-bit set element. Applications derive keys from their
// real elements, typically by hashing content (see KeyOf) or by truncating a
// wider content hash they already maintain (see KeyFromHash).
type Key uint64

// KeyHash is the short verification checksum of a Key, XOR-accumulated per
// bucket to detect coincidental cancellations during decode.
type KeyHash uint32

// HashSize is the wide content-hash width in bytes that KeyFromHash and
// HashFromKey convert between.
const HashSize = 32

// KeyWidth and KeyHashWidth are the fixed on-wire widths of a key sum and a
// key-hash sum.
const (
	KeyWidth     = 8
	KeyHashWidth = 4
)

// KeyFromHash truncates a wide content hash to a Key, reading the first
// KeyWidth bytes big-endian. h must be at least KeyWidth bytes.
func KeyFromHash(h []byte) Key {
	return Key(binary.BigEndian.Uint64(h[:KeyWidth]))
}

// HashFromKey expands a key back to the wide hash width by tiling the key
// value. Used when a key must be re-hashed as if it were original content.
func HashFromKey(k Key) [HashSize]byte {
	var h [HashSize]byte
	for i := 0; i < HashSize; i += KeyWidth {
		binary.BigEndian.PutUint64(h[i:], uint64(k))
	}
	return h
}

// KeyOf hashes arbitrary content to a Key using xxHash3. Use it when the
// application has no content hash of its own to truncate.
func KeyOf(data []byte) Key {
	return Key(xxh3.Hash(data))
}

// bytes returns the key's canonical byte form, big-endian. Checksums and the
// bucket indexer operate on this form so that both reconciling sides agree.
func (k Key) bytes() [KeyWidth]byte {
	var b [KeyWidth]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b
}
