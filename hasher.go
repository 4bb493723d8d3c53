package diffsketch

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"
	"github.com/spaolacci/murmur3"
)

// Hasher is the checksum capability injected into a Sketch at creation. It
// drives both the short per-key verification hash and the bucket indexer, so
// two reconciling sketches must be constructed with the same Hasher (and the
// same key material, for keyed hashers).
//
// Implementations must be pure functions of their input: no internal state
// may survive a call.
type Hasher interface {
	Checksum(b []byte) uint32
}

// XXHasher checksums with xxHash64 folded to 32 bits. It is the default
// Hasher and the fastest of the provided implementations.
type XXHasher struct{}

func (XXHasher) Checksum(b []byte) uint32 {
	s := xxhash.Sum64(b)
	return uint32(s) ^ uint32(s>>32)
}

// MurmurHasher checksums with 32-bit murmur3.
type MurmurHasher struct {
	Seed uint32
}

func (h MurmurHasher) Checksum(b []byte) uint32 {
	return murmur3.Sum32WithSeed(b, h.Seed)
}

// SipHasher checksums with keyed SipHash-2-4 folded to 32 bits. Use it when
// the keys being reconciled may be chosen adversarially; an attacker who
// does not know K0/K1 cannot craft keys that collide in the sketch.
type SipHasher struct {
	K0, K1 uint64
}

func (h SipHasher) Checksum(b []byte) uint32 {
	s := siphash.Hash(h.K0, h.K1, b)
	return uint32(s) ^ uint32(s>>32)
}

// shortHash computes the verification checksum of a key.
func shortHash(h Hasher, k Key) KeyHash {
	b := k.bytes()
	return KeyHash(h.Checksum(b[:]))
}
