package diffsketch

import (
	"math/bits"

	dserrors "github.com/tamirms/diffsketch/errors"
)

// bucket is one cell of the sketch. All three fields accumulate every key
// mapped into the cell: count by signed addition, the two sums by XOR.
type bucket struct {
	keySum     Key
	keyHashSum KeyHash
	count      int32
}

func (b *bucket) zero() bool {
	return b.count == 0 && b.keySum == 0 && b.keyHashSum == 0
}

// pure reports whether the bucket holds a net contribution of exactly one
// key. Purity is necessary but not sufficient for decoding; see decoder.go
// for the two verification steps that make it sufficient.
func (b *bucket) pure() bool {
	return b.count == 1 || b.count == -1
}

// Sketch is a fixed-size invertible set-reconciliation structure over 64-bit
// keys. Two parties each insert their full set into a same-shaped Sketch;
// subtracting one from the other leaves a structure from which the symmetric
// difference can be decoded, at a transfer cost proportional to the
// difference rather than the sets.
//
// A Sketch is exclusively owned by its creator and is not safe for
// concurrent mutation. InsertAll is the only concurrent entry point and
// works on private shards.
type Sketch struct {
	buckets []bucket
	hashNum int
	hasher  Hasher

	// diagnostic counts of decoded elements per side
	localDecoded  int
	remoteDecoded int

	// decode scan cursor, see DecodeOne
	scanFrom int

	// scratch for bucketIndices, sized hashNum
	idx []uint32
}

// New creates a zeroed sketch with size buckets. The size is caller-chosen
// based on the expected difference size and need not be a power of two.
func New(size int, opts ...Option) (*Sketch, error) {
	if size <= 0 {
		return nil, dserrors.ErrZeroSize
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.hashNum < 1 || cfg.hashNum > size {
		return nil, dserrors.ErrBadHashCount
	}
	return &Sketch{
		buckets: make([]bucket, size),
		hashNum: cfg.hashNum,
		hasher:  cfg.hasher,
		idx:     make([]uint32, cfg.hashNum),
	}, nil
}

// Size returns the number of buckets.
func (s *Sketch) Size() int { return len(s.buckets) }

// HashCount returns the number of buckets each key maps to.
func (s *Sketch) HashCount() int { return s.hashNum }

// LocalDecoded returns how many elements have been decoded with side +1,
// i.e. elements exclusive to the set this sketch was built from.
func (s *Sketch) LocalDecoded() int { return s.localDecoded }

// RemoteDecoded returns how many elements have been decoded with side -1,
// i.e. elements exclusive to the subtracted peer's set.
func (s *Sketch) RemoteDecoded() int { return s.remoteDecoded }

// insertInto applies delta copies of k to every bucket the key maps to.
// delta is +1 for Insert, -1 for Remove, and the negated bucket count when
// the decoder peels an element out.
func (s *Sketch) insertInto(k Key, delta int32) {
	bucketIndices(s.hasher, uint32(len(s.buckets)), k, s.idx)
	kh := shortHash(s.hasher, k)
	for _, i := range s.idx {
		b := &s.buckets[i]
		b.count += delta
		b.keySum ^= k
		b.keyHashSum ^= kh
	}
}

// Insert adds k to the sketch.
func (s *Sketch) Insert(k Key) {
	s.insertInto(k, 1)
}

// Remove deletes k from the sketch. Removing a key that was never inserted
// is permitted and leaves the sketch representing a negative membership,
// exactly as Subtract would.
func (s *Sketch) Remove(k Key) {
	s.insertInto(k, -1)
}

// Subtract combines o into s bucket-wise: counts subtract, both sums XOR.
// Afterwards a decoded key with side +1 was held only by s's set and one
// with side -1 only by o's set. The two sketches must agree in size and
// hash count; the hashers must match as well, which cannot be checked here
// and is part of the caller's protocol contract.
func (s *Sketch) Subtract(o *Sketch) error {
	if len(s.buckets) != len(o.buckets) || s.hashNum != o.hashNum {
		return dserrors.ErrShapeMismatch
	}
	for i := range s.buckets {
		s.buckets[i].count -= o.buckets[i].count
		s.buckets[i].keySum ^= o.buckets[i].keySum
		s.buckets[i].keyHashSum ^= o.buckets[i].keyHashSum
	}
	return nil
}

// merge is the dual of Subtract: counts add, sums XOR. Used by InsertAll to
// fold worker shards into the destination. Shapes are guaranteed equal by
// the caller.
func (s *Sketch) merge(o *Sketch) {
	for i := range s.buckets {
		s.buckets[i].count += o.buckets[i].count
		s.buckets[i].keySum ^= o.buckets[i].keySum
		s.buckets[i].keyHashSum ^= o.buckets[i].keyHashSum
	}
}

// Clone returns a deep copy of the sketch, including diagnostic counters.
func (s *Sketch) Clone() *Sketch {
	c := &Sketch{
		buckets:       make([]bucket, len(s.buckets)),
		hashNum:       s.hashNum,
		hasher:        s.hasher,
		localDecoded:  s.localDecoded,
		remoteDecoded: s.remoteDecoded,
		scanFrom:      s.scanFrom,
		idx:           make([]uint32, s.hashNum),
	}
	copy(c.buckets, s.buckets)
	return c
}

// Reset zeroes every bucket and counter so the sketch can be reused without
// reallocating.
func (s *Sketch) Reset() {
	clear(s.buckets)
	s.localDecoded = 0
	s.remoteDecoded = 0
	s.scanFrom = 0
}

// IsEmpty reports whether every bucket is fully zero. An empty sketch is the
// only valid decode-termination state that is not an error.
func (s *Sketch) IsEmpty() bool {
	for i := range s.buckets {
		if !s.buckets[i].zero() {
			return false
		}
	}
	return true
}

// MaxCounterBits returns the smallest counter bit width that round-trips
// every bucket count through the wire codec, sign bit included. The result
// is at least 1. Senders call this to pick an economical width and carry it
// to the receiver in their protocol envelope.
func (s *Sketch) MaxCounterBits() int {
	width := 1
	for i := range s.buckets {
		if w := signedBits(s.buckets[i].count); w > width {
			width = w
		}
	}
	return width
}

// signedBits is the minimal two's-complement width of v: Len(v)+1 for
// non-negative values, Len(^v)+1 for negative ones (so -1 needs 1 bit,
// +1 needs 2).
func signedBits(v int32) int {
	if v < 0 {
		v = ^v
	}
	return bits.Len32(uint32(v)) + 1
}
