package diffsketch

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// randomKeySet generates n distinct pseudo-random keys.
func randomKeySet(rng *rand.Rand, n int) []Key {
	seen := make(map[Key]struct{}, n)
	keys := make([]Key, 0, n)
	for len(keys) < n {
		k := Key(rng.Uint64())
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// mustNew creates a sketch or fails the test.
func mustNew(t testing.TB, size int, opts ...Option) *Sketch {
	t.Helper()
	s, err := New(size, opts...)
	if err != nil {
		t.Fatalf("New(%d): %v", size, err)
	}
	return s
}

// bucketsEqual compares the full bucket state of two same-shaped sketches.
func bucketsEqual(a, b *Sketch) bool {
	if len(a.buckets) != len(b.buckets) {
		return false
	}
	for i := range a.buckets {
		if a.buckets[i] != b.buckets[i] {
			return false
		}
	}
	return true
}

// keySetsMatch reports whether got holds exactly the keys in want, in any
// order, with no duplicates.
func keySetsMatch(got []Key, want []Key) bool {
	if len(got) != len(want) {
		return false
	}
	wantSet := make(map[Key]struct{}, len(want))
	for _, k := range want {
		wantSet[k] = struct{}{}
	}
	for _, k := range got {
		if _, ok := wantSet[k]; !ok {
			return false
		}
		delete(wantSet, k)
	}
	return true
}
