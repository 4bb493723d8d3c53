package diffsketch

import "encoding/binary"

// bucketIndices computes the hashNum distinct bucket positions for k and
// stores them in out, which must have length hashNum.
//
// A rolling 32-bit value is seeded with the checksum of the key. Each
// candidate index is the rolling value modulo the sketch size; after every
// attempt, accepted or not, the rolling value is advanced by checksumming
// the candidate combined with the attempt number. A candidate that repeats
// an already-chosen index is rejected and the next rolling value is tried.
//
// Distinctness is mandatory: a key mapped twice into the same bucket would
// XOR-cancel its own sums there, which is indistinguishable from never
// having touched the bucket at all and silently breaks decoding.
func bucketIndices(h Hasher, size uint32, k Key, out []uint32) {
	kb := k.bytes()
	r := h.Checksum(kb[:])

	round := uint64(0)
	chosen := 0
	for chosen < len(out) {
		idx := r % size

		// Advance on the full pre-reduction value, not the index: keys that
		// happen to share a bucket must still diverge on later slots.
		var rb [8]byte
		binary.BigEndian.PutUint64(rb[:], uint64(r)<<32|round)
		r = h.Checksum(rb[:])
		round++

		if containsIndex(out[:chosen], idx) {
			continue
		}
		out[chosen] = idx
		chosen++
	}
}

func containsIndex(s []uint32, idx uint32) bool {
	for _, v := range s {
		if v == idx {
			return true
		}
	}
	return false
}
