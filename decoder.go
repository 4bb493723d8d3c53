package diffsketch

// Outcome is the three-way result of a DecodeOne call.
type Outcome int

const (
	// Decoded: one element was extracted and peeled out of the sketch.
	Decoded Outcome = iota
	// Done: the sketch is fully empty; every element has been decoded.
	Done
	// Indeterminate: the sketch is non-empty but holds no decodable pure
	// bucket. The sketch was too small for the actual difference, or too
	// many checksum collisions occurred. This is an expected, recoverable
	// protocol state, not an error: the caller re-runs reconciliation with
	// a larger sketch.
	Indeterminate
)

func (o Outcome) String() string {
	switch o {
	case Decoded:
		return "decoded"
	case Done:
		return "done"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// DecodeOne extracts a single element from the sketch, if one is exposed.
//
// It scans for a pure bucket (count ±1) whose key sum survives two
// verifications: the bucket's key-hash sum must equal the short hash of the
// key sum, and the key sum's own bucket mapping must include the bucket it
// was found in. A bucket failing either check is a coincidental XOR
// cancellation of two or more keys and is skipped, not an error.
//
// A verified key is peeled out by re-applying it with the opposite sign,
// which zeroes the found bucket and adjusts the key's other buckets,
// potentially exposing new pure buckets for subsequent calls.
//
// The scan resumes where the previous call left off and wraps; a full pass
// with no decodable bucket yields Done on an empty sketch and Indeterminate
// otherwise. The decode result set is identical to a from-zero rescan, only
// the order of decoded elements may differ.
func (s *Sketch) DecodeOne() (Key, int, Outcome) {
	n := len(s.buckets)
	for off := 0; off < n; off++ {
		i := s.scanFrom + off
		if i >= n {
			i -= n
		}
		b := &s.buckets[i]
		if !b.pure() {
			continue
		}
		k := b.keySum
		if shortHash(s.hasher, k) != b.keyHashSum {
			continue
		}
		bucketIndices(s.hasher, uint32(n), k, s.idx)
		if !containsIndex(s.idx, uint32(i)) {
			// The key sum passed the checksum but never actually landed
			// in this bucket: a collision false positive.
			continue
		}

		side := int(b.count)
		if side > 0 {
			s.localDecoded++
		} else {
			s.remoteDecoded++
		}
		s.insertInto(k, int32(-side))
		s.scanFrom = i
		return k, side, Decoded
	}

	if s.IsEmpty() {
		return 0, 0, Done
	}
	return 0, 0, Indeterminate
}

// Decode drains the sketch, returning the decoded elements grouped by side:
// local holds keys exclusive to this sketch's set (side +1), remote holds
// keys exclusive to the subtracted set (side -1). The outcome is Done when
// the sketch decoded completely and Indeterminate when it got stuck; in the
// latter case the returned keys are still valid decoded elements.
func (s *Sketch) Decode() (local, remote []Key, outcome Outcome) {
	for {
		k, side, o := s.DecodeOne()
		switch o {
		case Decoded:
			if side > 0 {
				local = append(local, k)
			} else {
				remote = append(remote, k)
			}
		default:
			return local, remote, o
		}
	}
}
