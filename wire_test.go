package diffsketch

import (
	"errors"
	"testing"

	dserrors "github.com/tamirms/diffsketch/errors"
)

// populateForWire puts the sketch into an arbitrary mixed state with
// positive, negative and cancelled contributions.
func populateForWire(t *testing.T, s *Sketch, rng interface{ Uint64() uint64 }, inserts, removes int) {
	t.Helper()
	for i := 0; i < inserts; i++ {
		s.Insert(Key(rng.Uint64()))
	}
	for i := 0; i < removes; i++ {
		s.Remove(Key(rng.Uint64()))
	}
}

func TestWireFullRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	src := mustNew(t, 64, WithHashCount(3))
	populateForWire(t, src, rng, 40, 25)

	minWidth := src.MaxCounterBits()
	for width := minWidth; width <= minWidth+8; width++ {
		payload, err := src.WriteSlice(0, src.Size(), width)
		if err != nil {
			t.Fatalf("width %d: WriteSlice: %v", width, err)
		}
		if len(payload) != SliceLen(src.Size(), width) {
			t.Fatalf("width %d: payload %d bytes, SliceLen says %d",
				width, len(payload), SliceLen(src.Size(), width))
		}

		dst := mustNew(t, 64, WithHashCount(3))
		if err := dst.ReadSlice(payload, 0, dst.Size(), width); err != nil {
			t.Fatalf("width %d: ReadSlice: %v", width, err)
		}
		if !bucketsEqual(src, dst) {
			t.Fatalf("width %d: bucket state did not round trip", width)
		}
	}
}

// Chunked transmission: any partition of the bucket range must reassemble
// into the identical sketch.
func TestWireChunkedRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	src := mustNew(t, 100, WithHashCount(4))
	populateForWire(t, src, rng, 70, 10)
	width := src.MaxCounterBits()

	for _, chunk := range []int{1, 3, 7, 33, 100} {
		dst := mustNew(t, 100, WithHashCount(4))
		for start := 0; start < src.Size(); start += chunk {
			count := min(chunk, src.Size()-start)
			payload, err := src.WriteSlice(start, count, width)
			if err != nil {
				t.Fatalf("chunk %d @%d: WriteSlice: %v", chunk, start, err)
			}
			if err := dst.ReadSlice(payload, start, count, width); err != nil {
				t.Fatalf("chunk %d @%d: ReadSlice: %v", chunk, start, err)
			}
		}
		if !bucketsEqual(src, dst) {
			t.Fatalf("chunk size %d: reassembled sketch differs", chunk)
		}
	}
}

// A transmitted sketch must not just match bucket-for-bucket but decode:
// the full subtract-then-peel flow across a wire hop.
func TestWireThenReconcile(t *testing.T) {
	rng := newTestRNG(t)
	keys := randomKeySet(rng, 210)
	shared, xa, xb := keys[:200], keys[200:205], keys[205:]

	a := mustNew(t, 128, WithHashCount(3))
	b := mustNew(t, 128, WithHashCount(3))
	for _, k := range shared {
		a.Insert(k)
		b.Insert(k)
	}
	for _, k := range xa {
		a.Insert(k)
	}
	for _, k := range xb {
		b.Insert(k)
	}

	width := b.MaxCounterBits()
	payload, err := b.WriteSlice(0, b.Size(), width)
	if err != nil {
		t.Fatalf("WriteSlice: %v", err)
	}
	received := mustNew(t, 128, WithHashCount(3))
	if err := received.ReadSlice(payload, 0, received.Size(), width); err != nil {
		t.Fatalf("ReadSlice: %v", err)
	}

	if err := a.Subtract(received); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	local, remote, outcome := a.Decode()
	if outcome != Done {
		t.Fatalf("Decode outcome = %v, want Done", outcome)
	}
	if !keySetsMatch(local, xa) || !keySetsMatch(remote, xb) {
		t.Fatalf("reconciliation over the wire decoded %d+%d keys, want %d+%d",
			len(local), len(remote), len(xa), len(xb))
	}
}

func TestPackCountersTruncatesBelowMinWidth(t *testing.T) {
	s := mustNew(t, 4, WithHashCount(1))
	s.buckets[0].count = 5 // needs 4 bits
	s.buckets[1].count = -3
	s.buckets[2].count = 1
	s.buckets[3].count = 0

	// At 2 bits, 5 truncates to 0b01 = +1 and -3 to 0b01 = +1: packing and
	// unpacking must stay symmetric (truncate then sign-extend) even though
	// values are lost.
	packed, err := s.PackCounters(0, 4, 2)
	if err != nil {
		t.Fatalf("PackCounters: %v", err)
	}
	dst := mustNew(t, 4, WithHashCount(1))
	if err := dst.UnpackCounters(packed, 0, 4, 2); err != nil {
		t.Fatalf("UnpackCounters: %v", err)
	}
	want := []int32{1, 1, 1, 0}
	for i, w := range want {
		if dst.buckets[i].count != w {
			t.Fatalf("bucket %d: count = %d, want %d", i, dst.buckets[i].count, w)
		}
	}
}

func TestPackCountersBitLayout(t *testing.T) {
	// Three counters at 3 bits each: 1, -1, 2 pack MSB-first as
	// 001 111 010, zero-padded to two bytes.
	s := mustNew(t, 3, WithHashCount(1))
	s.buckets[0].count = 1
	s.buckets[1].count = -1
	s.buckets[2].count = 2

	packed, err := s.PackCounters(0, 3, 3)
	if err != nil {
		t.Fatalf("PackCounters: %v", err)
	}
	want := []byte{0b00111101, 0b00000000}
	if len(packed) != len(want) || packed[0] != want[0] || packed[1] != want[1] {
		t.Fatalf("packed = %08b, want %08b", packed, want)
	}
}

func TestWireRejectsMalformedInput(t *testing.T) {
	src := mustNew(t, 16, WithHashCount(3))
	src.Insert(42)
	good, err := src.WriteSlice(0, 16, 4)
	if err != nil {
		t.Fatalf("WriteSlice: %v", err)
	}

	cases := []struct {
		name    string
		data    []byte
		start   int
		count   int
		width   int
		wantErr error
	}{
		{name: "range overrun", data: good, start: 8, count: 16, width: 4, wantErr: dserrors.ErrRangeBounds},
		{name: "negative start", data: good, start: -1, count: 4, width: 4, wantErr: dserrors.ErrRangeBounds},
		{name: "negative count", data: good, start: 0, count: -4, width: 4, wantErr: dserrors.ErrRangeBounds},
		{name: "zero width", data: good, start: 0, count: 16, width: 0, wantErr: dserrors.ErrBadCounterWidth},
		{name: "width too wide", data: good, start: 0, count: 16, width: 33, wantErr: dserrors.ErrBadCounterWidth},
		{name: "short payload", data: good[:len(good)-1], start: 0, count: 16, width: 4, wantErr: dserrors.ErrShortPayload},
		{name: "trailing bytes", data: append(append([]byte(nil), good...), 0xFF), start: 0, count: 16, width: 4, wantErr: dserrors.ErrTrailingBytes},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dst := mustNew(t, 16, WithHashCount(3))
			pristine := dst.Clone()
			err := dst.ReadSlice(tc.data, tc.start, tc.count, tc.width)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ReadSlice error = %v, want %v", err, tc.wantErr)
			}
			if !bucketsEqual(dst, pristine) {
				t.Fatal("rejected ReadSlice mutated the sketch")
			}
		})
	}
}

func TestWriteSliceRejectsBadRange(t *testing.T) {
	s := mustNew(t, 8)
	if _, err := s.WriteSlice(4, 8, 4); !errors.Is(err, dserrors.ErrRangeBounds) {
		t.Fatalf("WriteSlice overrun error = %v, want ErrRangeBounds", err)
	}
	if _, err := s.PackCounters(0, 8, 0); !errors.Is(err, dserrors.ErrBadCounterWidth) {
		t.Fatalf("PackCounters width 0 error = %v, want ErrBadCounterWidth", err)
	}
}
