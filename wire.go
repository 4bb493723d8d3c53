package diffsketch

import (
	"encoding/binary"

	dserrors "github.com/tamirms/diffsketch/errors"
	"github.com/tamirms/diffsketch/internal/bitio"
)

// Wire record for the bucket range [start, start+count):
//
//	repeat(count):  keySum      (8 bytes, big-endian)
//	repeat(count):  keyHashSum  (4 bytes, big-endian)
//	packed counters: ceil(count*width/8) bytes, MSB-first bit order
//
// Key sums and key-hash sums are effectively random, so bit-packing them
// saves nothing; counters concentrate near zero and are packed to width
// bits each. start, count and width travel in the enclosing protocol
// message, not in this payload.

// maxCounterWidth bounds the counter bit width to the counter field itself.
const maxCounterWidth = 32

// SliceLen returns the exact encoded size in bytes of a wire record holding
// count buckets at the given counter bit width.
func SliceLen(count, width int) int {
	return count*(KeyWidth+KeyHashWidth) + packedLen(count, width)
}

func packedLen(count, width int) int {
	return (count*width + 7) / 8
}

func (s *Sketch) checkRange(start, count int) error {
	if start < 0 || count < 0 || start+count > len(s.buckets) {
		return dserrors.ErrRangeBounds
	}
	return nil
}

func checkWidth(width int) error {
	if width < 1 || width > maxCounterWidth {
		return dserrors.ErrBadCounterWidth
	}
	return nil
}

// PackCounters encodes the counts of buckets [start, start+count) into a
// bit stream, width bits per counter. Each counter is the low width bits of
// its two's-complement value; counters straddle byte boundaries freely and
// the stream is zero-padded to a whole byte only at the end.
//
// A width below the sketch's MaxCounterBits truncates high bits and does
// not round-trip; senders obtain a lossless width from MaxCounterBits.
func (s *Sketch) PackCounters(start, count, width int) ([]byte, error) {
	if err := s.checkRange(start, count); err != nil {
		return nil, err
	}
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	w := bitio.NewWriter(packedLen(count, width))
	for i := start; i < start+count; i++ {
		w.WriteBits(uint64(uint32(s.buckets[i].count)), width)
	}
	return w.Bytes(), nil
}

// UnpackCounters decodes data produced by PackCounters back into the counts
// of buckets [start, start+count), sign-extending each width-bit value. The
// data length must match the declared range exactly; nothing is written on
// error.
func (s *Sketch) UnpackCounters(data []byte, start, count, width int) error {
	if err := s.checkRange(start, count); err != nil {
		return err
	}
	if err := checkWidth(width); err != nil {
		return err
	}
	if len(data) < packedLen(count, width) {
		return dserrors.ErrShortPayload
	}
	if len(data) > packedLen(count, width) {
		return dserrors.ErrTrailingBytes
	}
	r := bitio.NewReader(data)
	for i := start; i < start+count; i++ {
		s.buckets[i].count = signExtend(r.ReadBits(width), width)
	}
	return nil
}

func signExtend(v uint64, width int) int32 {
	if v&(1<<(width-1)) != 0 {
		v |= ^uint64(0) << width
	}
	return int32(int64(v))
}

// WriteSlice encodes buckets [start, start+count) as a wire record with the
// given counter bit width.
func (s *Sketch) WriteSlice(start, count, width int) ([]byte, error) {
	if err := s.checkRange(start, count); err != nil {
		return nil, err
	}
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, SliceLen(count, width))
	for i := start; i < start+count; i++ {
		buf = binary.BigEndian.AppendUint64(buf, uint64(s.buckets[i].keySum))
	}
	for i := start; i < start+count; i++ {
		buf = binary.BigEndian.AppendUint32(buf, uint32(s.buckets[i].keyHashSum))
	}
	packed, err := s.PackCounters(start, count, width)
	if err != nil {
		return nil, err
	}
	return append(buf, packed...), nil
}

// ReadSlice decodes a wire record into buckets [start, start+count) of an
// already-allocated sketch of the correct total size. The payload length
// must match SliceLen(count, width) exactly. The sketch is not mutated on
// any error.
func (s *Sketch) ReadSlice(data []byte, start, count, width int) error {
	if err := s.checkRange(start, count); err != nil {
		return err
	}
	if err := checkWidth(width); err != nil {
		return err
	}
	if len(data) < SliceLen(count, width) {
		return dserrors.ErrShortPayload
	}
	if len(data) > SliceLen(count, width) {
		return dserrors.ErrTrailingBytes
	}

	keys := data[:count*KeyWidth]
	hashes := data[count*KeyWidth : count*(KeyWidth+KeyHashWidth)]
	packed := data[count*(KeyWidth+KeyHashWidth):]

	for i := 0; i < count; i++ {
		s.buckets[start+i].keySum = Key(binary.BigEndian.Uint64(keys[i*KeyWidth:]))
		s.buckets[start+i].keyHashSum = KeyHash(binary.BigEndian.Uint32(hashes[i*KeyHashWidth:]))
	}
	return s.UnpackCounters(packed, start, count, width)
}
