// Package bitio provides an MSB-first bit writer and reader.
//
// Values are written most-significant-bit first within each byte, the bit
// order used on the wire for packed counters. A value may straddle byte
// boundaries; the stream is byte-aligned only when the writer is flushed.
package bitio

// Writer accumulates values of arbitrary bit width into a byte stream.
type Writer struct {
	buf     []byte
	current uint64
	bitPos  int // bits occupied in current, from the MSB down
}

// NewWriter returns a Writer with capacity for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{
		buf: make([]byte, 0, sizeHint),
	}
}

func (w *Writer) flushWord() {
	for i := 0; i < 8; i++ {
		w.buf = append(w.buf, byte(w.current>>(56-8*i)))
	}
	w.current = 0
	w.bitPos = 0
}

// WriteBits appends the low n bits of v, most significant first.
// n must be in [0, 64].
func (w *Writer) WriteBits(v uint64, n int) {
	if n == 0 {
		return
	}
	if n < 64 {
		v &= (uint64(1) << n) - 1
	}

	if w.bitPos+n <= 64 {
		w.current |= v << (64 - w.bitPos - n)
		w.bitPos += n
		if w.bitPos == 64 {
			w.flushWord()
		}
		return
	}

	high := 64 - w.bitPos
	w.current |= v >> (n - high)
	w.flushWord()

	rest := n - high
	w.current = v << (64 - rest)
	w.bitPos = rest
}

// Bytes appends any partial trailing byte (zero-padded in its low bits) and
// returns the accumulated stream. The Writer must not be reused afterwards.
func (w *Writer) Bytes() []byte {
	for w.bitPos > 0 {
		w.buf = append(w.buf, byte(w.current>>56))
		w.current <<= 8
		w.bitPos -= 8
	}
	w.bitPos = 0
	return w.buf
}

// BitsWritten reports the number of bits appended so far.
func (w *Writer) BitsWritten() int {
	return len(w.buf)*8 + w.bitPos
}

// Reader consumes an MSB-first bit stream.
type Reader struct {
	data   []byte
	bitPos int // absolute bit offset into data
}

// NewReader returns a Reader over data. The caller is responsible for
// checking Remaining before reads; ReadBits past the end returns zero bits.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBits consumes the next n bits and returns them in the low bits of the
// result. n must be in [0, 64]. Bits past the end of the stream read as zero.
func (r *Reader) ReadBits(n int) uint64 {
	var v uint64
	for n > 0 {
		byteIdx := r.bitPos >> 3
		if byteIdx >= len(r.data) {
			v <<= n
			r.bitPos += n
			return v
		}
		bitInByte := r.bitPos & 7
		avail := 8 - bitInByte
		take := n
		if take > avail {
			take = avail
		}
		chunk := uint64(r.data[byteIdx]>>(avail-take)) & ((1 << take) - 1)
		v = v<<take | chunk
		r.bitPos += take
		n -= take
	}
	return v
}

// Remaining reports the number of unread bits.
func (r *Reader) Remaining() int {
	rem := len(r.data)*8 - r.bitPos
	if rem < 0 {
		return 0
	}
	return rem
}
