package diffsketch

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	dserrors "github.com/tamirms/diffsketch/errors"
)

const (
	// magic number for sketch files: "DSKT" read as a big-endian uint32,
	// stored little-endian in the header
	fileMagic = uint32(0x44534B54)

	// fileVersion is the current file format version
	fileVersion = uint16(0x0001)

	// fileHeaderSize is the exact size of the serialized file header.
	//
	//	Offset  Size  Field
	//	0       4     Magic         0x44534B54 ("DSKT")
	//	4       2     Version       0x0001
	//	6       8     Size          uint64_le (bucket count)
	//	14      2     HashCount     uint16_le
	//	16      1     CounterWidth  uint8
	//	17      15    Reserved      [15]byte (zero)
	fileHeaderSize = 32
)

// Save writes the whole sketch to path: a small header followed by the
// full-range wire record at this sketch's minimal counter width. The file
// identifies shape and width; the hasher is not serialized and must be
// supplied again at Load.
func (s *Sketch) Save(path string) error {
	width := s.MaxCounterBits()
	record, err := s.WriteSlice(0, len(s.buckets), width)
	if err != nil {
		return err
	}

	buf := make([]byte, fileHeaderSize, fileHeaderSize+len(record))
	binary.LittleEndian.PutUint32(buf[0:4], fileMagic)
	binary.LittleEndian.PutUint16(buf[4:6], fileVersion)
	binary.LittleEndian.PutUint64(buf[6:14], uint64(len(s.buckets)))
	binary.LittleEndian.PutUint16(buf[14:16], uint16(s.hashNum))
	buf[16] = uint8(width)
	buf = append(buf, record...)

	return os.WriteFile(path, buf, 0o644)
}

// Load reads a sketch saved with Save. The file carries size, hash count
// and counter width; opts supply everything the file cannot, typically the
// Hasher the sketch was built with. A WithHashCount option is overridden by
// the file's recorded value.
func Load(path string, opts ...Option) (*Sketch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() < fileHeaderSize {
		return nil, dserrors.ErrTruncatedFile
	}

	// Hint sequential access: the whole file is consumed front to back.
	fadviseSequential(int(f.Fd()), 0, st.Size())

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap sketch file: %w", err)
	}
	defer mm.Unmap()

	if binary.LittleEndian.Uint32(mm[0:4]) != fileMagic {
		return nil, dserrors.ErrBadMagic
	}
	if binary.LittleEndian.Uint16(mm[4:6]) != fileVersion {
		return nil, dserrors.ErrBadVersion
	}
	size := binary.LittleEndian.Uint64(mm[6:14])
	hashNum := int(binary.LittleEndian.Uint16(mm[14:16]))
	width := int(mm[16])

	if size == 0 || size > uint64(1)<<32 {
		return nil, dserrors.ErrZeroSize
	}
	if int64(fileHeaderSize+SliceLen(int(size), width)) > st.Size() {
		return nil, dserrors.ErrTruncatedFile
	}

	s, err := New(int(size), append(opts[:len(opts):len(opts)], WithHashCount(hashNum))...)
	if err != nil {
		return nil, err
	}
	if err := s.ReadSlice(mm[fileHeaderSize:fileHeaderSize+SliceLen(int(size), width)], 0, int(size), width); err != nil {
		return nil, err
	}
	return s, nil
}
