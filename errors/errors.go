// Package errors defines all exported error sentinels for the diffsketch
// library.
//
// This is the single source of truth for error values. Both the top-level
// diffsketch package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Construction errors
var (
	ErrZeroSize     = errors.New("diffsketch: sketch size must be positive")
	ErrBadHashCount = errors.New("diffsketch: hash count must be between 1 and the sketch size")
)

// Combination errors
var (
	ErrShapeMismatch = errors.New("diffsketch: sketches differ in size or hash count")
)

// Wire codec errors
var (
	ErrRangeBounds     = errors.New("diffsketch: bucket range exceeds sketch size")
	ErrBadCounterWidth = errors.New("diffsketch: counter bit width must be between 1 and 32")
	ErrShortPayload    = errors.New("diffsketch: payload is shorter than the declared bucket range")
	ErrTrailingBytes   = errors.New("diffsketch: payload has bytes beyond the declared bucket range")
)

// Sketch file errors
var (
	ErrBadMagic      = errors.New("diffsketch: invalid magic number")
	ErrBadVersion    = errors.New("diffsketch: unsupported format version")
	ErrTruncatedFile = errors.New("diffsketch: sketch file is truncated")
)
