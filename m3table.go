package m3table

import (
	"errors"
	"fmt"
)

const (
	// HeaderSize is the size of the entry count header.
	HeaderSize = 4
	// OffsetSize is the size of a single offset array entry.
	OffsetSize = 4
	// MaxEntries is the maximum number of slots in a table.
	MaxEntries = 1<<16 - 1
)

// Format errors.
var (
	ErrTruncated      = errors.New("m3table: table is truncated")
	ErrTooManyEntries = errors.New("m3table: too many entries")
	ErrSizeMismatch   = errors.New("m3table: declared size does not match table size")
	ErrBadRange       = errors.New("m3table: bad slot range")
	ErrNoSlot         = errors.New("m3table: no such slot")
)

// Encoding errors.
var (
	ErrTooLarge   = errors.New("m3table: table exceeds 4GiB")
	ErrEmptyEntry = errors.New("m3table: present slot has no data")
	ErrNoEntries  = errors.New("m3table: no numbered files found")
	ErrSequence   = errors.New("m3table: slot numbering is not contiguous")
)

var errClosed = errors.New("m3table: is closed")

// Slot is a single table entry.
type Slot struct {
	Index  int
	Offset uint32 // 0 for absent slots
	Data   []byte // nil for absent slots
}

// Present returns true if the slot carries data.
func (s Slot) Present() bool { return s.Offset != 0 }

// Size returns the payload size.
func (s Slot) Size() int { return len(s.Data) }

// --------------------------------------------------------------------

// SequenceError is returned when numbered files do not form the sequence
// 0..n-1. Found is the file seen at the position where Expected was due.
type SequenceError struct {
	Expected int
	Found    string
}

func (e *SequenceError) Error() string {
	if e.Expected == 0 {
		return fmt.Sprintf("m3table: while looking for file number 0, found file %q; is the file named '0' missing?", e.Found)
	}
	return fmt.Sprintf("m3table: while looking for file number %d, found file %q; do you have two files named '%d' (without the extension)? is the file named '%d' missing?",
		e.Expected, e.Found, e.Expected-1, e.Expected)
}

// Is makes SequenceError match ErrSequence.
func (e *SequenceError) Is(target error) bool { return target == ErrSequence }

// indexSize returns the size of the header plus the offset array.
func indexSize(numSlots int) int {
	return HeaderSize + (numSlots+1)*OffsetSize
}
