package m3table

import (
	"encoding/binary"
	"fmt"
)

// Reader instances decode slots from a table buffer.
type Reader struct {
	buf  []byte
	nums int // the number of slots
}

// NewReader validates the header and the sentinel of buf and returns a Reader.
// The buffer is retained and must not be modified while the reader is in use.
func NewReader(buf []byte) (*Reader, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncated, len(buf), HeaderSize)
	}

	n := binary.LittleEndian.Uint32(buf)
	if n > MaxEntries {
		return nil, fmt.Errorf("%w: header declares %d, maximum is %d", ErrTooManyEntries, n, MaxEntries)
	}

	nums := int(n)
	if need := indexSize(nums); len(buf) < need {
		return nil, fmt.Errorf("%w: %d bytes, offset array of %d slots needs %d", ErrTruncated, len(buf), nums, need)
	}

	r := &Reader{buf: buf, nums: nums}
	if size := r.offset(nums); uint64(size) != uint64(len(buf)) {
		return nil, fmt.Errorf("%w: declared %d, actual %d", ErrSizeMismatch, size, len(buf))
	}
	return r, nil
}

// NumSlots returns the number of slots.
func (r *Reader) NumSlots() int { return r.nums }

// Size returns the table size in bytes.
func (r *Reader) Size() int { return len(r.buf) }

// Slot decodes the n-th slot. The returned data is a sub-slice of the
// table buffer.
func (r *Reader) Slot(n int) (Slot, error) {
	if n < 0 || n >= r.nums {
		return Slot{}, fmt.Errorf("%w: %d not in [0, %d)", ErrNoSlot, n, r.nums)
	}

	start := r.offset(n)
	if start == 0 {
		return Slot{Index: n}, nil
	}

	end, err := r.endOf(n)
	if err != nil {
		return Slot{}, err
	}
	if end <= start {
		return Slot{}, fmt.Errorf("%w: slot %d ends at %d, before its start %d", ErrBadRange, n, end, start)
	}
	if uint64(end) > uint64(len(r.buf)) {
		return Slot{}, fmt.Errorf("%w: slot %d ends at %d, past table size %d", ErrBadRange, n, end, len(r.buf))
	}

	return Slot{Index: n, Offset: start, Data: r.buf[start:end]}, nil
}

// Slots decodes all slots in index order.
func (r *Reader) Slots() ([]Slot, error) {
	slots := make([]Slot, 0, r.nums)
	for i := 0; i < r.nums; i++ {
		s, err := r.Slot(i)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, nil
}

// endOf scans forward from slot n for the first non-zero offset. The scan
// stops at the sentinel, which is non-zero in every valid table.
func (r *Reader) endOf(n int) (uint32, error) {
	for i := n + 1; i <= r.nums; i++ {
		if off := r.offset(i); off != 0 {
			return off, nil
		}
	}
	return 0, fmt.Errorf("%w: no end offset for slot %d", ErrBadRange, n)
}

// The n-th value of the offset array, n == nums is the sentinel.
func (r *Reader) offset(n int) uint32 {
	pos := HeaderSize + n*OffsetSize
	return binary.LittleEndian.Uint32(r.buf[pos:])
}
