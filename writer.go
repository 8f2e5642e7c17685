package m3table

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer instances can write a table.
//
// Slots are buffered in memory and the complete table is written to the
// underlying writer with a single call on Close.
type Writer struct {
	w io.Writer

	offs []int64 // payload-relative offsets, -1 for absent slots
	buf  []byte  // payload buffer

	closed bool
}

// NewWriter wraps a writer and returns a Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// NumSlots returns the number of slots appended so far.
func (w *Writer) NumSlots() int { return len(w.offs) }

// Append appends a present slot. The data is copied.
func (w *Writer) Append(data []byte) error {
	if err := w.grow(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: slot %d", ErrEmptyEntry, len(w.offs))
	}
	if _, err := checkSize(len(w.offs)+1, uint64(len(w.buf))+uint64(len(data))); err != nil {
		return fmt.Errorf("slot %d of %d bytes: %w", len(w.offs), len(data), err)
	}

	w.offs = append(w.offs, int64(len(w.buf)))
	w.buf = append(w.buf, data...)
	return nil
}

// AppendAbsent appends an absent slot.
func (w *Writer) AppendAbsent() error {
	if err := w.grow(); err != nil {
		return err
	}

	w.offs = append(w.offs, -1)
	return nil
}

// Close lays out the table and writes it.
func (w *Writer) Close() error {
	if w.closed {
		return errClosed
	}
	w.closed = true

	table, err := w.build()
	if err != nil {
		return err
	}
	_, err = w.w.Write(table)
	return err
}

func (w *Writer) grow() error {
	if w.closed {
		return errClosed
	}
	if len(w.offs) >= MaxEntries {
		return fmt.Errorf("%w: maximum is %d", ErrTooManyEntries, MaxEntries)
	}
	return nil
}

func (w *Writer) build() ([]byte, error) {
	base := indexSize(len(w.offs))
	size, err := checkSize(len(w.offs), uint64(len(w.buf)))
	if err != nil {
		return nil, err
	}

	table := make([]byte, base, int(size))
	binary.LittleEndian.PutUint32(table, uint32(len(w.offs)))

	pos := HeaderSize
	for _, o := range w.offs {
		if o >= 0 {
			binary.LittleEndian.PutUint32(table[pos:], uint32(int64(base)+o))
		}
		pos += OffsetSize
	}
	binary.LittleEndian.PutUint32(table[pos:], size)

	return append(table, w.buf...), nil
}

// checkSize returns the size of a table with numSlots slots and payload
// bytes of data, or ErrTooLarge if 32-bit offsets cannot address it.
func checkSize(numSlots int, payload uint64) (uint32, error) {
	size := uint64(indexSize(numSlots)) + payload
	if size > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	return uint32(size), nil
}

// --------------------------------------------------------------------

// Encode builds a table in memory. Nil payloads are written as absent
// slots.
func Encode(payloads [][]byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := NewWriter(buf)

	for _, p := range payloads {
		var err error
		if p == nil {
			err = w.AppendAbsent()
		} else {
			err = w.Append(p)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
