package m3table

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	presentExt = ".bin"
	absentExt  = ".ignore"
)

// DirSlot maps a slot index to the file holding it.
type DirSlot struct {
	Index int
	Path  string
}

// Absent returns true for ".ignore" placeholder files.
func (s DirSlot) Absent() bool { return filepath.Ext(s.Path) == absentExt }

// SlotFileName returns the file name used for a slot in an unpacked table.
func SlotFileName(s Slot) string {
	if s.Present() {
		return strconv.Itoa(s.Index) + presentExt
	}
	return strconv.Itoa(s.Index) + absentExt
}

// --------------------------------------------------------------------

// Unpack writes each slot of the table to a numbered file in dir. The
// directory is created if missing. The table is validated before anything
// is written, but a slot failing to decode mid-way leaves the files written
// so far in place.
func Unpack(table []byte, dir string) error {
	r, err := NewReader(table)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for i := 0; i < r.NumSlots(); i++ {
		s, err := r.Slot(i)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, SlotFileName(s)), s.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// UnpackFile reads the table at path and unpacks it into dir.
func UnpackFile(path, dir string) error {
	table, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Unpack(table, dir)
}

// --------------------------------------------------------------------

// ReadDirSlots lists the numbered files in dir, sorted by index, and
// verifies they form the sequence 0..n-1. Files without a numeric stem are
// ignored.
func ReadDirSlots(dir string) ([]DirSlot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var slots []DirSlot
	for _, ent := range entries {
		name := ent.Name()
		n, ok := parseIndex(strings.TrimSuffix(name, filepath.Ext(name)))
		if !ok {
			continue
		}
		slots = append(slots, DirSlot{Index: n, Path: filepath.Join(dir, name)})
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoEntries, dir)
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Index != slots[j].Index {
			return slots[i].Index < slots[j].Index
		}
		return slots[i].Path < slots[j].Path
	})

	for k, s := range slots {
		if s.Index != k {
			return nil, &SequenceError{Expected: k, Found: s.Path}
		}
	}
	return slots, nil
}

// parseIndex parses a file stem as a slot index. A single leading '+' is
// accepted.
func parseIndex(stem string) (int, bool) {
	n, err := strconv.ParseUint(strings.TrimPrefix(stem, "+"), 10, 16)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// Pack builds a table from the numbered files in dir.
func Pack(dir string) ([]byte, error) {
	slots, err := ReadDirSlots(dir)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	for _, s := range slots {
		if s.Absent() {
			if err := w.AppendAbsent(); err != nil {
				return nil, err
			}
			continue
		}

		data, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, err
		}
		if err := w.Append(data); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Path, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PackFile packs dir and writes the table to path.
func PackFile(dir, path string) error {
	table, err := Pack(dir)
	if err != nil {
		return err
	}
	return os.WriteFile(path, table, 0o644)
}
