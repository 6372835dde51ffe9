package fiscalpanel

import (
	"sort"
)

// JoinKind selects how a source frame is combined into the running panel.
type JoinKind int

const (
	// JoinOuter keeps the union of keys from both sides.
	JoinOuter JoinKind = iota
	// JoinLeft keeps only the keys already present on the left side.
	JoinLeft
)

func (j JoinKind) String() string {
	if j == JoinLeft {
		return "left"
	}
	return "outer"
}

// Row is one observation: a key plus the cells for the frame's columns.
// Absent cells read as null.
type Row struct {
	Key   Key
	Cells map[string]Value
}

// Frame is a panel table: rows keyed by (country, year) with a fixed,
// ordered column set. The key columns are implicit and never appear in
// Columns(). A frame's rows are kept sorted by key; uniqueness of keys is
// asserted explicitly with CheckUnique rather than enforced on append, so
// that duplicate keys surface as a diagnostic instead of silently winning.
type Frame struct {
	name string
	cols []string
	rows []Row
}

func NewFrame(name string, cols ...string) *Frame {
	return &Frame{name: name, cols: append([]string(nil), cols...)}
}

func (f *Frame) Name() string      { return f.name }
func (f *Frame) Len() int          { return len(f.rows) }
func (f *Frame) Columns() []string { return append([]string(nil), f.cols...) }

func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.cols {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column; existing rows read as null for it.
func (f *Frame) AddColumn(name string) error {
	if f.HasColumn(name) {
		return ErrColumnCollision
	}
	f.cols = append(f.cols, name)
	return nil
}

// DropColumn removes a column and its cells. Unknown columns are a no-op.
func (f *Frame) DropColumn(name string) {
	for i, c := range f.cols {
		if c == name {
			f.cols = append(f.cols[:i], f.cols[i+1:]...)
			break
		}
	}
	for _, r := range f.rows {
		delete(r.Cells, name)
	}
}

func (f *Frame) AppendRow(key Key, cells map[string]Value) {
	if cells == nil {
		cells = make(map[string]Value)
	}
	f.rows = append(f.rows, Row{Key: key, Cells: cells})
}

// Rows returns the backing row slice. Callers iterate it; derivers mutate
// cells through it. The slice itself is owned by the frame.
func (f *Frame) Rows() []Row { return f.rows }

// Row returns the row for key, if present.
func (f *Frame) Row(key Key) (Row, bool) {
	for _, r := range f.rows {
		if r.Key == key {
			return r, true
		}
	}
	return Row{}, false
}

// Get reads one cell; the second result is false when the key is absent.
// A present key with an absent cell reads as null.
func (f *Frame) Get(key Key, col string) (Value, bool) {
	r, ok := f.Row(key)
	if !ok {
		return Null(), false
	}
	return r.Cells[col], true
}

// Set writes one cell. The column must exist; the key must have a row.
func (f *Frame) Set(key Key, col string, v Value) error {
	if !f.HasColumn(col) {
		return ErrUnknownColumn
	}
	for i := range f.rows {
		if f.rows[i].Key == key {
			f.rows[i].Cells[col] = v
			return nil
		}
	}
	return ErrKeyNotFound
}

// SortByKey orders rows by country ascending, then year ascending. Every
// transformation that walks a country's series in time order depends on
// this ordering.
func (f *Frame) SortByKey() {
	sort.SliceStable(f.rows, func(i, j int) bool {
		return f.rows[i].Key.Less(f.rows[j].Key)
	})
}

// CheckUnique verifies that no key appears twice. On violation it returns a
// *DuplicateKeyError naming every duplicated key and the row indices it
// occupies, so a bad join is diagnosable from the error alone.
func (f *Frame) CheckUnique(op string) error {
	seen := make(map[Key][]int, len(f.rows))
	for i, r := range f.rows {
		seen[r.Key] = append(seen[r.Key], i)
	}
	var dups []DuplicateKey
	for k, idx := range seen {
		if len(idx) > 1 {
			dups = append(dups, DuplicateKey{Key: k, Rows: idx})
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].Key.Less(dups[j].Key) })
	return &DuplicateKeyError{Frame: f.name, Op: op, Dups: dups}
}

// Filter keeps only rows for which keep returns true.
func (f *Frame) Filter(keep func(Row) bool) {
	out := f.rows[:0]
	for _, r := range f.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	f.rows = out
}

// Countries returns the distinct country codes present, sorted.
func (f *Frame) Countries() []string {
	set := make(map[string]struct{})
	for _, r := range f.rows {
		set[r.Key.Country] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Join combines two frames on the observation key. The result's columns are
// the left columns followed by the right columns; a shared column name is an
// error, since silently preferring one side is how panel merges go wrong.
// Inputs with unique keys produce a unique-keyed result; the merge stage
// still asserts this after every join.
func (f *Frame) Join(other *Frame, kind JoinKind) (*Frame, error) {
	for _, c := range other.cols {
		if f.HasColumn(c) {
			return nil, &JoinError{Left: f.name, Right: other.name, Column: c, Err: ErrColumnCollision}
		}
	}

	cols := make([]string, 0, len(f.cols)+len(other.cols))
	cols = append(cols, f.cols...)
	cols = append(cols, other.cols...)
	out := NewFrame(f.name, cols...)

	rightByKey := make(map[Key]Row, len(other.rows))
	for _, r := range other.rows {
		rightByKey[r.Key] = r
	}

	matched := make(map[Key]bool, len(other.rows))
	for _, lr := range f.rows {
		cells := make(map[string]Value, len(lr.Cells))
		for c, v := range lr.Cells {
			cells[c] = v
		}
		if rr, ok := rightByKey[lr.Key]; ok {
			matched[lr.Key] = true
			for c, v := range rr.Cells {
				cells[c] = v
			}
		}
		out.AppendRow(lr.Key, cells)
	}

	if kind == JoinOuter {
		for _, rr := range other.rows {
			if matched[rr.Key] {
				continue
			}
			cells := make(map[string]Value, len(rr.Cells))
			for c, v := range rr.Cells {
				cells[c] = v
			}
			out.AppendRow(rr.Key, cells)
		}
	}

	out.SortByKey()
	return out, nil
}
