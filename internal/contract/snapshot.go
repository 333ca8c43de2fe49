package contract

// Snapshotter is implemented by mutable runtime values that old() must
// copy. Snapshot returns a deep copy, consulting m for values already copied
// so shared references stay shared and cycles terminate.
type Snapshotter interface {
	Snapshot(m *Memo) any
}

// Memo maps originals to their copies during one deep copy.
type Memo struct {
	copies map[any]any
}

func NewMemo() *Memo {
	return &Memo{copies: make(map[any]any)}
}

// Lookup returns the copy made for orig, if any.
func (m *Memo) Lookup(orig any) (any, bool) {
	cp, ok := m.copies[orig]
	return cp, ok
}

// Remember records cp as the copy of orig. Callers register the copy
// before descending into children.
func (m *Memo) Remember(orig, cp any) {
	m.copies[orig] = cp
}

// Copy deep-copies v. Values that are not Snapshotters are immutable and
// returned as is.
func Copy(v any, m *Memo) any {
	s, ok := v.(Snapshotter)
	if !ok {
		return v
	}
	if cp, seen := m.Lookup(v); seen {
		return cp
	}
	return s.Snapshot(m)
}

// Snapshot deep-copies v with a fresh memo.
func Snapshot(v any) any {
	return Copy(v, NewMemo())
}
