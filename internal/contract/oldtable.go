package contract

import (
	"sync"
)

// ThreadID identifies an executing thread. Scopes of different threads on
// the same receiver never mix.
type ThreadID uint64

// InstanceKey names a captured receiver entry.
func InstanceKey(name string) string { return "instance:" + name }

// FieldKey names a captured static state entry.
func FieldKey(name string) string { return "field:" + name }

// OldTable holds the entry-state snapshots of one receiver (or one class,
// for static methods): per thread, a stack of scopes, one per active
// contracted invocation.
type OldTable struct {
	mu     sync.Mutex
	stacks map[ThreadID][]map[string]any
}

func NewOldTable() *OldTable {
	return &OldTable{stacks: make(map[ThreadID][]map[string]any)}
}

// Enter pushes a fresh scope for tid.
func (t *OldTable) Enter(tid ThreadID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stacks[tid] = append(t.stacks[tid], make(map[string]any))
}

// Put records v under key in the innermost scope of tid.
func (t *OldTable) Put(tid ThreadID, key string, v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.stacks[tid]
	if len(st) == 0 {
		return Internalf("values table has no open scope for key %s", key)
	}
	st[len(st)-1][key] = v
	return nil
}

// Get reads key from the innermost scope of tid only; outer scopes belong
// to other invocations and are never consulted.
func (t *OldTable) Get(tid ThreadID, key string) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.stacks[tid]
	if len(st) > 0 {
		if v, ok := st[len(st)-1][key]; ok {
			return v, nil
		}
	}
	return nil, Internalf("values table does not contain key %s", key)
}

// Leave pops the innermost scope of tid.
func (t *OldTable) Leave(tid ThreadID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.stacks[tid]
	if len(st) == 0 {
		return Internalf("values table scope stack underflow")
	}
	st[len(st)-1] = nil
	if len(st) == 1 {
		delete(t.stacks, tid)
		return nil
	}
	t.stacks[tid] = st[:len(st)-1]
	return nil
}

// Depth returns the number of open scopes of tid.
func (t *OldTable) Depth(tid ThreadID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stacks[tid])
}
