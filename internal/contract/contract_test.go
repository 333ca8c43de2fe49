package contract

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func holds(v bool) func() (bool, error) {
	return func() (bool, error) { return v, nil }
}

func TestCheckPassesWhenAllHold(t *testing.T) {
	err := Check(Precondition, []Evaluation{
		{Description: "a", Holds: holds(true)},
		{Description: "!b", Negated: true, Holds: holds(false)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckNegationPolarity(t *testing.T) {
	err := Check(Postcondition, []Evaluation{
		{Description: "!isEmpty", Negated: true, Holds: holds(true)},
	})
	if !errors.Is(err, ErrPostcondition) {
		t.Fatalf("expected postcondition violation, got %v", err)
	}
}

func TestCheckConcatenatesFailures(t *testing.T) {
	vals := func() ([]Binding, error) {
		return []Binding{{Label: ThisLabel, Value: "Stack{size=1}"}, {Label: "x", Value: "3"}}, nil
	}
	err := Check(Invariant, []Evaluation{
		{Description: "first", Holds: holds(false), Values: vals},
		{Description: "second", Holds: holds(true)},
		{Description: "third", Holds: holds(false)},
	})
	var v *ConditionViolation
	if !errors.As(err, &v) {
		t.Fatalf("expected *ConditionViolation, got %T", err)
	}
	if v.Kind != Invariant {
		t.Fatalf("kind: %s", v.Kind)
	}
	want := "first [this=Stack{size=1}, x=3]; third"
	if v.Message != want {
		t.Fatalf("message:\n got: %s\nwant: %s", v.Message, want)
	}
	if errors.Is(err, ErrPrecondition) || !errors.Is(err, ErrInvariant) {
		t.Fatalf("sentinel matching is wrong")
	}
}

func TestCheckPropagatesEvaluationErrors(t *testing.T) {
	boom := errors.New("boom")
	err := Check(Precondition, []Evaluation{
		{Description: "a", Holds: func() (bool, error) { return false, boom }},
		{Description: "b", Holds: holds(false)},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the clause error unchanged, got %v", err)
	}
	var v *ConditionViolation
	if errors.As(err, &v) {
		t.Fatalf("evaluation error must not become a violation")
	}
}

func TestOldTableScopes(t *testing.T) {
	tab := NewOldTable()
	const tid ThreadID = 1
	key := InstanceKey(ThisLabel)

	if _, err := tab.Get(tid, key); err == nil {
		t.Fatalf("expected error without a scope")
	}

	tab.Enter(tid)
	if err := tab.Put(tid, key, "outer"); err != nil {
		t.Fatal(err)
	}
	tab.Enter(tid) // recursive call without capture, e.g. a pure method
	_, err := tab.Get(tid, key)
	var ie *InternalError
	if !errors.As(err, &ie) || !strings.Contains(ie.Msg, "values table does not contain key instance:this") {
		t.Fatalf("expected missing-key internal error, got %v", err)
	}
	if err := tab.Leave(tid); err != nil {
		t.Fatal(err)
	}
	v, err := tab.Get(tid, key)
	if err != nil || v != "outer" {
		t.Fatalf("outer scope must be restored, got %v, %v", v, err)
	}
	if err := tab.Leave(tid); err != nil {
		t.Fatal(err)
	}
	if err := tab.Leave(tid); err == nil {
		t.Fatalf("expected underflow error")
	}
}

func TestOldTableThreadsAreIsolated(t *testing.T) {
	tab := NewOldTable()
	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(tid ThreadID) {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				tab.Enter(tid)
				if err := tab.Put(tid, "k", tid); err != nil {
					t.Error(err)
					return
				}
				v, err := tab.Get(tid, "k")
				if err != nil || v != tid {
					t.Errorf("thread %d read %v (%v)", tid, v, err)
					return
				}
				if err := tab.Leave(tid); err != nil {
					t.Error(err)
					return
				}
			}
		}(ThreadID(i))
	}
	wg.Wait()
}

type node struct {
	val  int
	next *node
}

func (n *node) Snapshot(m *Memo) any {
	cp := &node{val: n.val}
	m.Remember(n, cp)
	if n.next != nil {
		cp.next = Copy(n.next, m).(*node)
	}
	return cp
}

func TestSnapshotPreservesCycles(t *testing.T) {
	a := &node{val: 1}
	b := &node{val: 2, next: a}
	a.next = b

	cp := Snapshot(a).(*node)
	if cp == a || cp.next == b {
		t.Fatalf("snapshot must not alias originals")
	}
	if cp.next.next != cp {
		t.Fatalf("cycle must be preserved in the copy")
	}
	a.val = 10
	if cp.val != 1 {
		t.Fatalf("copy changed with original")
	}
	if Snapshot(42) != 42 {
		t.Fatalf("immutable values are returned as is")
	}
}
