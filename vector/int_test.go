package vector

import (
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	tp "github.com/xlab/treeprint"
)

func TestRefCounting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	v := New[int](SmallSize[int](2))
	for i := 0; i < 3; i++ {
		if err := v.Push(i); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
	if v.buf == nil || v.buf.refs != 1 {
		t.Fatalf("expected a fresh dynamic buffer with 1 reference, have %v", v.buf)
	}
	a, err := v.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	b, err := v.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	if v.buf.refs != 3 {
		t.Errorf("expected 3 references after two clones, have %d", v.buf.refs)
	}
	a.Release()
	if v.buf.refs != 2 {
		t.Errorf("expected 2 references after a release, have %d", v.buf.refs)
	}
	if err := b.CopyFrom(New[int](SmallSize[int](2))); err != nil { // reassigning away releases, too
		t.Fatalf("copy failed: %v", err)
	}
	if v.buf.refs != 1 {
		t.Errorf("expected 1 reference after reassignment, have %d", v.buf.refs)
	}
}

func TestGrowthDoubling(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	v := New[int](SmallSize[int](4))
	caps := []int{}
	last := 0
	for i := 0; i < 20; i++ {
		if err := v.Push(i); err != nil {
			t.Fatalf("push failed: %v", err)
		}
		if v.Cap() != last {
			caps = append(caps, v.Cap())
			last = v.Cap()
		}
	}
	expected := []int{4, 8, 16, 32}
	if len(caps) != len(expected) {
		t.Fatalf("expected capacity steps %v, have %v", expected, caps)
	}
	for i, c := range expected {
		if caps[i] != c {
			t.Errorf("expected capacity step %d to be %d, is %d", i, c, caps[i])
		}
	}
}

func TestUnsharePreservesCapacity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	v := New[int](SmallSize[int](4))
	for i := 0; i < 5; i++ {
		if err := v.Push(i); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
	if err := v.Reserve(16); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	w, err := v.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	if _, err := w.MutableSlice(); err != nil {
		t.Fatalf("unshare failed: %v", err)
	}
	if w.Cap() != 16 {
		t.Errorf("expected unshare to keep capacity 16, has %d", w.Cap())
	}
	if w.buf == v.buf {
		t.Error("expected w to own a private buffer after unshare, doesn't")
	}
	if v.buf.refs != 1 || w.buf.refs != 1 {
		t.Errorf("expected both buffers to have 1 reference, have %d and %d", v.buf.refs, w.buf.refs)
	}
}

func TestReserveDemotesSharedToInline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	v := New[int](SmallSize[int](4))
	for i := 0; i < 5; i++ {
		if err := v.Push(i); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
	if err := v.EraseRange(2, 5); err != nil { // 2 elements left in a shared-capable buffer
		t.Fatalf("erase failed: %v", err)
	}
	w, err := v.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	if err := w.Reserve(3); err != nil { // fits inline, w is a sharer
		t.Fatalf("reserve failed: %v", err)
	}
	if w.buf != nil {
		t.Error("expected Reserve to demote the sharing vector to inline storage, didn't")
	}
	if v.buf.refs != 1 {
		t.Errorf("expected v to own its buffer exclusively again, refs=%d", v.buf.refs)
	}
	t.Logf(printVec(w))
}

func TestPrintVec(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	v := New[int](SmallSize[int](4))
	for i := 1; i <= 5; i++ {
		if err := v.Push(i); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
	w, err := v.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	_ = w
	t.Logf(printVec(v))
}

// --- Print storage -----------------------------------------------------------

func printVec[T any](v *Vector[T]) string {
	header := fmt.Sprintf("\nVector(len=%d, cap=%d)\n", v.Len(), v.Cap())
	printer := tp.New()
	if v.buf != nil {
		branch := printer.AddBranch(fmt.Sprintf("shared buffer, cap=%d, refs=%d", len(v.buf.data), v.buf.refs))
		for i := 0; i < v.size; i++ {
			branch.AddNode(fmt.Sprintf("%v", v.buf.data[i]))
		}
	} else {
		branch := printer.AddBranch(fmt.Sprintf("inline, cap=%d", v.smallCap))
		for i := 0; i < v.size; i++ {
			branch.AddNode(fmt.Sprintf("%v", v.small[i]))
		}
	}
	return header + printer.String() + "\n"
}
