package vector

import "fmt"

// sharedBuf is the heap block behind every vector that outgrew its inline
// storage. It is owned jointly by all vectors whose buf field points to it;
// refs counts exactly those owners. The capacity, len(data), is fixed for
// the life of the block.
//
// All owners of a buffer agree on the live prefix of its elements: sharing
// only ever happens through Clone/CopyFrom of a consistent vector, and every
// mutation unshares first.
type sharedBuf[T any] struct {
	refs int
	data []T
}

// release drops one reference. When the last one goes, the n live elements
// are handed to the drop hook.
func (b *sharedBuf[T]) release(n int, drop func(T)) {
	b.refs--
	assertThat(b.refs >= 0, "shared buffer released more often than referenced")
	if b.refs > 0 || drop == nil {
		return
	}
	for i := 0; i < n; i++ {
		drop(b.data[i])
	}
}

// --- Storage transitions -----------------------------------------------------

// exclusive is true iff v may mutate its elements in place: inline storage
// is never shared, and a dynamic buffer with a single reference has no other
// observers. This is the copy-on-write contract; no element behind a shared
// buffer is ever touched.
func (v *Vector[T]) exclusive() bool {
	return v.buf == nil || v.buf.refs == 1
}

// storage returns the backing slice of the current mode, without unsharing.
func (v *Vector[T]) storage() []T {
	if v.buf != nil {
		return v.buf.data
	}
	return v.small
}

// ensureSmall allocates the inline block on first use. It is retained for
// the life of the vector (or until a mode change) and never reallocated.
func (v *Vector[T]) ensureSmall() {
	if v.buf == nil && v.small == nil {
		v.small = make([]T, v.smallCap)
	}
}

// sameStorage is true iff both vectors present the same elements, i.e. they
// are the same vector or share one buffer. Self-assignment and self-swap are
// detected through it.
func (v *Vector[T]) sameStorage(other *Vector[T]) bool {
	if v == other {
		return true
	}
	return v.buf != nil && v.buf == other.buf
}

// alloc equips v with fresh empty storage of the given capacity and returns
// the backing slice: the inline block when the capacity fits, a heap buffer
// with a single reference otherwise.
func (v *Vector[T]) alloc(capacity int) []T {
	if capacity <= v.smallCap {
		v.small = make([]T, v.smallCap)
		return v.small
	}
	v.buf = &sharedBuf[T]{refs: 1, data: make([]T, capacity)}
	return v.buf.data
}

// replicate builds a private vector holding clones of src[0:n] at the given
// capacity. On a clone error the partially built copy is dropped and the
// receiver stays untouched, which is what every strong-guarantee operation
// relies on: build the candidate fully, commit afterwards.
func (v *Vector[T]) replicate(src []T, n, capacity int) (Vector[T], error) {
	rep := Vector[T]{props: v.props}
	dst := rep.alloc(capacity)
	for j := 0; j < n; j++ {
		c, err := v.clone(src[j])
		if err != nil {
			rep.releaseStorage()
			return Vector[T]{}, err
		}
		dst[j] = c
		rep.size = j + 1
	}
	return rep, nil
}

// replica is replicate over v's own elements.
func (v *Vector[T]) replica(n, capacity int) (Vector[T], error) {
	return v.replicate(v.storage(), n, capacity)
}

// commit replaces v's storage with a fully built replacement, releasing the
// old storage first (and dropping its elements if v held the last
// reference).
func (v *Vector[T]) commit(rep Vector[T]) {
	v.releaseStorage()
	v.small = rep.small
	v.buf = rep.buf
	v.size = rep.size
}

// releaseStorage gives up v's hold on its current elements: inline elements
// are dropped in place, a dynamic buffer loses one reference (its elements
// are dropped only when v held the last one). v is empty afterwards.
func (v *Vector[T]) releaseStorage() {
	if v.buf != nil {
		v.buf.release(v.size, v.drop)
		v.buf = nil
	} else {
		s := v.small
		for i := 0; i < v.size; i++ {
			v.dropElem(&s[i])
		}
	}
	v.size = 0
}

// dropElem hands the element to the drop hook and zeroes the slot, so that
// logically dead slots hold no references.
func (v *Vector[T]) dropElem(p *T) {
	if v.drop != nil {
		v.drop(*p)
	}
	var zero T
	*p = zero
}

// unshare materializes a private copy of the elements if the backing buffer
// is shared; nothing happens for inline or exclusively owned storage. The
// copy keeps the current capacity; demotion back to inline storage happens
// only through Reserve, ShrinkToFit or CopyFrom. Strong guarantee: if an
// element clone fails, the shared buffer stays valid and v is unchanged.
func (v *Vector[T]) unshare() error {
	if v.exclusive() {
		return nil
	}
	tracer().Debugf("unsharing a buffer with %d references", v.buf.refs)
	rep, err := v.replica(v.size, v.Cap())
	if err != nil {
		return err
	}
	v.commit(rep)
	return nil
}

// demote moves the elements of a dynamic vector back into inline storage.
// Callers must have checked that they fit.
func (v *Vector[T]) demote() error {
	assertThat(v.size <= v.smallCap, "demoting %d elements into %d inline slots", v.size, v.smallCap)
	tracer().Debugf("vector demotes to inline storage")
	rep, err := v.replica(v.size, v.smallCap)
	if err != nil {
		return err
	}
	v.commit(rep)
	return nil
}

// --- Helpers -------------------------------------------------------------------

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("vector: "+msg, msgargs...)
		panic(msg)
	}
}
