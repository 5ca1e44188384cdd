package vector

import (
	"fmt"
	"strings"

	"github.com/npillmayer/socow/maybe"
)

// Vector is a resizable sequence of elements of type T. Short sequences live
// in inline storage owned exclusively by the vector; sequences longer than
// the inline capacity live in a reference-counted heap buffer which clones
// of the vector share until one of them mutates (copy-on-write).
//
// Create vectors with New or Of and copy them with Clone or CopyFrom. A
// Vector must not be duplicated by plain struct assignment: like a
// bytes.Buffer it contains state which plain assignment would alias.
//
// Index arguments out of range make operations panic; this is not an error
// condition an application is expected to handle.
type Vector[T any] struct {
	props[T]
	size  int
	small []T           // inline storage; never shared, allocated on first use
	buf   *sharedBuf[T] // nil ⇔ inline mode
}

const defaultSmallSize = 8

// props is the per-vector configuration, set through options at creation time.
type props[T any] struct {
	smallCap int
	clone    func(T) (T, error)
	drop     func(T)
}

func (p props[T]) init() props[T] {
	if p.smallCap == 0 {
		p.smallCap = defaultSmallSize
	}
	if p.clone == nil {
		p.clone = func(x T) (T, error) { return x, nil }
	}
	return p
}

// New creates an empty vector. It starts out in inline mode and stays there
// until it grows past the inline capacity.
//
// Use it like this:
//
//	v := vector.New[int](vector.SmallSize[int](4))
//
func New[T any](opts ...Option[T]) *Vector[T] {
	v := &Vector[T]{}
	for _, option := range opts {
		v.props = option.config(v.props)
	}
	v.props = v.props.init()
	return v
}

// Of creates a vector holding the given values, with default configuration.
func Of[T any](values ...T) *Vector[T] {
	v := New[T]()
	for _, x := range values {
		if err := v.Push(x); err != nil {
			panic(err) // the default clone hook cannot fail
		}
	}
	return v
}

// Option is a type to help initializing vectors at creation time.
type Option[T any] struct {
	config func(props[T]) props[T]
}

// SmallSize is an option to set the inline capacity N of a vector. Sequences
// of up to N elements are stored without a heap buffer of their own and are
// never shared. Default is 8; values below 1 are clamped to 1.
func SmallSize[T any](n int) Option[T] {
	conf := func(p props[T]) props[T] {
		if n < 1 {
			n = 1
		}
		p.smallCap = n
		return p
	}
	return Option[T]{config: conf}
}

// CloneWith is an option to set the element copy hook. Every element that
// enters the vector, and every element copied during unsharing or
// relocation, passes through it. A clone is allowed to fail; the failed
// operation then returns the error and leaves the vector unchanged (except
// for the documented weak branch of CopyFrom).
//
// The default clone is a plain value copy, which never fails.
func CloneWith[T any](clone func(T) (T, error)) Option[T] {
	conf := func(p props[T]) props[T] {
		p.clone = clone
		return p
	}
	return Option[T]{config: conf}
}

// DropWith is an option to set the element destructor hook. It runs exactly
// once for every element the vector logically destroys: on erase, pop,
// clear, overwrite, and when the last reference to a shared buffer goes
// away. A drop hook must not fail.
func DropWith[T any](drop func(T)) Option[T] {
	conf := func(p props[T]) props[T] {
		p.drop = drop
		return p
	}
	return Option[T]{config: conf}
}

// --- Queries -----------------------------------------------------------------

// Len returns the number of elements.
func (v *Vector[T]) Len() int {
	return v.size
}

// Empty returns true iff the vector holds no elements.
func (v *Vector[T]) Empty() bool {
	return v.size == 0
}

// Cap returns the capacity of the current storage: the inline capacity N in
// inline mode, the fixed capacity of the backing buffer in dynamic mode.
// Cap() ≥ N holds for every reachable state.
func (v *Vector[T]) Cap() int {
	if v.buf != nil {
		return len(v.buf.data)
	}
	v.props = v.props.init()
	return v.smallCap
}

// Get returns the element at index i. Get never unshares.
func (v *Vector[T]) Get(i int) T {
	assertThat(i >= 0 && i < v.size, "vector index out of bounds: %d with length %d", i, v.size)
	return v.storage()[i]
}

// First returns the first element, or Nothing for an empty vector.
func (v *Vector[T]) First() maybe.Maybe[T] {
	if v.size == 0 {
		return maybe.Nothing[T]()
	}
	return maybe.Just(v.storage()[0])
}

// Last returns the last element, or Nothing for an empty vector.
func (v *Vector[T]) Last() maybe.Maybe[T] {
	if v.size == 0 {
		return maybe.Nothing[T]()
	}
	return maybe.Just(v.storage()[v.size-1])
}

// Slice returns the elements as a slice backed by the vector's current
// storage, without unsharing. The caller must treat it as read-only: writes
// through it would be visible to every vector sharing the buffer. Any
// mutating operation invalidates the slice.
func (v *Vector[T]) Slice() []T {
	return v.storage()[:v.size:v.size]
}

// MutableSlice returns the elements as a writable slice, running the unshare
// protocol first, so that writes through the slice stay private to v. Any
// mutating operation invalidates the slice.
func (v *Vector[T]) MutableSlice() ([]T, error) {
	v.props = v.props.init()
	if err := v.unshare(); err != nil {
		return nil, err
	}
	return v.storage()[:v.size:v.size], nil
}

// --- Mutators ----------------------------------------------------------------

// Set replaces the element at index i with a clone of value, dropping the
// old element. The vector is unchanged if the clone fails.
func (v *Vector[T]) Set(i int, value T) error {
	assertThat(i >= 0 && i < v.size, "vector index out of bounds: %d with length %d", i, v.size)
	v.props = v.props.init()
	if err := v.unshare(); err != nil {
		return err
	}
	c, err := v.clone(value)
	if err != nil {
		return err
	}
	s := v.storage()
	v.dropElem(&s[i])
	s[i] = c
	return nil
}

// Push appends a clone of value. Appending is amortized O(1): when the
// vector runs out of capacity it doubles, with 2·N being the capacity of the
// first heap buffer.
func (v *Vector[T]) Push(value T) error {
	return v.Insert(v.size, value)
}

// Pop removes the last element. On exclusively owned storage the element is
// simply dropped; on a shared buffer the vector builds a private copy one
// element shorter, since other owners still see the element.
func (v *Vector[T]) Pop() error {
	assertThat(v.size > 0, "attempt to remove item from empty vector")
	v.props = v.props.init()
	if v.exclusive() {
		s := v.storage()
		v.size--
		v.dropElem(&s[v.size])
		return nil
	}
	rep, err := v.replica(v.size-1, v.Cap())
	if err != nil {
		return err
	}
	v.commit(rep)
	return nil
}

// Insert inserts a clone of value in front of position i; i == Len()
// appends. With exclusively owned spare capacity the new element is placed
// at the end and rotated into position by swaps, so the shifted elements are
// never re-cloned. Otherwise the vector builds replacement storage (doubled
// in capacity if it was full) and commits it only after every element made
// it over; a failed clone leaves the vector unchanged.
func (v *Vector[T]) Insert(i int, value T) error {
	assertThat(i >= 0 && i <= v.size, "vector position out of bounds: %d with length %d", i, v.size)
	v.props = v.props.init()
	if v.exclusive() && v.size < v.Cap() {
		c, err := v.clone(value)
		if err != nil {
			return err
		}
		v.ensureSmall()
		s := v.storage()
		s[v.size] = c
		v.size++
		for j := v.size - 1; j > i; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
		return nil
	}
	newCap := v.Cap()
	if v.size == newCap {
		newCap *= 2
		tracer().Debugf("vector grows to capacity %d", newCap)
	}
	rep := Vector[T]{props: v.props}
	dst := rep.alloc(newCap)
	src := v.storage()
	for j := 0; j < i; j++ {
		c, err := v.clone(src[j])
		if err != nil {
			rep.releaseStorage()
			return err
		}
		dst[j] = c
		rep.size = j + 1
	}
	c, err := v.clone(value)
	if err != nil {
		rep.releaseStorage()
		return err
	}
	dst[i] = c
	rep.size = i + 1
	for j := i; j < v.size; j++ {
		c, err := v.clone(src[j])
		if err != nil {
			rep.releaseStorage()
			return err
		}
		dst[j+1] = c
		rep.size = j + 2
	}
	v.commit(rep)
	return nil
}

// Erase removes the element at index i.
func (v *Vector[T]) Erase(i int) error {
	return v.EraseRange(i, i+1)
}

// EraseRange removes the elements in [first, last). On exclusively owned
// storage the surviving tail is shifted left by swaps and the surplus
// elements are dropped, which cannot fail. On a shared buffer the vector
// assembles prefix and surviving suffix in a private buffer of the same
// capacity; a failed clone leaves the vector unchanged.
func (v *Vector[T]) EraseRange(first, last int) error {
	assertThat(0 <= first && first <= last && last <= v.size,
		"invalid erase range [%d,%d) with length %d", first, last, v.size)
	if first == last {
		return nil
	}
	v.props = v.props.init()
	k := last - first
	if v.exclusive() {
		s := v.storage()
		for j := first; j+k < v.size; j++ {
			s[j], s[j+k] = s[j+k], s[j]
		}
		for j := v.size - k; j < v.size; j++ {
			v.dropElem(&s[j])
		}
		v.size -= k
		return nil
	}
	rep, err := v.replica(first, v.Cap())
	if err != nil {
		return err
	}
	dst := rep.storage()
	src := v.storage()
	for j := last; j < v.size; j++ {
		c, err := v.clone(src[j])
		if err != nil {
			rep.releaseStorage()
			return err
		}
		dst[first+j-last] = c
		rep.size++
	}
	v.commit(rep)
	return nil
}

// Clear removes all elements. An exclusively owned vector drops its elements
// in place and keeps its capacity; a vector sharing its buffer walks away
// from it and starts over with a fresh exclusively owned buffer of the same
// capacity, so data still visible through other owners is never destroyed.
// Clear copies no elements and cannot fail.
func (v *Vector[T]) Clear() {
	v.props = v.props.init()
	if v.exclusive() {
		s := v.storage()
		for i := 0; i < v.size; i++ {
			v.dropElem(&s[i])
		}
		v.size = 0
		return
	}
	capacity := v.Cap()
	v.buf.release(v.size, v.drop)
	v.buf = &sharedBuf[T]{refs: 1, data: make([]T, capacity)}
	v.size = 0
}

// Reserve ensures capacity for at least n elements. Asking for less than the
// current length is a no-op, as is asking an exclusively owned vector for
// capacity it already has. A vector sharing its buffer takes Reserve as an
// unshare point: it builds a private copy at capacity n, or moves back into
// inline storage when n fits there. Strong guarantee: a failed clone leaves
// the vector unchanged.
func (v *Vector[T]) Reserve(n int) error {
	v.props = v.props.init()
	if n < v.size {
		return nil
	}
	if !v.exclusive() && n <= v.smallCap {
		return v.demote()
	}
	if n > v.Cap() || !v.exclusive() {
		rep, err := v.replica(v.size, n)
		if err != nil {
			return err
		}
		v.commit(rep)
	}
	return nil
}

// ShrinkToFit drops excess capacity: afterwards Cap() == max(Len(), N).
// A no-op for inline vectors and for exactly-sized buffers. Strong
// guarantee: a failed clone leaves the vector unchanged.
func (v *Vector[T]) ShrinkToFit() error {
	v.props = v.props.init()
	if v.buf == nil || v.size == v.Cap() {
		return nil
	}
	if v.size <= v.smallCap {
		return v.demote()
	}
	rep, err := v.replica(v.size, v.size)
	if err != nil {
		return err
	}
	v.commit(rep)
	return nil
}

// --- Copying -----------------------------------------------------------------

// Clone returns a copy of v. For a vector in dynamic mode this is O(1): the
// copy shares the backing buffer, and the element-wise copy is deferred
// until either side mutates. For an inline vector the elements are cloned
// one by one; if a clone fails, no copy is created and the partial one is
// dropped.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	v.props = v.props.init()
	if v.buf != nil {
		v.buf.refs++
		return &Vector[T]{props: v.props, size: v.size, buf: v.buf}, nil
	}
	rep, err := v.replica(v.size, v.smallCap)
	if err != nil {
		return nil, err
	}
	return &Vector[T]{props: rep.props, size: rep.size, small: rep.small}, nil
}

// CopyFrom assigns the contents of other to v. Assigning from a vector in
// dynamic mode is O(1) and cannot fail: v releases its old storage and
// shares other's buffer. Assigning from an inline vector into a dynamic one
// builds the inline copy first and commits after the last element (strong
// guarantee). The inline-to-inline case deliberately assigns in place over
// the common prefix and trims or extends at the end, offering only a weak
// guarantee: a clone failing midway leaves v holding a valid mix of old and
// new elements.
//
// Assigning a vector to itself, or between two vectors sharing one buffer,
// is a no-op. Both vectors should carry the same configuration.
func (v *Vector[T]) CopyFrom(other *Vector[T]) error {
	v.props = v.props.init()
	other.props = other.props.init()
	if v.sameStorage(other) {
		return nil
	}
	if other.buf != nil {
		other.buf.refs++
		v.releaseStorage()
		v.buf = other.buf
		v.size = other.size
		return nil
	}
	if v.buf != nil || other.size > v.smallCap {
		capacity := v.smallCap
		if other.size > capacity {
			capacity = other.size
		}
		rep, err := v.replicate(other.storage(), other.size, capacity)
		if err != nil {
			return err
		}
		v.commit(rep)
		return nil
	}
	// Both inline and the content fits: assign in place, trim or extend at
	// the end. Weak guarantee.
	v.ensureSmall()
	s := v.small
	src := other.storage()
	n := v.size
	if other.size < n {
		n = other.size
	}
	for i := 0; i < n; i++ {
		c, err := v.clone(src[i])
		if err != nil {
			return err // elements [0,i) already hold other's values
		}
		v.dropElem(&s[i])
		s[i] = c
	}
	for v.size > other.size {
		v.size--
		v.dropElem(&s[v.size])
	}
	for v.size < other.size {
		c, err := v.clone(src[v.size])
		if err != nil {
			return err // v holds other's prefix of length v.size
		}
		s[v.size] = c
		v.size++
	}
	return nil
}

// Swap exchanges the contents, capacity and configuration of two vectors.
// Inline storage is a privately owned block just like a heap buffer, so the
// exchange is a handle swap in every combination of modes: no element is
// copied, reference counts do not change, and Swap cannot fail. Swapping a
// vector with itself, or with a vector sharing the same buffer, is a no-op.
func (v *Vector[T]) Swap(other *Vector[T]) {
	if v.sameStorage(other) {
		return
	}
	v.props, other.props = other.props, v.props
	v.size, other.size = other.size, v.size
	v.small, other.small = other.small, v.small
	v.buf, other.buf = other.buf, v.buf
}

// Release gives up the vector's storage immediately: the drop hook runs over
// the elements if v held the last reference to them, and v resets to an
// empty inline vector. Release is only ever necessary when a drop hook
// carries meaning; the garbage collector reclaims memory either way. A
// released vector remains usable.
func (v *Vector[T]) Release() {
	v.releaseStorage()
	v.small = nil
}

func (v *Vector[T]) String() string {
	b := strings.Builder{}
	b.WriteByte('[')
	s := v.storage()
	for i := 0; i < v.size; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(fmt.Sprintf("%v", s[i]))
	}
	b.WriteByte(']')
	return b.String()
}
