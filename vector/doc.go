/*
Package vector implements a generic sequence container with small-buffer
optimization and copy-on-write sharing.

Sequences of up to a fixed inline capacity N (option SmallSize) live in
storage owned exclusively by the vector, with no sharing ever. Once a vector
grows beyond N elements, its elements move into a heap buffer which carries a
reference count: cloning the vector is then O(1) and shares the buffer, and
the element-wise copy is deferred until one of the sharers needs to mutate
its view. Every mutating operation first establishes exclusive ownership of
the storage it is about to touch ("unshare before mutate"), so logically
independent vectors never interfere through a shared buffer.

Element copying is performed through a configurable clone hook which may
fail. Operations that copy elements return an error in that case and leave
the vector observably unchanged ("build the replacement first, commit last"),
with one documented exception: the inline-to-inline branch of CopyFrom
assigns in place and offers only a weak guarantee. Element destruction is
an optional drop hook which must not fail.

Vectors are not safe for concurrent use. Sharing a buffer between vectors
that are only read is fine; mutation needs external synchronization even when
the mutating goroutines own distinct vectors, since the reference count
itself is unguarded.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023 Norbert Pillmayer <norbert@pillmayer.com>

*/
package vector

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'socow.vector'.
func tracer() tracing.Trace {
	return tracing.Select("socow.vector")
}
