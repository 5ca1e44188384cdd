/*
Package maybe provides an optional-value type.

A Maybe is either Just a value or Nothing. It is used by container packages
of this module for accessors which may legitimately come up empty, like the
first element of a possibly-empty sequence.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023 Norbert Pillmayer <norbert@pillmayer.com>

*/
package maybe

import "fmt"

// Maybe represents an optional value of type T.
// The zero value is Nothing.
type Maybe[T any] struct {
	value T
	ok    bool
}

// Just wraps a present value.
func Just[T any](x T) Maybe[T] {
	return Maybe[T]{value: x, ok: true}
}

// Nothing returns the absent value for type T.
func Nothing[T any]() Maybe[T] {
	return Maybe[T]{}
}

// IsNothing returns true iff no value is present.
func (m Maybe[T]) IsNothing() bool {
	return !m.ok
}

// Get returns the wrapped value, together with a flag signalling its
// presence. For Nothing, the zero value of T is returned.
func (m Maybe[T]) Get() (T, bool) {
	return m.value, m.ok
}

// WithDefault returns the wrapped value, or def for Nothing.
func (m Maybe[T]) WithDefault(def T) T {
	if m.ok {
		return m.value
	}
	return def
}

// Map applies f to the wrapped value, if present. Nothing stays Nothing.
func (m Maybe[T]) Map(f func(T) T) Maybe[T] {
	if m.ok {
		return Just(f(m.value))
	}
	return m
}

// AndThen chains x into a computation which itself may come up empty.
func AndThen[T, S any](f func(T) Maybe[S], x Maybe[T]) Maybe[S] {
	if v, ok := x.Get(); ok {
		return f(v)
	}
	return Nothing[S]()
}

func (m Maybe[T]) String() string {
	if !m.ok {
		return "Nothing"
	}
	return fmt.Sprintf("Just(%v)", m.value)
}
