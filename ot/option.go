package ot

import "fmt"

// Option is a value which may be absent, as are most per-glyph entries of
// table 'MATH'.
type Option[T any] struct {
	value T
	valid bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, valid: true}
}

// None is an absent value of type T.
func None[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) IsSome() bool { return o.valid }

func (o Option[T]) IsNone() bool { return !o.valid }

// Unwrap returns the value and whether it is present.
func (o Option[T]) Unwrap() (T, bool) {
	return o.value, o.valid
}

// MustUnwrap returns the value and panics if it is absent.
func (o Option[T]) MustUnwrap() T {
	if !o.valid {
		panic(fmt.Sprintf("ot: absent %T value", o.value))
	}
	return o.value
}
