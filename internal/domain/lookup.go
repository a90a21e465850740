package domain

// Lookup is the outcome of reading a single record: either Found with a value
// or NotFound. Failures are reported separately on the error return, so an
// expected absence never travels on the error channel.
type Lookup[T any] struct {
	value *T
}

// Found wraps a located value.
func Found[T any](v T) Lookup[T] {
	return Lookup[T]{value: &v}
}

// NotFound reports that no record matched.
func NotFound[T any]() Lookup[T] {
	return Lookup[T]{}
}

// Value returns the located value and true, or nil and false.
func (l Lookup[T]) Value() (*T, bool) {
	return l.value, l.value != nil
}

// IsFound reports whether a value was located.
func (l Lookup[T]) IsFound() bool {
	return l.value != nil
}
