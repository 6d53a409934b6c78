// Package iterkit contains iterator helpers for sequences whose elements may fail.
package iterkit

import "iter"

// SeqE is an iterator sequence where each element is accompanied by a possible error.
type SeqE[T any] = iter.Seq2[T, error]

// Error returns a sequence that yields no value, only the given error.
func Error[T any](err error) SeqE[T] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

// Empty returns a sequence that yields nothing.
func Empty[T any]() SeqE[T] {
	return func(yield func(T, error) bool) {}
}

// FromSlice turns a slice into a sequence that yields its elements in order.
func FromSlice[T any](vs []T) SeqE[T] {
	return func(yield func(T, error) bool) {
		for _, v := range vs {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// CollectE gathers all elements of the sequence,
// stopping at the first failed element.
func CollectE[T any](itr SeqE[T]) ([]T, error) {
	var vs []T
	for v, err := range itr {
		if err != nil {
			return vs, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// CountE consumes the sequence and reports the number of successful elements.
func CountE[T any](itr SeqE[T]) (int, error) {
	var n int
	for _, err := range itr {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
