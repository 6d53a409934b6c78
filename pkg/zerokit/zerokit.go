// Package zerokit helps with zero value related use-cases such as default value selection.
package zerokit

import "reflect"

// Coalesce will return the first non-zero value from the provided values.
func Coalesce[T any](vs ...T) T {
	var zero T
	for _, v := range vs {
		if !IsZero(v) {
			return v
		}
	}
	return zero
}

// IsZero reports whether the given value is the zero value of its type.
func IsZero[T any](v T) bool {
	rv := reflect.ValueOf(&v).Elem()
	return rv.IsZero()
}
