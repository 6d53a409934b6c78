// Package reflectkit contains the minimal reflection helpers the module relies on.
package reflectkit

import "reflect"

// TypeOf returns the reflect.Type of the type argument.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// BaseValueOf returns the reflect value of the given input,
// dereferencing any pointer indirection along the way.
func BaseValueOf(i any) reflect.Value {
	rv, ok := i.(reflect.Value)
	if !ok {
		rv = reflect.ValueOf(i)
	}
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv
}
