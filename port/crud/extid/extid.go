// Package extid helps with the entity identifier conventions of the module:
// an entity exposes its resource assigned identifier either through a field
// tagged with `ext:"ID"` or through a field named "ID".
package extid

import (
	"fmt"
	"reflect"

	"go.llib.dev/hookit/pkg/reflectkit"
)

const tagName = "ext"

// Lookup returns the identifier value of the given entity.
// A zero identifier value reports as not ok, since the resource has not assigned one yet.
func Lookup[ID, ENT any](ent ENT) (id ID, ok bool) {
	_, val, ok := lookupIDField(reflectkit.BaseValueOf(ent))
	if !ok {
		return id, false
	}
	id, ok = val.Interface().(ID)
	if !ok {
		return id, false
	}
	if val.IsZero() {
		return id, false
	}
	return id, true
}

// Set assigns the given identifier value on the entity behind the pointer.
func Set[ID any](ptr any, id ID) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer {
		return fmt.Errorf("pointer expected to set the external id, got: %T", ptr)
	}
	_, val, ok := lookupIDField(rv.Elem())
	if !ok {
		return fmt.Errorf("could not locate the id field in %s", rv.Elem().Type().String())
	}
	val.Set(reflect.ValueOf(id))
	return nil
}

func lookupIDField(val reflect.Value) (reflect.StructField, reflect.Value, bool) {
	if val.Kind() != reflect.Struct {
		return reflect.StructField{}, reflect.Value{}, false
	}
	for i := 0; i < val.NumField(); i++ {
		sf := val.Type().Field(i)
		if tag, ok := sf.Tag.Lookup(tagName); ok && (tag == "ID" || tag == "id") {
			return sf, val.Field(i), true
		}
	}
	const idFieldName = "ID"
	if byName := val.FieldByName(idFieldName); byName.Kind() != reflect.Invalid {
		sf, _ := val.Type().FieldByName(idFieldName)
		return sf, byName, true
	}
	return reflect.StructField{}, reflect.Value{}, false
}
