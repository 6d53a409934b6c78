// Package memory provides an in-memory implementation of the crud ports.
// Its main use-case is to act as a backend double in tests.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"go.llib.dev/hookit/pkg/iterkit"
	"go.llib.dev/hookit/pkg/reflectkit"
	"go.llib.dev/hookit/port/crud"
	"go.llib.dev/hookit/port/crud/extid"
)

// Repository is an in-memory crud resource.
// Entities are kept in insertion order, which FindAll preserves.
//
// The zero value is ready for use.
type Repository[ENT any, ID comparable] struct {
	// MakeID [optional] generates the identifier for entities created without one.
	//
	// Default: uuid for string based ID types, a counter for integer based ID types
	MakeID func(context.Context) (ID, error)

	mutex   sync.RWMutex
	entries map[ID]ENT
	order   []ID
	counter int
}

func (r *Repository[ENT, ID]) Create(ctx context.Context, ptr *ENT) error {
	if ptr == nil {
		return fmt.Errorf("nil pointer (%s) received",
			reflectkit.TypeOf[ENT]().String())
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	id, ok := extid.Lookup[ID](*ptr)
	if !ok {
		nid, err := r.mkID(ctx)
		if err != nil {
			return err
		}
		if err := extid.Set(ptr, nid); err != nil {
			return err
		}
		id = nid
	}

	if _, exists := r.lookup(id); exists {
		return crud.ErrAlreadyExists.F("%v already exists in %s",
			id, reflectkit.TypeOf[ENT]().String())
	}

	r.store(id, *ptr)
	return nil
}

func (r *Repository[ENT, ID]) FindByID(ctx context.Context, id ID) (ent ENT, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return ent, false, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	ent, found = r.lookup(id)
	return ent, found, nil
}

func (r *Repository[ENT, ID]) FindAll(ctx context.Context) iterkit.SeqE[ENT] {
	return func(yield func(ENT, error) bool) {
		if err := ctx.Err(); err != nil {
			var zero ENT
			yield(zero, err)
			return
		}
		r.mutex.RLock()
		ents := make([]ENT, 0, len(r.order))
		for _, id := range r.order {
			ents = append(ents, r.entries[id])
		}
		r.mutex.RUnlock()
		for _, ent := range ents {
			if !yield(ent, nil) {
				return
			}
		}
	}
}

func (r *Repository[ENT, ID]) Update(ctx context.Context, ptr *ENT) error {
	if ptr == nil {
		return fmt.Errorf("nil pointer (%s) received",
			reflectkit.TypeOf[ENT]().String())
	}
	id, ok := extid.Lookup[ID](*ptr)
	if !ok {
		return fmt.Errorf("missing %s in %s",
			reflectkit.TypeOf[ID]().String(), reflectkit.TypeOf[ENT]().String())
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, found := r.lookup(id); !found {
		return crud.ErrNotFound.F("%v is not found in %s",
			id, reflectkit.TypeOf[ENT]().String())
	}

	r.entries[id] = *ptr
	return nil
}

func (r *Repository[ENT, ID]) DeleteByID(ctx context.Context, id ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, found := r.lookup(id); !found {
		return crud.ErrNotFound.F("%v is not found in %s",
			id, reflectkit.TypeOf[ENT]().String())
	}

	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Repository[ENT, ID]) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.entries = nil
	r.order = nil
	return nil
}

func (r *Repository[ENT, ID]) lookup(id ID) (ENT, bool) {
	ent, ok := r.entries[id]
	return ent, ok
}

func (r *Repository[ENT, ID]) store(id ID, ent ENT) {
	if r.entries == nil {
		r.entries = make(map[ID]ENT)
	}
	r.entries[id] = ent
	r.order = append(r.order, id)
}

func (r *Repository[ENT, ID]) mkID(ctx context.Context) (ID, error) {
	if r.MakeID != nil {
		return r.MakeID(ctx)
	}
	var id ID
	rtype := reflectkit.TypeOf[ID]()
	switch rtype.Kind() {
	case reflect.String:
		reflect.ValueOf(&id).Elem().Set(reflect.ValueOf(uuid.NewString()).Convert(rtype))
		return id, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		r.counter++
		reflect.ValueOf(&id).Elem().Set(reflect.ValueOf(r.counter).Convert(rtype))
		return id, nil
	default:
		return id, fmt.Errorf("id generation is not supported for %s, please provide MakeID",
			rtype.String())
	}
}
