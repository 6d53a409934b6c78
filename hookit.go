// Package hookit provides lifecycle bound CRUD operation hooks over a REST-like backend.
//
// A Factory value describes a remote resource once,
// and its Use* constructors hand out operation functions that are bound
// to the lifetime of their owner through a lifekit.Lifecycle.
// Operation outcomes are delivered asynchronously through a continuation,
// and once the owner detaches, pending deliveries are silently absorbed:
// the continuation of a detached owner never runs.
package hookit

import (
	"context"
	"fmt"
	"net/http"

	"go.llib.dev/hookit/pkg/httpkit"
	"go.llib.dev/hookit/pkg/httpkit/mediatype"
	"go.llib.dev/hookit/pkg/iterkit"
	"go.llib.dev/hookit/pkg/lifekit"
	"go.llib.dev/hookit/pkg/reflectkit"
	"go.llib.dev/hookit/port/crud"
	"go.llib.dev/hookit/port/crud/extid"
)

// Result is the delivered outcome of an asynchronous operation.
// OK and a non nil Err are mutually exclusive;
// on success, the operation kind decides whether Value or Values is populated.
type Result[T any] struct {
	// OK reports whether the operation succeeded.
	OK bool
	// Value holds the outcome of a single entity operation.
	Value T
	// Values holds the outcome of a list based operation,
	// in the order the backend returned the entities.
	Values []T
	// Err holds the failure cause when the operation did not succeed.
	Err error
}

// Success returns the successful outcome of a single entity operation.
func Success[T any](v T) Result[T] {
	return Result[T]{OK: true, Value: v}
}

// Successes returns the successful outcome of a list based operation.
func Successes[T any](vs []T) Result[T] {
	return Result[T]{OK: true, Values: vs}
}

// Failure returns the failed outcome of an operation.
func Failure[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// Factory describes a remote REST resource,
// and constructs lifecycle bound operation functions for it.
//
// The Factory value is immutable and safe to share;
// each Use* call yields an independently bound operation function.
type Factory[Entity, ID any] struct {
	// BaseURL [required] is the url of the remote resource.
	// It may contain ":name" styled path parameter placeholders,
	// whose values are supplied per call through httpkit.WithPathParam.
	BaseURL string
	// MediaType [optional] is the media type used for the requests.
	//
	// Default: mediatype.JSON
	MediaType mediatype.MediaType
	// HTTPClient [optional] is used to make the http requests.
	//
	// Default: httpkit.DefaultRestClientHTTPClient
	HTTPClient *http.Client
	// MediaTypeCodecs [optional] is a registry that helps choose the right codec for each media type.
	MediaTypeCodecs httpkit.MediaTypeCodecs
	// IDConverter [optional] formats the entity identifier into its request path form.
	IDConverter httpkit.IDConverter[ID]
	// LookupID [optional] describes how to read the identifier of an entity value.
	//
	// Default: extid.Lookup
	LookupID crud.LookupIDFunc[Entity, ID]
}

type (
	// CreateFunc stores a new entity in the remote resource,
	// and delivers the stored entity carrying the resource assigned identifier.
	CreateFunc[Entity any] func(ctx context.Context, ent Entity, deliver func(Result[Entity])) error
	// GetFunc retrieves the entity that belongs to the given identifier.
	// An absent entity is delivered as a failed result with crud.ErrNotFound.
	GetFunc[Entity, ID any] func(ctx context.Context, id ID, deliver func(Result[Entity])) error
	// ListFunc retrieves every entity of the remote resource,
	// and delivers them in the order the backend returned them.
	ListFunc[Entity any] func(ctx context.Context, deliver func(Result[Entity])) error
	// UpdateFunc replaces the remote entity identified by the given entity's identifier,
	// and delivers the updated entity.
	UpdateFunc[Entity any] func(ctx context.Context, ent Entity, deliver func(Result[Entity])) error
	// BulkUpdateFunc replaces a batch of remote entities with a single request,
	// and delivers the updated entities, one for each input, in order.
	BulkUpdateFunc[Entity any] func(ctx context.Context, ents []Entity, deliver func(Result[Entity])) error
	// DeleteFunc removes the entity that belongs to the given identifier,
	// and delivers an empty acknowledging result.
	DeleteFunc[Entity, ID any] func(ctx context.Context, id ID, deliver func(Result[Entity])) error
)

// UseCreate binds a create operation to the given lifecycle.
func (f Factory[Entity, ID]) UseCreate(lc lifekit.Lifecycle) CreateFunc[Entity] {
	var (
		token  = lifekit.Attach(lc)
		client = f.restClient()
	)
	return func(ctx context.Context, ent Entity, deliver func(Result[Entity])) error {
		if err := checkDeliver(deliver); err != nil {
			return err
		}
		if _, err := client.ResourceURL(ctx); err != nil {
			return err
		}
		go func() {
			err := client.Create(ctx, &ent)
			settle(token, deliver, func() Result[Entity] {
				if err != nil {
					return Failure[Entity](err)
				}
				return Success(ent)
			})
		}()
		return nil
	}
}

// UseGet binds a retrieve-by-identifier operation to the given lifecycle.
func (f Factory[Entity, ID]) UseGet(lc lifekit.Lifecycle) GetFunc[Entity, ID] {
	var (
		token  = lifekit.Attach(lc)
		client = f.restClient()
	)
	return func(ctx context.Context, id ID, deliver func(Result[Entity])) error {
		if err := checkDeliver(deliver); err != nil {
			return err
		}
		if _, err := client.EntityURL(ctx, id); err != nil {
			return err
		}
		go func() {
			ent, found, err := client.FindByID(ctx, id)
			settle(token, deliver, func() Result[Entity] {
				if err != nil {
					return Failure[Entity](err)
				}
				if !found {
					return Failure[Entity](crud.ErrNotFound)
				}
				return Success(ent)
			})
		}()
		return nil
	}
}

// UseList binds a list operation to the given lifecycle.
func (f Factory[Entity, ID]) UseList(lc lifekit.Lifecycle) ListFunc[Entity] {
	var (
		token  = lifekit.Attach(lc)
		client = f.restClient()
	)
	return func(ctx context.Context, deliver func(Result[Entity])) error {
		if err := checkDeliver(deliver); err != nil {
			return err
		}
		if _, err := client.ResourceURL(ctx); err != nil {
			return err
		}
		go func() {
			ents, err := iterkit.CollectE(client.FindAll(ctx))
			settle(token, deliver, func() Result[Entity] {
				if err != nil {
					return Failure[Entity](err)
				}
				return Successes(ents)
			})
		}()
		return nil
	}
}

// UseUpdate binds an update operation to the given lifecycle.
func (f Factory[Entity, ID]) UseUpdate(lc lifekit.Lifecycle) UpdateFunc[Entity] {
	var (
		token  = lifekit.Attach(lc)
		client = f.restClient()
	)
	return func(ctx context.Context, ent Entity, deliver func(Result[Entity])) error {
		if err := checkDeliver(deliver); err != nil {
			return err
		}
		id, ok := f.lookupID(ent)
		if !ok {
			return fmt.Errorf("unable to find the %s in %s, try configuring Factory.LookupID",
				reflectkit.TypeOf[ID]().String(), reflectkit.TypeOf[Entity]().String())
		}
		if _, err := client.EntityURL(ctx, id); err != nil {
			return err
		}
		go func() {
			err := client.Update(ctx, &ent)
			settle(token, deliver, func() Result[Entity] {
				if err != nil {
					return Failure[Entity](err)
				}
				return Success(ent)
			})
		}()
		return nil
	}
}

// UseBulkUpdate binds a batch update operation to the given lifecycle.
func (f Factory[Entity, ID]) UseBulkUpdate(lc lifekit.Lifecycle) BulkUpdateFunc[Entity] {
	var (
		token  = lifekit.Attach(lc)
		client = f.restClient()
	)
	return func(ctx context.Context, ents []Entity, deliver func(Result[Entity])) error {
		if err := checkDeliver(deliver); err != nil {
			return err
		}
		for i, ent := range ents {
			if _, ok := f.lookupID(ent); !ok {
				return fmt.Errorf("missing %s in %s at index %d",
					reflectkit.TypeOf[ID]().String(), reflectkit.TypeOf[Entity]().String(), i)
			}
		}
		if _, err := client.ResourceURL(ctx); err != nil {
			return err
		}
		go func() {
			got, err := client.UpdateMany(ctx, ents)
			settle(token, deliver, func() Result[Entity] {
				if err != nil {
					return Failure[Entity](err)
				}
				return Successes(got)
			})
		}()
		return nil
	}
}

// UseDelete binds a delete operation to the given lifecycle.
func (f Factory[Entity, ID]) UseDelete(lc lifekit.Lifecycle) DeleteFunc[Entity, ID] {
	var (
		token  = lifekit.Attach(lc)
		client = f.restClient()
	)
	return func(ctx context.Context, id ID, deliver func(Result[Entity])) error {
		if err := checkDeliver(deliver); err != nil {
			return err
		}
		if _, err := client.EntityURL(ctx, id); err != nil {
			return err
		}
		go func() {
			err := client.DeleteByID(ctx, id)
			settle(token, deliver, func() Result[Entity] {
				if err != nil {
					return Failure[Entity](err)
				}
				return Result[Entity]{OK: true} // empty acknowledgement
			})
		}()
		return nil
	}
}

func (f Factory[Entity, ID]) restClient() httpkit.RestClient[Entity, ID] {
	return httpkit.RestClient[Entity, ID]{
		BaseURL:         f.BaseURL,
		HTTPClient:      f.HTTPClient,
		MediaType:       f.MediaType,
		MediaTypeCodecs: f.MediaTypeCodecs,
		IDConverter:     f.IDConverter,
		LookupID:        f.LookupID,
	}
}

func (f Factory[Entity, ID]) lookupID(ent Entity) (ID, bool) {
	if f.LookupID != nil {
		return f.LookupID(ent)
	}
	return extid.Lookup[ID](ent)
}

func checkDeliver[T any](deliver func(Result[T])) error {
	if deliver == nil {
		return fmt.Errorf("nil delivery continuation received")
	}
	return nil
}

// settle evaluates the outcome first,
// then delivers it only if the owning lifecycle is still attached.
func settle[T any](token *lifekit.Token, deliver func(Result[T]), outcome func() Result[T]) {
	result := outcome()
	token.Guard(func() { deliver(result) })
}
