// Package crud describes the operation interfaces a resource can implement.
package crud

import (
	"context"

	"go.llib.dev/hookit/pkg/iterkit"
)

type Creator[ENT any] interface {
	// Create takes a pointer to an entity and stores it in the resource.
	// It also updates the entity's identifier field with the resource assigned id value.
	Create(ctx context.Context, ptr *ENT) error
}

type Finder[ENT, ID any] interface {
	ByIDFinder[ENT, ID]
	AllFinder[ENT]
}

type ByIDFinder[ENT, ID any] interface {
	// FindByID returns the entity that belongs to the given id,
	// and reports back whether it was found in the resource.
	// Absence is expressed with the found return value, not with an error.
	FindByID(ctx context.Context, id ID) (ent ENT, found bool, err error)
}

type AllFinder[ENT any] interface {
	// FindAll returns every entity of the resource.
	FindAll(ctx context.Context) iterkit.SeqE[ENT]
}

type Updater[ENT any] interface {
	// Update takes a pointer to an entity carrying its identifier,
	// and updates the corresponding stored entity with the received field values.
	Update(ctx context.Context, ptr *ENT) error
}

type Deleter[ID any] interface {
	ByIDDeleter[ID]
	AllDeleter
}

type ByIDDeleter[ID any] interface {
	// DeleteByID removes the entity that belongs to the given id from the resource.
	DeleteByID(ctx context.Context, id ID) error
}

type AllDeleter interface {
	// DeleteAll removes every entity from the resource.
	DeleteAll(ctx context.Context) error
}

// LookupIDFunc describes how to look up the identifier of an entity value.
type LookupIDFunc[ENT, ID any] func(ENT) (ID, bool)
