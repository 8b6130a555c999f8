package store

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound matches every NotFoundError regardless of entity.
var ErrNotFound = errors.New("not found")

// Entity names the kind of record a lookup was for.
type Entity string

const (
	EntityCart    Entity = "cart"
	EntityProduct Entity = "product"
)

// NotFoundError is returned when a cart or product id does not resolve.
type NotFoundError struct {
	Entity Entity
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(entity Entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}
