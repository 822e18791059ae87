package store

import "errors"

var (
	// ErrNotFound is returned when no entity has the requested header value.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when adding an entity whose header value
	// already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStoreNotFound is returned when a store name is not registered.
	ErrStoreNotFound = errors.New("store not registered")
)
