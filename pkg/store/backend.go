package store

import (
	"context"
	"errors"

	"github.com/matzehuels/impactgraph/pkg/entity"
)

var (
	// ErrCorrupt is returned in strict mode when the stored document
	// cannot be decoded.
	ErrCorrupt = errors.New("corrupt database document")

	// ErrProjectNotFound is returned by Detail for unknown names.
	ErrProjectNotFound = errors.New("project not found")
)

// Backend stores records.
type Backend interface {
	// Load returns every stored record in insertion order.
	Load(ctx context.Context) ([]entity.Record, error)
	// InsertIfAbsent stores rec unless a record with the same id exists.
	// It reports whether rec was stored.
	InsertIfAbsent(ctx context.Context, rec entity.Record) (bool, error)
	Close() error
}
