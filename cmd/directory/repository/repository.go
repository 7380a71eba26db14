package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dialwise/directory/cmd/directory/models"
)

// CatalogRepository persists service entries keyed by id.
// Implementations return deep copies; callers never share memory with
// the store. A missing entry surfaces as apperr.NotFound.
type CatalogRepository interface {
	Get(ctx context.Context, id string) (*models.ServiceEntry, error)
	List(ctx context.Context) ([]*models.ServiceEntry, error)
	Put(ctx context.Context, entry *models.ServiceEntry) error
	Delete(ctx context.Context, id string) error
	// ReplaceAll swaps the whole catalog for the given entries (full import)
	ReplaceAll(ctx context.Context, entries []*models.ServiceEntry) error
	Health(ctx context.Context) error
}

// LedgerRepository persists change requests keyed by id
type LedgerRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.ChangeRequest, error)
	List(ctx context.Context) ([]*models.ChangeRequest, error)
	// FindLive returns the single live request with the given status for
	// (serviceID, field), or apperr.NotFound
	FindLive(ctx context.Context, serviceID string, field models.FieldPath, status models.ChangeStatus) (*models.ChangeRequest, error)
	Put(ctx context.Context, req *models.ChangeRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	Health(ctx context.Context) error
}
