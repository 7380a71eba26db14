package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/common/apperr"
	"github.com/dialwise/directory/common/db"
)

// PGLedgerStore handles database operations for change requests
type PGLedgerStore struct {
	db *db.DB
}

// NewPGLedgerStore creates a new postgres-backed ledger store
func NewPGLedgerStore(db *db.DB) *PGLedgerStore {
	return &PGLedgerStore{db: db}
}

const ledgerColumns = `id, service_id, field, old_value, new_value, requested_by, requested_at, status, reviewed_by, reviewed_at, comments`

// Get retrieves a change request by id
func (r *PGLedgerStore) Get(ctx context.Context, id uuid.UUID) (*models.ChangeRequest, error) {
	query := `SELECT ` + ledgerColumns + ` FROM change_request WHERE id = $1`

	req, err := r.scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("change request not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get change request: %w", err)
	}

	return req, nil
}

// List retrieves all change requests
func (r *PGLedgerStore) List(ctx context.Context) ([]*models.ChangeRequest, error) {
	query := `SELECT ` + ledgerColumns + ` FROM change_request ORDER BY requested_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list change requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ChangeRequest
	for rows.Next() {
		req, err := r.scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change requests: %w", err)
	}

	return requests, nil
}

// FindLive returns the live request with the given status for (serviceID, field)
func (r *PGLedgerStore) FindLive(ctx context.Context, serviceID string, field models.FieldPath, status models.ChangeStatus) (*models.ChangeRequest, error) {
	query := `SELECT ` + ledgerColumns + ` FROM change_request WHERE service_id = $1 AND field = $2 AND status = $3`

	req, err := r.scanRequest(r.db.QueryRow(ctx, query, serviceID, field.String(), string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("no %s change request for %s %s", status, serviceID, field)
		}
		return nil, fmt.Errorf("failed to find change request: %w", err)
	}

	return req, nil
}

// Put upserts a change request
func (r *PGLedgerStore) Put(ctx context.Context, req *models.ChangeRequest) error {
	query := `
		INSERT INTO change_request (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET service_id = $2, field = $3, old_value = $4, new_value = $5,
		    requested_by = $6, requested_at = $7, status = $8,
		    reviewed_by = $9, reviewed_at = $10, comments = $11
	`

	_, err := r.db.Exec(ctx, query,
		req.ID,
		req.ServiceID,
		req.Field.String(),
		req.OldValue,
		req.NewValue,
		req.RequestedBy,
		req.RequestedAt,
		string(req.Status),
		req.ReviewedBy,
		req.ReviewedAt,
		req.Comments,
	)

	if err != nil {
		return fmt.Errorf("failed to put change request: %w", err)
	}

	return nil
}

// Delete removes a change request
func (r *PGLedgerStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM change_request WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete change request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("change request not found: %s", id)
	}

	return nil
}

// Health checks database health
func (r *PGLedgerStore) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

func (r *PGLedgerStore) scanRequest(row pgRow) (*models.ChangeRequest, error) {
	req := &models.ChangeRequest{}
	var field, status string

	if err := row.Scan(
		&req.ID,
		&req.ServiceID,
		&field,
		&req.OldValue,
		&req.NewValue,
		&req.RequestedBy,
		&req.RequestedAt,
		&status,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&req.Comments,
	); err != nil {
		return nil, err
	}

	parsed, err := models.ParseFieldPath(field)
	if err != nil {
		return nil, fmt.Errorf("stored field path %q is invalid: %w", field, err)
	}
	req.Field = parsed
	req.Status = models.ChangeStatus(status)

	return req, nil
}
