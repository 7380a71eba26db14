package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/common/apperr"
	"github.com/dialwise/directory/common/db"
)

// PGCatalogStore handles database operations for service entries
type PGCatalogStore struct {
	db *db.DB
}

// NewPGCatalogStore creates a new postgres-backed catalog store
func NewPGCatalogStore(db *db.DB) *PGCatalogStore {
	return &PGCatalogStore{db: db}
}

// Get retrieves a service entry by id
func (r *PGCatalogStore) Get(ctx context.Context, id string) (*models.ServiceEntry, error) {
	query := `
		SELECT id, name, note, telcos, active, updated_at
		FROM service_entry
		WHERE id = $1
	`

	entry, err := r.scanEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("service not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get service entry: %w", err)
	}

	return entry, nil
}

// List retrieves all service entries
func (r *PGCatalogStore) List(ctx context.Context) ([]*models.ServiceEntry, error) {
	query := `
		SELECT id, name, note, telcos, active, updated_at
		FROM service_entry
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list service entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.ServiceEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service entries: %w", err)
	}

	return entries, nil
}

// Put upserts a service entry
func (r *PGCatalogStore) Put(ctx context.Context, entry *models.ServiceEntry) error {
	query := `
		INSERT INTO service_entry (id, name, note, telcos, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, note = $3, telcos = $4, active = $5, updated_at = $6
	`

	telcos, err := json.Marshal(entry.Telcos)
	if err != nil {
		return fmt.Errorf("failed to marshal telcos: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		entry.ID,
		entry.Name,
		entry.Note,
		telcos,
		entry.Active,
		entry.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to put service entry: %w", err)
	}

	return nil
}

// Delete removes a service entry
func (r *PGCatalogStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM service_entry WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete service entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("service not found: %s", id)
	}

	return nil
}

// ReplaceAll swaps the whole catalog inside one transaction
func (r *PGCatalogStore) ReplaceAll(ctx context.Context, entries []*models.ServiceEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM service_entry`); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	query := `
		INSERT INTO service_entry (id, name, note, telcos, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, entry := range entries {
		telcos, err := json.Marshal(entry.Telcos)
		if err != nil {
			return fmt.Errorf("failed to marshal telcos: %w", err)
		}
		if _, err := tx.Exec(ctx, query,
			entry.ID, entry.Name, entry.Note, telcos, entry.Active, entry.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert service entry %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit catalog replacement: %w", err)
	}

	return nil
}

// Health checks database health
func (r *PGCatalogStore) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

type pgRow interface {
	Scan(dest ...any) error
}

func (r *PGCatalogStore) scanEntry(row pgRow) (*models.ServiceEntry, error) {
	entry := &models.ServiceEntry{}
	var telcos []byte

	if err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Note,
		&telcos,
		&entry.Active,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(telcos, &entry.Telcos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal telcos: %w", err)
	}
	if entry.Telcos == nil {
		entry.Telcos = make(map[models.Network]models.TelcoRecord)
	}

	return entry, nil
}
