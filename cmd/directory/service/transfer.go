package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/cmd/directory/repository"
	"github.com/dialwise/directory/common/apperr"
	"github.com/dialwise/directory/common/logger"
)

// ExportEntry is the full-schema export shape for one service. Guidance
// notes are deliberately excluded from export.
type ExportEntry struct {
	Name   string                                `json:"name"`
	Active bool                                  `json:"active"`
	Telcos map[models.Network]models.TelcoRecord `json:"telcos"`
}

// TransferService implements the export/import projections over the
// catalog: the full admin schema and the per-network subset
type TransferService struct {
	repo    repository.CatalogRepository
	catalog *CatalogService
	rule    *CodeRule
	log     *logger.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(repo repository.CatalogRepository, catalog *CatalogService, rule *CodeRule, log *logger.Logger) *TransferService {
	return &TransferService{
		repo:    repo,
		catalog: catalog,
		rule:    rule,
		log:     log,
	}
}

// ExportFull projects all active entries with every network field,
// keyed by service id, guidance notes stripped
func (s *TransferService) ExportFull(ctx context.Context) (map[string]ExportEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	exported := make(map[string]ExportEntry)
	for _, entry := range entries {
		if !entry.Active {
			continue
		}
		exported[entry.ID] = ExportEntry{
			Name:   entry.Name,
			Active: entry.Active,
			Telcos: entry.Telcos,
		}
	}
	return exported, nil
}

// ImportFull replaces the catalog wholesale (admin only). Missing
// fields default to empty strings; guidance notes are lost.
func (s *TransferService) ImportFull(ctx context.Context, actor models.Actor, payload map[string]ExportEntry) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}

	previous, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list catalog: %w", err)
	}

	now := time.Now()
	entries := make([]*models.ServiceEntry, 0, len(payload))
	for id, imported := range payload {
		entry := &models.ServiceEntry{
			ID:        id,
			Name:      imported.Name,
			Telcos:    imported.Telcos,
			Active:    imported.Active,
			UpdatedAt: now,
		}
		if err := entry.Normalize(); err != nil {
			return 0, err
		}
		if entry.ID == "" {
			return 0, apperr.InvalidArgument("imported entry has an empty service id")
		}
		if err := s.catalog.validateCodes(entry); err != nil {
			return 0, err
		}
		entries = append(entries, entry)
	}

	if err := s.repo.ReplaceAll(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to replace catalog: %w", err)
	}

	// Drop stale lookups for everything that existed before or after
	for _, entry := range previous {
		s.catalog.invalidateLookup(ctx, entry.ID)
	}
	for _, entry := range entries {
		s.catalog.invalidateLookup(ctx, entry.ID)
	}

	s.log.WithActor(actor.Name, string(actor.Role)).Info("imported full catalog", "entries", len(entries))
	return len(entries), nil
}

// ExportNetwork projects only one network's code/explanation for all
// active entries carrying a record for it, keyed by service id
func (s *TransferService) ExportNetwork(ctx context.Context, network string) (map[string]models.TelcoRecord, error) {
	n, err := models.ParseNetwork(network)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	exported := make(map[string]models.TelcoRecord)
	for _, entry := range entries {
		if !entry.Active {
			continue
		}
		if rec, ok := entry.Telcos[n]; ok {
			exported[entry.ID] = rec
		}
	}
	return exported, nil
}

// ImportNetwork merges one network's fields into existing services,
// silently skipping unknown service ids. Touches nothing but that
// network's record and the update timestamp. Callable by admin or by
// that network's representative.
func (s *TransferService) ImportNetwork(ctx context.Context, actor models.Actor, network string, rows map[string]models.TelcoRecord) (applied, skipped int, err error) {
	n, err := models.ParseNetwork(network)
	if err != nil {
		return 0, 0, err
	}
	if !actor.Role.IsAdmin() {
		owned, ok := actor.Role.Network()
		if !ok || owned != n {
			return 0, 0, apperr.Forbidden("role %s may not import %s data", actor.Role, n)
		}
	}

	if s.rule != nil {
		for id, rec := range rows {
			if err := s.rule.Validate(rec.Code); err != nil {
				return 0, 0, fmt.Errorf("row %s: %w", id, err)
			}
		}
	}

	now := time.Now()
	for id, rec := range rows {
		entry, err := s.repo.Get(ctx, models.NormalizeID(id))
		if apperr.IsNotFound(err) {
			skipped++
			continue
		}
		if err != nil {
			return applied, skipped, err
		}

		entry.Telcos[n] = rec
		entry.UpdatedAt = now
		if err := s.repo.Put(ctx, entry); err != nil {
			return applied, skipped, fmt.Errorf("failed to update service %s: %w", entry.ID, err)
		}
		s.catalog.invalidateLookup(ctx, entry.ID)
		applied++
	}

	s.log.WithActor(actor.Name, string(actor.Role)).Info("imported network subset",
		"network", n,
		"applied", applied,
		"skipped", skipped,
	)
	return applied, skipped, nil
}
