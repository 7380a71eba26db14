package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/cmd/directory/repository"
	"github.com/dialwise/directory/common/apperr"
	"github.com/dialwise/directory/common/cache"
	"github.com/dialwise/directory/common/logger"
)

// CatalogService owns the service catalog: public lookups, admin CRUD
// and the field applier invoked by approved change requests
type CatalogService struct {
	repo     repository.CatalogRepository
	cache    cache.Cache // may be nil when caching is disabled
	cacheTTL time.Duration
	rule     *CodeRule
	log      *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repository.CatalogRepository, c cache.Cache, cacheTTL time.Duration, rule *CodeRule, log *logger.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		rule:     rule,
		log:      log,
	}
}

// Get retrieves one service entry by id
func (s *CatalogService) Get(ctx context.Context, id string) (*models.ServiceEntry, error) {
	return s.repo.Get(ctx, models.NormalizeID(id))
}

// Full retrieves the whole catalog keyed by service id
func (s *CatalogService) Full(ctx context.Context) (map[string]*models.ServiceEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	full := make(map[string]*models.ServiceEntry, len(entries))
	for _, entry := range entries {
		full[entry.ID] = entry
	}
	return full, nil
}

// Lookup returns the dial code record for (service, network)
func (s *CatalogService) Lookup(ctx context.Context, service, network string) (*models.TelcoRecord, error) {
	n, err := models.ParseNetwork(network)
	if err != nil {
		return nil, err
	}
	id := models.NormalizeID(service)

	cacheKey := fmt.Sprintf("lookup:%s:%s", id, n)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			var rec models.TelcoRecord
			if err := json.Unmarshal(data, &rec); err == nil {
				return &rec, nil
			}
		}
	}

	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rec, ok := entry.Telcos[n]
	if !ok {
		return nil, apperr.NotFound("service %s has no record for network %s", id, n)
	}

	if s.cache != nil {
		if data, err := json.Marshal(rec); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				s.log.Warn("failed to cache lookup", "key", cacheKey, "error", err)
			}
		}
	}

	return &rec, nil
}

// ListNames returns sorted service display names, optionally restricted
// to services carrying a record for one network
func (s *CatalogService) ListNames(ctx context.Context, network string) ([]string, error) {
	var filter models.Network
	if network != "" {
		n, err := models.ParseNetwork(network)
		if err != nil {
			return nil, err
		}
		filter = n
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if filter != "" {
			if _, ok := entry.Telcos[filter]; !ok {
				continue
			}
		}
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Compare returns the dial code per network for one service, nil where
// the network has no record
func (s *CatalogService) Compare(ctx context.Context, service string) (map[models.Network]*string, error) {
	entry, err := s.repo.Get(ctx, models.NormalizeID(service))
	if err != nil {
		return nil, err
	}

	result := make(map[models.Network]*string, 4)
	for _, n := range models.Networks() {
		if rec, ok := entry.Telcos[n]; ok {
			code := rec.Code
			result[n] = &code
		} else {
			result[n] = nil
		}
	}
	return result, nil
}

// Create adds a new service entry (admin only)
func (s *CatalogService) Create(ctx context.Context, actor models.Actor, entry *models.ServiceEntry) (*models.ServiceEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if models.NormalizeID(entry.ID) == "" {
		return nil, apperr.InvalidArgument("service id is required")
	}
	if err := entry.Normalize(); err != nil {
		return nil, err
	}
	if err := s.validateCodes(entry); err != nil {
		return nil, err
	}

	if _, err := s.repo.Get(ctx, entry.ID); err == nil {
		return nil, apperr.Conflict("service already exists: %s", entry.ID)
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	entry.UpdatedAt = time.Now()
	if err := s.repo.Put(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.invalidateLookup(ctx, entry.ID)
	s.log.WithService(entry.ID).Info("created service", "actor", actor.Name)
	return entry.Clone(), nil
}

// Merge applies an RFC 7386 JSON merge patch to a service entry (admin
// only). A patch that changes the id transplants the entry to the new key.
func (s *CatalogService) Merge(ctx context.Context, actor models.Actor, id string, patch []byte) (*models.ServiceEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	id = models.NormalizeID(id)
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	currentJSON, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current entry: %w", err)
	}

	mergedJSON, err := jsonpatch.MergePatch(currentJSON, patch)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid merge patch: %v", err)
	}

	merged := &models.ServiceEntry{}
	if err := json.Unmarshal(mergedJSON, merged); err != nil {
		return nil, apperr.InvalidArgument("merge result is not a valid entry: %v", err)
	}
	if err := merged.Normalize(); err != nil {
		return nil, err
	}
	if merged.ID == "" {
		return nil, apperr.InvalidArgument("service id may not be emptied")
	}
	if err := s.validateCodes(merged); err != nil {
		return nil, err
	}

	// Rename transplants the entry to the new key
	if merged.ID != id {
		if _, err := s.repo.Get(ctx, merged.ID); err == nil {
			return nil, apperr.Conflict("service already exists: %s", merged.ID)
		} else if !apperr.IsNotFound(err) {
			return nil, err
		}
	}

	merged.UpdatedAt = time.Now()
	if err := s.repo.Put(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	if merged.ID != id {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to remove renamed service %s: %w", id, err)
		}
		s.invalidateLookup(ctx, id)
	}

	s.invalidateLookup(ctx, merged.ID)
	s.log.WithService(merged.ID).Info("updated service", "renamed_from", id, "actor", actor.Name)
	return merged, nil
}

// Delete removes a service entry from the catalog (admin only)
func (s *CatalogService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	id = models.NormalizeID(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateLookup(ctx, id)
	s.log.WithService(id).Info("deleted service", "actor", actor.Name)
	return nil
}

// ApplyFieldValue commits a value into one per-network leaf and stamps
// the update time. This is the only path by which an approved change
// request reaches the catalog.
func (s *CatalogService) ApplyFieldValue(ctx context.Context, id string, field models.FieldPath, value string) error {
	if field.Leaf == models.LeafCode && s.rule != nil {
		if err := s.rule.Validate(value); err != nil {
			return err
		}
	}

	entry, err := s.repo.Get(ctx, models.NormalizeID(id))
	if err != nil {
		return err
	}

	entry.SetFieldValue(field, value)
	entry.UpdatedAt = time.Now()

	if err := s.repo.Put(ctx, entry); err != nil {
		return fmt.Errorf("failed to apply field value: %w", err)
	}

	s.invalidateLookup(ctx, entry.ID)
	s.log.WithService(entry.ID).Info("applied field value", "field", field.String())
	return nil
}

// validateCodes checks every dial code in the entry against the rule
func (s *CatalogService) validateCodes(entry *models.ServiceEntry) error {
	if s.rule == nil {
		return nil
	}
	for _, n := range models.Networks() {
		if rec, ok := entry.Telcos[n]; ok {
			if err := s.rule.Validate(rec.Code); err != nil {
				return err
			}
		}
	}
	return nil
}

// invalidateLookup drops all cached lookups for one service
func (s *CatalogService) invalidateLookup(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	for _, n := range models.Networks() {
		key := fmt.Sprintf("lookup:%s:%s", id, n)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("failed to invalidate lookup cache", "key", key, "error", err)
		}
	}
}
