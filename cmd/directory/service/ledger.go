package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/cmd/directory/repository"
	"github.com/dialwise/directory/common/apperr"
	"github.com/dialwise/directory/common/logger"
)

// LedgerService implements the change-request lifecycle:
//
//	draft -> pending -> approved | rejected
//	pending -> draft (recall)
//
// approved and rejected are terminal; terminal requests stay in the
// ledger as an audit trail. At most one draft and at most one pending
// request exist per (service, field) at any instant; mu serializes the
// read-then-write sections that uphold that invariant.
type LedgerService struct {
	repo    repository.LedgerRepository
	catalog *CatalogService
	rule    *CodeRule
	log     *logger.Logger
	mu      sync.Mutex
}

// NewLedgerService creates a new ledger service
func NewLedgerService(repo repository.LedgerRepository, catalog *CatalogService, rule *CodeRule, log *logger.Logger) *LedgerService {
	return &LedgerService{
		repo:    repo,
		catalog: catalog,
		rule:    rule,
		log:     log,
	}
}

// Get retrieves a change request by id
func (s *LedgerService) Get(ctx context.Context, id uuid.UUID) (*models.ChangeRequest, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves change requests, optionally filtered by service id and
// status, newest first
func (s *LedgerService) List(ctx context.Context, serviceID string, status string) ([]*models.ChangeRequest, error) {
	requests, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list change requests: %w", err)
	}

	serviceID = models.NormalizeID(serviceID)
	filtered := make([]*models.ChangeRequest, 0, len(requests))
	for _, req := range requests {
		if serviceID != "" && req.ServiceID != serviceID {
			continue
		}
		if status != "" && req.Status != models.ChangeStatus(status) {
			continue
		}
		filtered = append(filtered, req)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].RequestedAt.After(filtered[j].RequestedAt)
	})
	return filtered, nil
}

// CreateOrUpdateDraft files a draft for (serviceID, field), or
// overwrites the existing draft for that field in place. The old value
// is re-snapshotted from the catalog on every edit.
func (s *LedgerService) CreateOrUpdateDraft(ctx context.Context, actor models.Actor, serviceID, fieldPath, newValue string) (*models.ChangeRequest, error) {
	field, err := models.ParseFieldPath(fieldPath)
	if err != nil {
		return nil, err
	}
	if err := requireFieldAuthority(actor, field); err != nil {
		return nil, err
	}

	serviceID = models.NormalizeID(serviceID)
	entry, err := s.catalog.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if field.Leaf == models.LeafCode && s.rule != nil {
		if err := s.rule.Validate(newValue); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	draft, err := s.repo.FindLive(ctx, serviceID, field, models.StatusDraft)
	switch {
	case err == nil:
		// Edit updates the draft in place rather than creating a duplicate
		draft.OldValue = entry.FieldValue(field)
		draft.NewValue = newValue
		draft.RequestedBy = actor.Name
		draft.RequestedAt = now
	case apperr.IsNotFound(err):
		draft = &models.ChangeRequest{
			ID:          uuid.New(),
			ServiceID:   serviceID,
			Field:       field,
			OldValue:    entry.FieldValue(field),
			NewValue:    newValue,
			RequestedBy: actor.Name,
			RequestedAt: now,
			Status:      models.StatusDraft,
		}
	default:
		return nil, err
	}

	if err := s.repo.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.log.WithActor(actor.Name, string(actor.Role)).Info("saved draft",
		"request_id", draft.ID,
		"service_id", serviceID,
		"field", field.String(),
	)
	return draft.Clone(), nil
}

// Submit moves a draft to pending
func (s *LedgerService) Submit(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireFieldAuthority(actor, req.Field); err != nil {
		return nil, err
	}
	if req.Status != models.StatusDraft {
		return nil, apperr.NotFound("change request %s is not in draft (status %s)", id, req.Status)
	}

	// A pending request may already occupy the slot for this field
	if _, err := s.repo.FindLive(ctx, req.ServiceID, req.Field, models.StatusPending); err == nil {
		return nil, apperr.Conflict("a pending change request already exists for %s %s", req.ServiceID, req.Field)
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	req.Status = models.StatusPending
	req.RequestedAt = time.Now()
	if err := s.repo.Put(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to submit change request: %w", err)
	}

	s.log.WithActor(actor.Name, string(actor.Role)).Info("submitted change request", "request_id", id)
	return req.Clone(), nil
}

// Recall pulls a pending request back to draft for further editing.
// Only the original requester may recall.
func (s *LedgerService) Recall(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireRequester(actor, req); err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, apperr.NotFound("change request %s is not pending (status %s)", id, req.Status)
	}

	if _, err := s.repo.FindLive(ctx, req.ServiceID, req.Field, models.StatusDraft); err == nil {
		return nil, apperr.Conflict("a draft already exists for %s %s", req.ServiceID, req.Field)
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	req.Status = models.StatusDraft
	req.RequestedAt = time.Now()
	if err := s.repo.Put(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to recall change request: %w", err)
	}

	s.log.WithActor(actor.Name, string(actor.Role)).Info("recalled change request", "request_id", id)
	return req.Clone(), nil
}

// Approve accepts a pending request (admin only) and commits its value
// through the catalog applier. If the target service no longer exists
// the approval fails with NotFound and the request stays pending, so
// the admin sees the problem instead of an approved-but-inert record.
func (s *LedgerService) Approve(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ChangeRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, apperr.NotFound("change request %s is not pending (status %s)", id, req.Status)
	}

	if err := s.catalog.ApplyFieldValue(ctx, req.ServiceID, req.Field, req.NewValue); err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = models.StatusApproved
	req.ReviewedBy = &actor.Name
	req.ReviewedAt = &now
	if err := s.repo.Put(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to record approval: %w", err)
	}

	s.log.WithActor(actor.Name, string(actor.Role)).Info("approved change request",
		"request_id", id,
		"service_id", req.ServiceID,
		"field", req.Field.String(),
	)
	return req.Clone(), nil
}

// Reject declines a pending request (admin only). The catalog is never
// touched.
func (s *LedgerService) Reject(ctx context.Context, actor models.Actor, id uuid.UUID, comment string) (*models.ChangeRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, apperr.NotFound("change request %s is not pending (status %s)", id, req.Status)
	}

	now := time.Now()
	req.Status = models.StatusRejected
	req.ReviewedBy = &actor.Name
	req.ReviewedAt = &now
	if comment != "" {
		req.Comments = &comment
	}
	if err := s.repo.Put(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to record rejection: %w", err)
	}

	s.log.WithActor(actor.Name, string(actor.Role)).Info("rejected change request", "request_id", id)
	return req.Clone(), nil
}

// Cancel deletes a draft from the ledger entirely. Only the original
// requester may cancel, and only while the request is a draft.
func (s *LedgerService) Cancel(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireRequester(actor, req); err != nil {
		return err
	}
	if req.Status != models.StatusDraft {
		return apperr.NotFound("change request %s is not in draft (status %s)", id, req.Status)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithActor(actor.Name, string(actor.Role)).Info("cancelled draft", "request_id", id)
	return nil
}
