package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/common/apperr"
	"github.com/dialwise/directory/common/logger"
)

// FileLedgerStore keeps change requests as flat JSON keyed by request
// id (changes.json in the data directory)
type FileLedgerStore struct {
	path     string
	mu       sync.RWMutex
	requests map[uuid.UUID]*models.ChangeRequest
	log      *logger.Logger
}

// NewFileLedgerStore loads or creates the ledger file
func NewFileLedgerStore(dir string, log *logger.Logger) (*FileLedgerStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &FileLedgerStore{
		path:     filepath.Join(dir, "changes.json"),
		requests: make(map[uuid.UUID]*models.ChangeRequest),
		log:      log,
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		log.Info("ledger file not found, starting empty", "path", s.path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	if err := json.Unmarshal(data, &s.requests); err != nil {
		return nil, fmt.Errorf("parse ledger file %s: %w", s.path, err)
	}

	log.Info("ledger loaded", "path", s.path, "requests", len(s.requests))
	return s, nil
}

// Get retrieves a change request by id
func (s *FileLedgerStore) Get(ctx context.Context, id uuid.UUID) (*models.ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, apperr.NotFound("change request not found: %s", id)
	}
	return req.Clone(), nil
}

// List retrieves all change requests
func (s *FileLedgerStore) List(ctx context.Context) ([]*models.ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requests := make([]*models.ChangeRequest, 0, len(s.requests))
	for _, req := range s.requests {
		requests = append(requests, req.Clone())
	}
	return requests, nil
}

// FindLive returns the live request with the given status for (serviceID, field)
func (s *FileLedgerStore) FindLive(ctx context.Context, serviceID string, field models.FieldPath, status models.ChangeStatus) (*models.ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, req := range s.requests {
		if req.ServiceID == serviceID && req.Field == field && req.Status == status {
			return req.Clone(), nil
		}
	}
	return nil, apperr.NotFound("no %s change request for %s %s", status, serviceID, field)
}

// Put upserts a change request
func (s *FileLedgerStore) Put(ctx context.Context, req *models.ChangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests[req.ID] = req.Clone()
	return s.persistLocked()
}

// Delete removes a change request
func (s *FileLedgerStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[id]; !ok {
		return apperr.NotFound("change request not found: %s", id)
	}
	delete(s.requests, id)
	return s.persistLocked()
}

// Health checks that the data directory is still writable
func (s *FileLedgerStore) Health(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

// persistLocked writes the ledger atomically. Caller holds the write lock.
func (s *FileLedgerStore) persistLocked() error {
	data, err := json.MarshalIndent(s.requests, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
