package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/common/apperr"
	"github.com/dialwise/directory/common/logger"
)

// FileCatalogStore keeps the catalog as flat JSON keyed by service id
// (catalog.json in the data directory), mirroring the original
// persisted layout. All access goes through one RWMutex; writes go to
// a temp file first and are renamed into place.
type FileCatalogStore struct {
	path    string
	mu      sync.RWMutex
	entries map[string]*models.ServiceEntry
	log     *logger.Logger
}

// NewFileCatalogStore loads or creates the catalog file
func NewFileCatalogStore(dir string, log *logger.Logger) (*FileCatalogStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &FileCatalogStore{
		path:    filepath.Join(dir, "catalog.json"),
		entries: make(map[string]*models.ServiceEntry),
		log:     log,
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		log.Info("catalog file not found, starting empty", "path", s.path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", s.path, err)
	}

	log.Info("catalog loaded", "path", s.path, "entries", len(s.entries))
	return s, nil
}

// Get retrieves a service entry by id
func (s *FileCatalogStore) Get(ctx context.Context, id string) (*models.ServiceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, apperr.NotFound("service not found: %s", id)
	}
	return entry.Clone(), nil
}

// List retrieves all service entries
func (s *FileCatalogStore) List(ctx context.Context) ([]*models.ServiceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*models.ServiceEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry.Clone())
	}
	return entries, nil
}

// Put upserts a service entry
func (s *FileCatalogStore) Put(ctx context.Context, entry *models.ServiceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.ID] = entry.Clone()
	return s.persistLocked()
}

// Delete removes a service entry
func (s *FileCatalogStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return apperr.NotFound("service not found: %s", id)
	}
	delete(s.entries, id)
	return s.persistLocked()
}

// ReplaceAll swaps the whole catalog
func (s *FileCatalogStore) ReplaceAll(ctx context.Context, entries []*models.ServiceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make(map[string]*models.ServiceEntry, len(entries))
	for _, entry := range entries {
		replacement[entry.ID] = entry.Clone()
	}
	s.entries = replacement
	return s.persistLocked()
}

// Health checks that the data directory is still writable
func (s *FileCatalogStore) Health(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

// persistLocked writes the catalog atomically. Caller holds the write lock.
func (s *FileCatalogStore) persistLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write catalog temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}
