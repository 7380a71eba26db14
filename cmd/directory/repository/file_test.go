package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/common/apperr"
	"github.com/dialwise/directory/common/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}

func TestFileCatalogStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileCatalogStore(dir, testLogger())
	require.NoError(t, err)

	entry := &models.ServiceEntry{
		ID:   "check_balance",
		Name: "Check Balance",
		Telcos: map[models.Network]models.TelcoRecord{
			models.NetworkMTN: {Code: "*124#", Explanation: "balance enquiry"},
		},
		Active:    true,
		UpdatedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, entry))

	// a second store over the same directory sees the persisted state
	reopened, err := NewFileCatalogStore(dir, testLogger())
	require.NoError(t, err)

	got, err := reopened.Get(ctx, "check_balance")
	require.NoError(t, err)
	assert.Equal(t, entry.Name, got.Name)
	assert.Equal(t, "*124#", got.Telcos[models.NetworkMTN].Code)
	assert.True(t, got.Active)

	entries, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileCatalogStoreNotFound(t *testing.T) {
	store, err := NewFileCatalogStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = store.Delete(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFileCatalogStoreClonesOnRead(t *testing.T) {
	store, err := NewFileCatalogStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.ServiceEntry{
		ID:     "x",
		Telcos: map[models.Network]models.TelcoRecord{models.NetworkGlo: {Code: "*1#"}},
	}))

	first, err := store.Get(ctx, "x")
	require.NoError(t, err)
	first.Telcos[models.NetworkGlo] = models.TelcoRecord{Code: "mutated"}

	second, err := store.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "*1#", second.Telcos[models.NetworkGlo].Code)
}

func TestFileCatalogStoreReplaceAll(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileCatalogStore(dir, testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, &models.ServiceEntry{ID: "old"}))

	require.NoError(t, store.ReplaceAll(ctx, []*models.ServiceEntry{
		{ID: "a"}, {ID: "b"},
	}))

	_, err = store.Get(ctx, "old")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// no temp file left behind after the atomic write
	_, err = os.Stat(filepath.Join(dir, "catalog.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileCatalogStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.json"), []byte("{not json"), 0o644))

	_, err := NewFileCatalogStore(dir, testLogger())
	require.Error(t, err)
}

func TestFileLedgerStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileLedgerStore(dir, testLogger())
	require.NoError(t, err)

	req := &models.ChangeRequest{
		ID:          uuid.New(),
		ServiceID:   "check_balance",
		Field:       models.FieldPath{Network: models.NetworkMTN, Leaf: models.LeafCode},
		OldValue:    "*124#",
		NewValue:    "*125#",
		RequestedBy: "kofi",
		RequestedAt: time.Now().Truncate(time.Second),
		Status:      models.StatusDraft,
	}
	require.NoError(t, store.Put(ctx, req))

	reopened, err := NewFileLedgerStore(dir, testLogger())
	require.NoError(t, err)

	got, err := reopened.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ServiceID, got.ServiceID)
	assert.Equal(t, req.Field, got.Field)
	assert.Equal(t, models.StatusDraft, got.Status)
	assert.Nil(t, got.ReviewedBy)
}

func TestFileLedgerStoreFindLive(t *testing.T) {
	store, err := NewFileLedgerStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	field := models.FieldPath{Network: models.NetworkGlo, Leaf: models.LeafCode}
	draft := &models.ChangeRequest{
		ID:        uuid.New(),
		ServiceID: "check_balance",
		Field:     field,
		Status:    models.StatusDraft,
	}
	require.NoError(t, store.Put(ctx, draft))

	found, err := store.FindLive(ctx, "check_balance", field, models.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, found.ID)

	// same slot, different status
	_, err = store.FindLive(ctx, "check_balance", field, models.StatusPending)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// different field, same status
	otherField := models.FieldPath{Network: models.NetworkGlo, Leaf: models.LeafExplanation}
	_, err = store.FindLive(ctx, "check_balance", otherField, models.StatusDraft)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFileLedgerStoreDelete(t *testing.T) {
	store, err := NewFileLedgerStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	req := &models.ChangeRequest{ID: uuid.New(), Status: models.StatusDraft}
	require.NoError(t, store.Put(ctx, req))
	require.NoError(t, store.Delete(ctx, req.ID))

	_, err = store.Get(ctx, req.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = store.Delete(ctx, req.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
