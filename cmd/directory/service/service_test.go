package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/cmd/directory/repository"
	"github.com/dialwise/directory/common/cache"
	"github.com/dialwise/directory/common/logger"
)

const testCodeRule = `value == "" || value.matches('^[*#][0-9*#]*#$')`

var (
	admin      = models.Actor{Name: "ama", Role: models.RoleAdmin}
	mtnRep     = models.Actor{Name: "kofi", Role: models.Role(models.NetworkMTN)}
	telecelRep = models.Actor{Name: "esi", Role: models.Role(models.NetworkTelecel)}
)

type testEnv struct {
	catalog  *CatalogService
	ledger   *LedgerService
	transfer *TransferService
}

func newTestEnv(t *testing.T) *testEnv {
	return buildTestEnv(t, nil)
}

// newTestEnvWithMemoryCache wires a real memory cache in front of the
// catalog so invalidation paths get exercised
func newTestEnvWithMemoryCache(t *testing.T) *testEnv {
	t.Helper()
	c := cache.NewMemoryCache(logger.New("error", "json"))
	t.Cleanup(func() { _ = c.Close() })
	return buildTestEnv(t, c)
}

func buildTestEnv(t *testing.T, c cache.Cache) *testEnv {
	t.Helper()
	log := logger.New("error", "json")
	dir := t.TempDir()

	catalogRepo, err := repository.NewFileCatalogStore(dir, log)
	require.NoError(t, err)
	ledgerRepo, err := repository.NewFileLedgerStore(dir, log)
	require.NoError(t, err)

	rule, err := NewCodeRule(testCodeRule)
	require.NoError(t, err)

	catalog := NewCatalogService(catalogRepo, c, time.Minute, rule, log)
	ledger := NewLedgerService(ledgerRepo, catalog, rule, log)
	transfer := NewTransferService(catalogRepo, catalog, rule, log)
	return &testEnv{catalog: catalog, ledger: ledger, transfer: transfer}
}

// seedBalance installs a check_balance entry with records for mtn and glo
func (e *testEnv) seedBalance(t *testing.T) *models.ServiceEntry {
	t.Helper()
	entry, err := e.catalog.Create(context.Background(), admin, &models.ServiceEntry{
		ID:   "check_balance",
		Name: "Check Balance",
		Note: "internal guidance",
		Telcos: map[models.Network]models.TelcoRecord{
			models.NetworkMTN: {Code: "*124#", Explanation: "balance enquiry"},
			models.NetworkGlo: {Code: "*124#"},
		},
		Active: true,
	})
	require.NoError(t, err)
	return entry
}
