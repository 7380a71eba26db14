package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/common/apperr"
)

func TestCatalogLookup(t *testing.T) {
	env := newTestEnv(t)
	env.seedBalance(t)
	ctx := context.Background()

	rec, err := env.catalog.Lookup(ctx, "check_balance", "glo")
	require.NoError(t, err)
	assert.Equal(t, "*124#", rec.Code)

	// ids and networks normalize before lookup
	rec, err = env.catalog.Lookup(ctx, "  Check_Balance ", " MTN ")
	require.NoError(t, err)
	assert.Equal(t, "*124#", rec.Code)
	assert.Equal(t, "balance enquiry", rec.Explanation)

	_, err = env.catalog.Lookup(ctx, "check_balance", "vodafone")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = env.catalog.Lookup(ctx, "no_such_service", "mtn")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// entry exists but carries no record for the network
	_, err = env.catalog.Lookup(ctx, "check_balance", "telecel")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCatalogListNames(t *testing.T) {
	env := newTestEnv(t)
	env.seedBalance(t)
	ctx := context.Background()

	_, err := env.catalog.Create(ctx, admin, &models.ServiceEntry{
		ID:   "airtime_topup",
		Name: "Airtime Top-Up",
		Telcos: map[models.Network]models.TelcoRecord{
			models.NetworkTelecel: {Code: "*134#"},
		},
		Active: true,
	})
	require.NoError(t, err)

	names, err := env.catalog.ListNames(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Airtime Top-Up", "Check Balance"}, names)

	names, err = env.catalog.ListNames(ctx, "mtn")
	require.NoError(t, err)
	assert.Equal(t, []string{"Check Balance"}, names)

	names, err = env.catalog.ListNames(ctx, "airteltigo")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = env.catalog.ListNames(ctx, "bogus")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestCatalogCompare(t *testing.T) {
	env := newTestEnv(t)
	env.seedBalance(t)

	result, err := env.catalog.Compare(context.Background(), "check_balance")
	require.NoError(t, err)
	require.Len(t, result, 4)

	require.NotNil(t, result[models.NetworkMTN])
	assert.Equal(t, "*124#", *result[models.NetworkMTN])
	require.NotNil(t, result[models.NetworkGlo])
	assert.Nil(t, result[models.NetworkTelecel])
	assert.Nil(t, result[models.NetworkAirtelTigo])
}

func TestCatalogCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.Create(ctx, mtnRep, &models.ServiceEntry{ID: "x", Name: "X"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = env.catalog.Create(ctx, admin, &models.ServiceEntry{ID: "  ", Name: "X"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	env.seedBalance(t)
	_, err = env.catalog.Create(ctx, admin, &models.ServiceEntry{ID: "check_balance", Name: "Dup"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// dial codes are checked against the rule on create
	_, err = env.catalog.Create(ctx, admin, &models.ServiceEntry{
		ID:   "bad_code",
		Name: "Bad",
		Telcos: map[models.Network]models.TelcoRecord{
			models.NetworkMTN: {Code: "124"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestCatalogMerge(t *testing.T) {
	env := newTestEnv(t)
	env.seedBalance(t)
	ctx := context.Background()

	updated, err := env.catalog.Merge(ctx, admin, "check_balance",
		[]byte(`{"name":"Balance Enquiry","telcos":{"telecel":{"code":"*124#"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "Balance Enquiry", updated.Name)
	assert.Equal(t, "*124#", updated.Telcos[models.NetworkTelecel].Code)
	// untouched fields survive the merge
	assert.Equal(t, "balance enquiry", updated.Telcos[models.NetworkMTN].Explanation)

	_, err = env.catalog.Merge(ctx, mtnRep, "check_balance", []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = env.catalog.Merge(ctx, admin, "check_balance", []byte(`{"telcos":{"mtn":{"code":"nope"}}}`))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestCatalogMergeRename(t *testing.T) {
	env := newTestEnv(t)
	env.seedBalance(t)
	ctx := context.Background()

	renamed, err := env.catalog.Merge(ctx, admin, "check_balance", []byte(`{"id":"balance"}`))
	require.NoError(t, err)
	assert.Equal(t, "balance", renamed.ID)

	// the old key is gone, the new one resolves
	_, err = env.catalog.Get(ctx, "check_balance")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	moved, err := env.catalog.Get(ctx, "balance")
	require.NoError(t, err)
	assert.Equal(t, "*124#", moved.Telcos[models.NetworkMTN].Code)
}

func TestCatalogDelete(t *testing.T) {
	env := newTestEnv(t)
	env.seedBalance(t)
	ctx := context.Background()

	err := env.catalog.Delete(ctx, mtnRep, "check_balance")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, env.catalog.Delete(ctx, admin, "check_balance"))

	err = env.catalog.Delete(ctx, admin, "check_balance")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCatalogApplyFieldValue(t *testing.T) {
	env := newTestEnvWithMemoryCache(t)
	seeded := env.seedBalance(t)
	ctx := context.Background()

	// warm the cache so the apply must invalidate it
	rec, err := env.catalog.Lookup(ctx, "check_balance", "mtn")
	require.NoError(t, err)
	assert.Equal(t, "*124#", rec.Code)

	field := models.FieldPath{Network: models.NetworkMTN, Leaf: models.LeafCode}
	require.NoError(t, env.catalog.ApplyFieldValue(ctx, "check_balance", field, "*125#"))

	rec, err = env.catalog.Lookup(ctx, "check_balance", "mtn")
	require.NoError(t, err)
	assert.Equal(t, "*125#", rec.Code)

	entry, err := env.catalog.Get(ctx, "check_balance")
	require.NoError(t, err)
	assert.True(t, entry.UpdatedAt.After(seeded.UpdatedAt))

	// a failing rule leaves the catalog untouched
	err = env.catalog.ApplyFieldValue(ctx, "check_balance", field, "invalid")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	rec, err = env.catalog.Lookup(ctx, "check_balance", "mtn")
	require.NoError(t, err)
	assert.Equal(t, "*125#", rec.Code)

	// explanation leaves materialize an absent network record
	err = env.catalog.ApplyFieldValue(ctx, "check_balance",
		models.FieldPath{Network: models.NetworkAirtelTigo, Leaf: models.LeafExplanation}, "dial from the main menu")
	require.NoError(t, err)

	entry, err = env.catalog.Get(ctx, "check_balance")
	require.NoError(t, err)
	assert.Equal(t, "dial from the main menu", entry.Telcos[models.NetworkAirtelTigo].Explanation)
	assert.Equal(t, "", entry.Telcos[models.NetworkAirtelTigo].Code)
}
