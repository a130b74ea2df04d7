package dataservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/payload"
	"github.com/buidl-labs/muxsync/validation"
)

func newTestDatabase(t *testing.T) dataservice.DatabaseHelper {
	t.Helper()
	db := dataservice.NewMemoryDatabase()
	require.NoError(t, dataservice.EnsureIndexes(context.Background(), db))
	return db
}

func TestNewAssetDatabase(t *testing.T) {
	assetDB := dataservice.NewAssetDatabase(dataservice.NewMemoryDatabase())
	assert.NotEmpty(t, assetDB)
}

func TestUpsertAssetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	assetDB := dataservice.NewAssetDatabase(newTestDatabase(t))

	p := payload.Object{"id": "asset-1", "status": "preparing", "duration": 12.5}
	first, err := assetDB.UpsertAsset(ctx, p)
	require.NoError(t, err)
	second, err := assetDB.UpsertAsset(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assets, err := assetDB.ListAssets(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}

func TestUpsertAssetSparseMerge(t *testing.T) {
	ctx := context.Background()
	assetDB := dataservice.NewAssetDatabase(newTestDatabase(t))

	_, err := assetDB.UpsertAsset(ctx, payload.Object{
		"id":           "asset-1",
		"status":       "preparing",
		"aspect_ratio": "16:9",
		"playback_ids": []interface{}{map[string]interface{}{"id": "pb-1", "policy": "public"}},
	})
	require.NoError(t, err)

	_, err = assetDB.UpsertAsset(ctx, payload.Object{"id": "asset-1", "status": "ready", "duration": 30.0})
	require.NoError(t, err)

	asset, err := assetDB.GetAssetByMuxID(ctx, "asset-1")
	require.NoError(t, err)
	assert.Equal(t, "ready", *asset.Status)
	assert.Equal(t, "16:9", *asset.AspectRatio)
	assert.Equal(t, 30.0, *asset.DurationSeconds)
	require.Len(t, asset.PlaybackIDs, 1)
	assert.Equal(t, "pb-1", asset.PlaybackIDs[0].ID)
	assert.Equal(t, "ready", asset.Raw["status"])
	assert.NotZero(t, asset.CreatedAtMs)
	assert.GreaterOrEqual(t, asset.UpdatedAtMs, asset.CreatedAtMs)
	assert.Nil(t, asset.DeletedAtMs)
}

func TestUpsertAssetDeletedStatusStampsDeletedAt(t *testing.T) {
	ctx := context.Background()
	assetDB := dataservice.NewAssetDatabase(newTestDatabase(t))

	_, err := assetDB.UpsertAsset(ctx, payload.Object{"id": "asset-1", "status": "deleted"})
	require.NoError(t, err)

	asset, err := assetDB.GetAssetByMuxID(ctx, "asset-1")
	require.NoError(t, err)
	assert.NotNil(t, asset.DeletedAtMs)
}

func TestUpsertAssetMissingID(t *testing.T) {
	assetDB := dataservice.NewAssetDatabase(newTestDatabase(t))

	_, err := assetDB.UpsertAsset(context.Background(), payload.Object{"status": "ready"})
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
}

func TestMarkAssetDeleted(t *testing.T) {
	ctx := context.Background()
	assetDB := dataservice.NewAssetDatabase(newTestDatabase(t))

	id, err := assetDB.UpsertAsset(ctx, payload.Object{"id": "asset-1", "status": "ready"})
	require.NoError(t, err)

	deletedID, found, err := assetDB.MarkAssetDeleted(ctx, "asset-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, deletedID)

	asset, err := assetDB.GetAssetByMuxID(ctx, "asset-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeleted, *asset.Status)
	assert.NotNil(t, asset.DeletedAtMs)
}

func TestMarkAssetDeletedUnknown(t *testing.T) {
	assetDB := dataservice.NewAssetDatabase(newTestDatabase(t))

	id, found, err := assetDB.MarkAssetDeleted(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, id)
}

func TestGetAssetNotFound(t *testing.T) {
	assetDB := dataservice.NewAssetDatabase(newTestDatabase(t))

	_, err := assetDB.GetAssetByMuxID(context.Background(), "nope")
	assert.True(t, errors.Is(err, dataservice.ErrNotFound))
}

func TestListAssetsByStatus(t *testing.T) {
	ctx := context.Background()
	assetDB := dataservice.NewAssetDatabase(newTestDatabase(t))

	for _, p := range []payload.Object{
		{"id": "a", "status": "ready"},
		{"id": "b", "status": "errored"},
		{"id": "c", "status": "ready"},
	} {
		_, err := assetDB.UpsertAsset(ctx, p)
		require.NoError(t, err)
	}

	ready, err := assetDB.ListAssetsByStatus(ctx, "ready", 10)
	require.NoError(t, err)
	assert.Len(t, ready, 2)

	limited, err := assetDB.ListAssets(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
