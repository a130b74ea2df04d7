package dataservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/payload"
	"github.com/buidl-labs/muxsync/validation"
)

func TestUpsertUpload(t *testing.T) {
	ctx := context.Background()
	upDB := dataservice.NewUploadDatabase(newTestDatabase(t))

	_, err := upDB.UpsertUpload(ctx, payload.Object{
		"id":          "up-1",
		"status":      "waiting",
		"url":         "https://storage.example/upload",
		"timeout":     3600,
		"cors_origin": "*",
	})
	require.NoError(t, err)

	_, err = upDB.UpsertUpload(ctx, payload.Object{
		"id":       "up-1",
		"status":   "asset_created",
		"asset_id": "asset-9",
	})
	require.NoError(t, err)

	up, err := upDB.GetUploadByMuxID(ctx, "up-1")
	require.NoError(t, err)
	assert.Equal(t, "asset_created", *up.Status)
	assert.Equal(t, "asset-9", *up.AssetID)
	assert.Equal(t, "https://storage.example/upload", *up.UploadURL)
	assert.Equal(t, 3600.0, *up.TimeoutSeconds)
}

func TestUpsertUploadErrorObject(t *testing.T) {
	ctx := context.Background()
	upDB := dataservice.NewUploadDatabase(newTestDatabase(t))

	_, err := upDB.UpsertUpload(ctx, payload.Object{
		"id":     "up-1",
		"status": "errored",
		"error":  map[string]interface{}{"type": "invalid_input", "message": "bad file"},
	})
	require.NoError(t, err)

	up, err := upDB.GetUploadByMuxID(ctx, "up-1")
	require.NoError(t, err)
	assert.Equal(t, "invalid_input", up.Error["type"])
}

func TestUpsertUploadMissingID(t *testing.T) {
	upDB := dataservice.NewUploadDatabase(newTestDatabase(t))

	_, err := upDB.UpsertUpload(context.Background(), payload.Object{"status": "waiting"})
	assert.True(t, validation.IsValidationError(err))
}

func TestMarkUploadDeleted(t *testing.T) {
	ctx := context.Background()
	upDB := dataservice.NewUploadDatabase(newTestDatabase(t))

	id, err := upDB.UpsertUpload(ctx, payload.Object{"id": "up-1", "status": "waiting"})
	require.NoError(t, err)

	deletedID, found, err := upDB.MarkUploadDeleted(ctx, "up-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, deletedID)

	ups, err := upDB.ListUploads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, model.StatusDeleted, *ups[0].Status)
}
