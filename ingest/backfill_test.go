package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/ingest"
	"github.com/buidl-labs/muxsync/mocks"
	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/muxapi"
	"github.com/buidl-labs/muxsync/payload"
	"github.com/buidl-labs/muxsync/validation"
)

func remoteAssets(n int) []payload.Object {
	out := make([]payload.Object, n)
	for i := range out {
		out[i] = payload.Object{"id": fmt.Sprintf("asset-%02d", i), "status": "ready"}
	}
	return out
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func TestBackfillOptionsWithDefaults(t *testing.T) {
	defaults := ingest.BackfillOptions{MaxAssets: intPtr(10), DefaultUserID: "ops", IncludeVideoMetadata: boolPtr(false)}

	got := ingest.BackfillOptions{}.WithDefaults(defaults)
	assert.Equal(t, 10, *got.MaxAssets)
	assert.Equal(t, "ops", got.DefaultUserID)
	assert.False(t, *got.IncludeVideoMetadata)

	got = ingest.BackfillOptions{MaxAssets: intPtr(3), DefaultUserID: "me", IncludeVideoMetadata: boolPtr(true)}.WithDefaults(defaults)
	assert.Equal(t, 3, *got.MaxAssets)
	assert.Equal(t, "me", got.DefaultUserID)
	assert.True(t, *got.IncludeVideoMetadata)
	assert.Equal(t, 10, *defaults.MaxAssets)
}

func TestBackfillStopsAtMaxAssets(t *testing.T) {
	client := &mocks.Client{}
	client.On("ListAssets", mock.Anything, 1, muxapi.DefaultPageSize).Return(remoteAssets(12), nil).Once()
	svc, db := newService(t, ingest.Config{Client: client})

	res, err := svc.Backfill(context.Background(), ingest.BackfillOptions{MaxAssets: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Scanned)
	assert.Equal(t, 5, res.SyncedAssets)
	assert.Equal(t, 5, res.MetadataUpserts)
	assert.Equal(t, 5, res.MissingUserID)

	assets, err := dataservice.NewAssetDatabase(db).ListAssets(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, assets, 5)
	client.AssertExpectations(t)
}

func TestBackfillWalksAllPages(t *testing.T) {
	client := &mocks.Client{}
	page := remoteAssets(3)
	page[0]["passthrough"] = `{"userId":"u1","title":"Hello"}`
	page[1]["passthrough"] = "u2"
	delete(page[2], "id")
	client.On("ListAssets", mock.Anything, 1, muxapi.DefaultPageSize).Return(page, nil).Once()
	client.On("ListAssets", mock.Anything, 2, muxapi.DefaultPageSize).Return([]payload.Object{}, nil).Once()
	svc, db := newService(t, ingest.Config{Client: client})

	res, err := svc.Backfill(context.Background(), ingest.BackfillOptions{DefaultUserID: "fallback"})
	require.NoError(t, err)
	assert.Equal(t, ingest.BackfillResult{Scanned: 3, SyncedAssets: 2, MetadataUpserts: 2}, res)

	meta, err := dataservice.NewVideoMetadataDatabase(db).GetVideoMetadata(context.Background(), "asset-00", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", *meta.Title)
	client.AssertExpectations(t)
}

func TestBackfillWithoutMetadata(t *testing.T) {
	client := &mocks.Client{}
	client.On("ListAssets", mock.Anything, 1, muxapi.DefaultPageSize).Return(remoteAssets(2), nil).Once()
	client.On("ListAssets", mock.Anything, 2, muxapi.DefaultPageSize).Return(nil, nil).Once()
	svc, db := newService(t, ingest.Config{Client: client})

	res, err := svc.Backfill(context.Background(), ingest.BackfillOptions{IncludeVideoMetadata: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.SyncedAssets)
	assert.Zero(t, res.MetadataUpserts)

	_, err = dataservice.NewVideoMetadataDatabase(db).GetVideoMetadata(context.Background(), "asset-00", model.PlaceholderUserID)
	assert.ErrorIs(t, err, dataservice.ErrNotFound)
}

func TestBackfillRemoteFailureKeepsCounters(t *testing.T) {
	client := &mocks.Client{}
	client.On("ListAssets", mock.Anything, 1, 100).Return(remoteAssets(100), nil).Once()
	client.On("ListAssets", mock.Anything, 2, 100).Return(nil, errors.New("timeout")).Once()
	svc, _ := newService(t, ingest.Config{Client: client})

	res, err := svc.Backfill(context.Background(), ingest.BackfillOptions{MaxAssets: intPtr(150)})
	var remote *ingest.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 100, res.Scanned)
	assert.Equal(t, 100, res.SyncedAssets)
}

func TestBackfillValidation(t *testing.T) {
	svc, _ := newService(t, ingest.Config{Client: &mocks.Client{}})

	_, err := svc.Backfill(context.Background(), ingest.BackfillOptions{MaxAssets: intPtr(0)})
	assert.True(t, validation.IsValidationError(err))
}

func TestBackfillRequiresCredentials(t *testing.T) {
	svc, _ := newService(t, ingest.Config{})

	_, err := svc.Backfill(context.Background(), ingest.BackfillOptions{})
	assert.ErrorIs(t, err, ingest.ErrNoCredentials)
}
