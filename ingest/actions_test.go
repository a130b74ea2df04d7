package ingest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/ingest"
	"github.com/buidl-labs/muxsync/mocks"
	"github.com/buidl-labs/muxsync/payload"
)

func TestCreateActionsMirrorLocally(t *testing.T) {
	ctx := context.Background()
	client := &mocks.Client{}
	client.On("CreateAsset", mock.Anything, payload.Object{"input": "https://example.com/v.mp4"}).
		Return(payload.Object{"id": "a1", "status": "preparing"}, nil)
	client.On("CreateUpload", mock.Anything, payload.Object{}).
		Return(payload.Object{"id": "up-1", "status": "waiting", "url": "https://upload"}, nil)
	client.On("CreateLiveStream", mock.Anything, payload.Object{}).
		Return(payload.Object{"id": "ls-1", "status": "idle"}, nil)
	svc, db := newService(t, ingest.Config{Client: client})

	asset, err := svc.CreateAsset(ctx, payload.Object{"input": "https://example.com/v.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "a1", asset["id"])
	_, err = svc.CreateDirectUpload(ctx, nil)
	require.NoError(t, err)
	_, err = svc.CreateLiveStream(ctx, nil)
	require.NoError(t, err)

	_, err = dataservice.NewAssetDatabase(db).GetAssetByMuxID(ctx, "a1")
	assert.NoError(t, err)
	up, err := dataservice.NewUploadDatabase(db).GetUploadByMuxID(ctx, "up-1")
	require.NoError(t, err)
	assert.Equal(t, "https://upload", *up.UploadURL)
	_, err = dataservice.NewLiveStreamDatabase(db).GetLiveStreamByMuxID(ctx, "ls-1")
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSyncActions(t *testing.T) {
	ctx := context.Background()
	client := &mocks.Client{}
	client.On("RetrieveAsset", mock.Anything, "a1").Return(payload.Object{"id": "a1", "status": "ready"}, nil)
	client.On("RetrieveUpload", mock.Anything, "up-1").Return(payload.Object{"id": "up-1", "status": "asset_created"}, nil)
	client.On("RetrieveLiveStream", mock.Anything, "ls-1").Return(payload.Object{"id": "ls-1", "status": "active"}, nil)
	svc, db := newService(t, ingest.Config{Client: client})

	_, err := svc.SyncAssetByID(ctx, "a1")
	require.NoError(t, err)
	_, err = svc.SyncUploadByID(ctx, "up-1")
	require.NoError(t, err)
	_, err = svc.SyncLiveStreamByID(ctx, "ls-1")
	require.NoError(t, err)

	asset, err := dataservice.NewAssetDatabase(db).GetAssetByMuxID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "ready", *asset.Status)
	client.AssertExpectations(t)
}

func TestActionsRequireCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, ingest.Config{})
	assert.False(t, svc.HasClient())

	_, err := svc.CreateAsset(ctx, payload.Object{})
	assert.ErrorIs(t, err, ingest.ErrNoCredentials)
	_, err = svc.CreateDirectUpload(ctx, nil)
	assert.ErrorIs(t, err, ingest.ErrNoCredentials)
	_, err = svc.CreateLiveStream(ctx, nil)
	assert.ErrorIs(t, err, ingest.ErrNoCredentials)
	_, err = svc.SyncAssetByID(ctx, "a1")
	assert.ErrorIs(t, err, ingest.ErrNoCredentials)
	_, err = svc.SyncUploadByID(ctx, "up-1")
	assert.ErrorIs(t, err, ingest.ErrNoCredentials)
	_, err = svc.SyncLiveStreamByID(ctx, "ls-1")
	assert.ErrorIs(t, err, ingest.ErrNoCredentials)
}
