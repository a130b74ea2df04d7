package ingest

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/buidl-labs/muxsync/payload"
)

// CreateAsset creates an asset through the API and mirrors it locally.
func (s *Service) CreateAsset(ctx context.Context, params payload.Object) (payload.Object, error) {
	if err := s.requireClient(); err != nil {
		return nil, err
	}
	asset, err := s.client.CreateAsset(ctx, params)
	if err != nil {
		return nil, &RemoteError{Op: "create asset", Err: err}
	}
	if _, err := s.assets.UpsertAsset(ctx, asset); err != nil {
		return nil, err
	}
	log.Info("Created an asset: ", asset["id"])
	return asset, nil
}

// CreateDirectUpload creates a direct upload URL and mirrors the upload.
func (s *Service) CreateDirectUpload(ctx context.Context, params payload.Object) (payload.Object, error) {
	if err := s.requireClient(); err != nil {
		return nil, err
	}
	if params == nil {
		params = payload.Object{}
	}
	upload, err := s.client.CreateUpload(ctx, params)
	if err != nil {
		return nil, &RemoteError{Op: "create upload", Err: err}
	}
	if _, err := s.uploads.UpsertUpload(ctx, upload); err != nil {
		return nil, err
	}
	log.Info("Created a direct upload: ", upload["id"])
	return upload, nil
}

// CreateLiveStream creates a live stream and mirrors it locally.
func (s *Service) CreateLiveStream(ctx context.Context, params payload.Object) (payload.Object, error) {
	if err := s.requireClient(); err != nil {
		return nil, err
	}
	if params == nil {
		params = payload.Object{}
	}
	liveStream, err := s.client.CreateLiveStream(ctx, params)
	if err != nil {
		return nil, &RemoteError{Op: "create live stream", Err: err}
	}
	if _, err := s.liveStreams.UpsertLiveStream(ctx, liveStream); err != nil {
		return nil, err
	}
	log.Info("Created a live stream: ", liveStream["id"])
	return liveStream, nil
}

// SyncAssetByID refreshes one asset from the API.
func (s *Service) SyncAssetByID(ctx context.Context, muxAssetID string) (payload.Object, error) {
	if err := s.requireClient(); err != nil {
		return nil, err
	}
	asset, err := s.client.RetrieveAsset(ctx, muxAssetID)
	if err != nil {
		return nil, &RemoteError{Op: "retrieve asset", Err: err}
	}
	if _, err := s.assets.UpsertAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// SyncUploadByID refreshes one upload from the API.
func (s *Service) SyncUploadByID(ctx context.Context, muxUploadID string) (payload.Object, error) {
	if err := s.requireClient(); err != nil {
		return nil, err
	}
	upload, err := s.client.RetrieveUpload(ctx, muxUploadID)
	if err != nil {
		return nil, &RemoteError{Op: "retrieve upload", Err: err}
	}
	if _, err := s.uploads.UpsertUpload(ctx, upload); err != nil {
		return nil, err
	}
	return upload, nil
}

// SyncLiveStreamByID refreshes one live stream from the API.
func (s *Service) SyncLiveStreamByID(ctx context.Context, muxLiveStreamID string) (payload.Object, error) {
	if err := s.requireClient(); err != nil {
		return nil, err
	}
	liveStream, err := s.client.RetrieveLiveStream(ctx, muxLiveStreamID)
	if err != nil {
		return nil, &RemoteError{Op: "retrieve live stream", Err: err}
	}
	if _, err := s.liveStreams.UpsertLiveStream(ctx, liveStream); err != nil {
		return nil, err
	}
	return liveStream, nil
}
