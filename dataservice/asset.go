package dataservice

import (
	"context"

	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/payload"
	"github.com/buidl-labs/muxsync/validation"
)

// AssetDatabase provides the asset db operations.
type AssetDatabase interface {
	UpsertAsset(ctx context.Context, asset payload.Object) (string, error)
	MarkAssetDeleted(ctx context.Context, muxAssetID string) (string, bool, error)
	GetAssetByMuxID(ctx context.Context, muxAssetID string) (model.Asset, error)
	ListAssets(ctx context.Context, limit int) ([]model.Asset, error)
	ListAssetsByStatus(ctx context.Context, status string, limit int) ([]model.Asset, error)
}

type assetDatabase struct {
	db DatabaseHelper
}

// NewAssetDatabase returns an instance of AssetDatabase.
func NewAssetDatabase(db DatabaseHelper) AssetDatabase {
	return &assetDatabase{
		db: db,
	}
}

// UpsertAsset sparse-merges the fields of an asset payload into the row
// with the same mux asset id, creating it on first sighting.
func (a *assetDatabase) UpsertAsset(ctx context.Context, asset payload.Object) (string, error) {
	f := payload.ExtractAsset(asset)
	if f.MuxAssetID == nil {
		return "", validation.Errorf("id", "mux asset payload is missing an id")
	}
	now := nowMs()
	id, err := upsertByExternalID(ctx, a.db.Collection(assetCollection), "mux_asset_id", *f.MuxAssetID, assetSet(f, asset, now), now)
	if err != nil {
		log.Error("Upserting asset ", *f.MuxAssetID, ": ", err)
		return "", err
	}
	log.Info("Upserted asset: ", *f.MuxAssetID)
	return id, nil
}

func (a *assetDatabase) MarkAssetDeleted(ctx context.Context, muxAssetID string) (string, bool, error) {
	id, found, err := markDeletedByExternalID(ctx, a.db.Collection(assetCollection), "mux_asset_id", muxAssetID)
	if err != nil {
		log.Error("Marking asset deleted: ", err)
		return "", false, err
	}
	if !found {
		log.Info("Asset to delete not found: ", muxAssetID)
	}
	return id, found, nil
}

func (a *assetDatabase) GetAssetByMuxID(ctx context.Context, muxAssetID string) (model.Asset, error) {
	result := model.Asset{}
	err := a.db.Collection(assetCollection).FindOne(ctx, bson.M{"mux_asset_id": muxAssetID}).Decode(&result)
	if err != nil {
		return model.Asset{}, notFound(err)
	}
	return result, nil
}

func (a *assetDatabase) ListAssets(ctx context.Context, limit int) ([]model.Asset, error) {
	results := []model.Asset{}
	if err := findList(ctx, a.db.Collection(assetCollection), bson.M{}, "updated_at_ms", limit, &results); err != nil {
		log.Error("Listing assets: ", err)
		return nil, err
	}
	return results, nil
}

func (a *assetDatabase) ListAssetsByStatus(ctx context.Context, status string, limit int) ([]model.Asset, error) {
	results := []model.Asset{}
	if err := findList(ctx, a.db.Collection(assetCollection), bson.M{"status": status}, "updated_at_ms", limit, &results); err != nil {
		log.Error("Listing assets by status: ", err)
		return nil, err
	}
	return results, nil
}

func assetSet(f payload.AssetFields, raw payload.Object, now int64) bson.M {
	set := bson.M{"updated_at_ms": now, "raw": raw}
	setString(set, "status", f.Status)
	if f.PlaybackIDs != nil {
		set["playback_ids"] = f.PlaybackIDs
	}
	setNumber(set, "duration_seconds", f.DurationSeconds)
	setString(set, "aspect_ratio", f.AspectRatio)
	setString(set, "max_stored_resolution", f.MaxStoredResolution)
	setNumber(set, "max_stored_frame_rate", f.MaxStoredFrameRate)
	setString(set, "passthrough", f.Passthrough)
	setString(set, "upload_id", f.UploadID)
	setString(set, "live_stream_id", f.LiveStreamID)
	if f.Tracks != nil {
		set["tracks"] = f.Tracks
	}
	if f.Status != nil && *f.Status == model.StatusDeleted {
		set["deleted_at_ms"] = now
	}
	return set
}
