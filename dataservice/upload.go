package dataservice

import (
	"context"

	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/payload"
	"github.com/buidl-labs/muxsync/validation"
)

// UploadDatabase provides the upload db operations.
type UploadDatabase interface {
	UpsertUpload(ctx context.Context, upload payload.Object) (string, error)
	MarkUploadDeleted(ctx context.Context, muxUploadID string) (string, bool, error)
	GetUploadByMuxID(ctx context.Context, muxUploadID string) (model.Upload, error)
	ListUploads(ctx context.Context, limit int) ([]model.Upload, error)
}

type uploadDatabase struct {
	db DatabaseHelper
}

// NewUploadDatabase returns an instance of UploadDatabase.
func NewUploadDatabase(db DatabaseHelper) UploadDatabase {
	return &uploadDatabase{
		db: db,
	}
}

func (up *uploadDatabase) UpsertUpload(ctx context.Context, upload payload.Object) (string, error) {
	f := payload.ExtractUpload(upload)
	if f.MuxUploadID == nil {
		return "", validation.Errorf("id", "mux upload payload is missing an id")
	}
	now := nowMs()
	set := bson.M{"updated_at_ms": now, "raw": upload}
	setString(set, "status", f.Status)
	setString(set, "upload_url", f.UploadURL)
	setNumber(set, "timeout_seconds", f.TimeoutSeconds)
	setString(set, "cors_origin", f.CORSOrigin)
	setString(set, "asset_id", f.AssetID)
	if f.Error != nil {
		set["error"] = f.Error
	}

	id, err := upsertByExternalID(ctx, up.db.Collection(uploadCollection), "mux_upload_id", *f.MuxUploadID, set, now)
	if err != nil {
		log.Error("Upserting upload ", *f.MuxUploadID, ": ", err)
		return "", err
	}
	log.Info("Upserted upload: ", *f.MuxUploadID)
	return id, nil
}

func (up *uploadDatabase) MarkUploadDeleted(ctx context.Context, muxUploadID string) (string, bool, error) {
	id, found, err := markDeletedByExternalID(ctx, up.db.Collection(uploadCollection), "mux_upload_id", muxUploadID)
	if err != nil {
		log.Error("Marking upload deleted: ", err)
		return "", false, err
	}
	return id, found, nil
}

func (up *uploadDatabase) GetUploadByMuxID(ctx context.Context, muxUploadID string) (model.Upload, error) {
	result := model.Upload{}
	err := up.db.Collection(uploadCollection).FindOne(ctx, bson.M{"mux_upload_id": muxUploadID}).Decode(&result)
	if err != nil {
		return model.Upload{}, notFound(err)
	}
	return result, nil
}

func (up *uploadDatabase) ListUploads(ctx context.Context, limit int) ([]model.Upload, error) {
	results := []model.Upload{}
	if err := findList(ctx, up.db.Collection(uploadCollection), bson.M{}, "updated_at_ms", limit, &results); err != nil {
		log.Error("Listing uploads: ", err)
		return nil, err
	}
	return results, nil
}
