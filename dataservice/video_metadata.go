package dataservice

import (
	"context"
	"errors"
	"fmt"

	guuid "github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/validation"
)

const defaultUserVideosLimit = 25

// maxMetadataAttempts bounds how often a metadata write is planned again
// after losing a race against a concurrent writer.
const maxMetadataAttempts = 3

var errMetadataConflict = errors.New("video metadata changed concurrently")

// VideoMetadataDatabase provides the per-(asset, user) metadata operations.
type VideoMetadataDatabase interface {
	UpsertVideoMetadata(ctx context.Context, muxAssetID, userID string, input MetadataInput) (string, error)
	GetVideoMetadata(ctx context.Context, muxAssetID, userID string) (model.VideoMetadata, error)
	GetVideo(ctx context.Context, muxAssetID, userID string) (model.Video, error)
	ListVideosForUser(ctx context.Context, userID string, limit int) ([]model.UserVideo, error)
}

type videoMetadataDatabase struct {
	db DatabaseHelper
}

// NewVideoMetadataDatabase returns an instance of VideoMetadataDatabase.
func NewVideoMetadataDatabase(db DatabaseHelper) VideoMetadataDatabase {
	return &videoMetadataDatabase{
		db: db,
	}
}

type metadataKey struct {
	MuxAssetID string `validate:"required"`
	UserID     string `validate:"required"`
}

// UpsertVideoMetadata writes metadata for (muxAssetID, userID). Rows filed
// under the placeholder user for the same asset are absorbed the first time
// a real user writes, so each pair keeps at most one row.
func (vm *videoMetadataDatabase) UpsertVideoMetadata(ctx context.Context, muxAssetID, userID string, input MetadataInput) (string, error) {
	if err := validation.Struct(metadataKey{MuxAssetID: muxAssetID, UserID: userID}); err != nil {
		return "", err
	}
	if err := validation.Struct(input); err != nil {
		return "", err
	}

	var id string
	var err error
	for attempt := 1; attempt <= maxMetadataAttempts; attempt++ {
		id, err = vm.upsertOnce(ctx, muxAssetID, userID, input)
		if !errors.Is(err, errMetadataConflict) {
			break
		}
		log.WithFields(log.Fields{"asset": muxAssetID, "user": userID, "attempt": attempt}).
			Warn("Video metadata changed concurrently, planning again")
	}
	if err != nil {
		log.Error("Upserting video metadata: ", err)
		return "", err
	}
	return id, nil
}

func (vm *videoMetadataDatabase) upsertOnce(ctx context.Context, muxAssetID, userID string, input MetadataInput) (string, error) {
	var id string
	err := vm.db.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := vm.find(ctx, muxAssetID, userID)
		if err != nil {
			return err
		}
		var placeholder *model.VideoMetadata
		if userID != model.PlaceholderUserID {
			if placeholder, err = vm.find(ctx, muxAssetID, model.PlaceholderUserID); err != nil {
				return err
			}
		}

		plan := planMetadataUpsert(userID, existing, placeholder, input)
		id, err = vm.apply(ctx, muxAssetID, userID, plan)
		if err == nil {
			log.WithFields(log.Fields{
				"asset":  muxAssetID,
				"user":   userID,
				"action": plan.action.String(),
			}).Info("Upserted video metadata")
		}
		return err
	})
	return id, err
}

// apply carries out plan. Every write is guarded by the owner the plan was
// made against, so a row taken over or inserted by a concurrent writer
// yields errMetadataConflict instead of a lost update.
func (vm *videoMetadataDatabase) apply(ctx context.Context, muxAssetID, userID string, plan metadataPlan) (string, error) {
	coll := vm.db.Collection(videoMetadataCollection)
	now := nowMs()
	set := metadataSet(plan.fields, now)

	switch plan.action {
	case metadataInsert:
		set["_id"] = guuid.New().String()
		set["mux_asset_id"] = muxAssetID
		set["user_id"] = userID
		set["created_at_ms"] = now
		if _, err := coll.InsertOne(ctx, set); err != nil {
			return "", conflictOn(err)
		}
		return set["_id"].(string), nil
	case metadataPatch:
		return plan.targetID, guardedUpdate(ctx, coll, plan.targetID, userID, set)
	case metadataMergeAndDrop:
		if err := guardedUpdate(ctx, coll, plan.targetID, userID, set); err != nil {
			return "", err
		}
		// A placeholder already absorbed by another writer is left alone.
		if _, err := coll.DeleteOne(ctx, bson.M{"_id": plan.dropID, "user_id": model.PlaceholderUserID}); err != nil {
			return "", err
		}
		return plan.targetID, nil
	case metadataRelocate:
		set["user_id"] = userID
		return plan.targetID, guardedUpdate(ctx, coll, plan.targetID, model.PlaceholderUserID, set)
	}
	return "", fmt.Errorf("unknown metadata action %s", plan.action)
}

// guardedUpdate sets fields on the row id while it is still owned by owner.
func guardedUpdate(ctx context.Context, coll CollectionHelper, id, owner string, set bson.M) error {
	matched, err := coll.UpdateOne(ctx, bson.M{"_id": id, "user_id": owner}, bson.M{"$set": set})
	if err != nil {
		return conflictOn(err)
	}
	if matched == 0 {
		return errMetadataConflict
	}
	return nil
}

func conflictOn(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return errMetadataConflict
	}
	return err
}

func (vm *videoMetadataDatabase) find(ctx context.Context, muxAssetID, userID string) (*model.VideoMetadata, error) {
	result := model.VideoMetadata{}
	err := vm.db.Collection(videoMetadataCollection).
		FindOne(ctx, bson.M{"mux_asset_id": muxAssetID, "user_id": userID}).
		Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (vm *videoMetadataDatabase) GetVideoMetadata(ctx context.Context, muxAssetID, userID string) (model.VideoMetadata, error) {
	m, err := vm.find(ctx, muxAssetID, userID)
	if err != nil {
		return model.VideoMetadata{}, err
	}
	if m == nil {
		return model.VideoMetadata{}, ErrNotFound
	}
	return *m, nil
}

// GetVideo returns the asset with its metadata: the user's row when userID
// is set, every row of the asset otherwise.
func (vm *videoMetadataDatabase) GetVideo(ctx context.Context, muxAssetID, userID string) (model.Video, error) {
	asset, err := NewAssetDatabase(vm.db).GetAssetByMuxID(ctx, muxAssetID)
	if err != nil {
		return model.Video{}, err
	}
	video := model.Video{Asset: &asset, Metadata: []model.VideoMetadata{}}

	if userID != "" {
		m, err := vm.find(ctx, muxAssetID, userID)
		if err != nil {
			return model.Video{}, err
		}
		if m != nil {
			video.Metadata = append(video.Metadata, *m)
		}
		return video, nil
	}

	cur, err := vm.db.Collection(videoMetadataCollection).Find(ctx, bson.M{"mux_asset_id": muxAssetID})
	if err != nil {
		return model.Video{}, err
	}
	if err := cur.All(ctx, &video.Metadata); err != nil {
		return model.Video{}, err
	}
	return video, nil
}

// ListVideosForUser returns the user's most recently updated metadata rows
// joined with their assets.
func (vm *videoMetadataDatabase) ListVideosForUser(ctx context.Context, userID string, limit int) ([]model.UserVideo, error) {
	if limit <= 0 {
		limit = defaultUserVideosLimit
	}
	rows := []model.VideoMetadata{}
	if err := findList(ctx, vm.db.Collection(videoMetadataCollection), bson.M{"user_id": userID}, "updated_at_ms", limit, &rows); err != nil {
		log.Error("Listing videos for user: ", err)
		return nil, err
	}

	assets := NewAssetDatabase(vm.db)
	videos := make([]model.UserVideo, 0, len(rows))
	for _, row := range rows {
		v := model.UserVideo{Metadata: row}
		asset, err := assets.GetAssetByMuxID(ctx, row.MuxAssetID)
		switch {
		case err == nil:
			v.Asset = &asset
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, nil
}

func metadataSet(in MetadataInput, now int64) bson.M {
	set := bson.M{"updated_at_ms": now}
	setString(set, "title", in.Title)
	setString(set, "description", in.Description)
	if in.Tags != nil {
		set["tags"] = in.Tags
	}
	setString(set, "visibility", in.Visibility)
	if in.Custom != nil {
		set["custom"] = in.Custom
	}
	return set
}
