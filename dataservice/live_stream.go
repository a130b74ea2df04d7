package dataservice

import (
	"context"

	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/payload"
	"github.com/buidl-labs/muxsync/validation"
)

// LiveStreamDatabase provides the live stream db operations.
type LiveStreamDatabase interface {
	UpsertLiveStream(ctx context.Context, liveStream payload.Object) (string, error)
	MarkLiveStreamDeleted(ctx context.Context, muxLiveStreamID string) (string, bool, error)
	GetLiveStreamByMuxID(ctx context.Context, muxLiveStreamID string) (model.LiveStream, error)
	ListLiveStreams(ctx context.Context, limit int) ([]model.LiveStream, error)
}

type liveStreamDatabase struct {
	db DatabaseHelper
}

// NewLiveStreamDatabase returns an instance of LiveStreamDatabase.
func NewLiveStreamDatabase(db DatabaseHelper) LiveStreamDatabase {
	return &liveStreamDatabase{
		db: db,
	}
}

func (ls *liveStreamDatabase) UpsertLiveStream(ctx context.Context, liveStream payload.Object) (string, error) {
	f := payload.ExtractLiveStream(liveStream)
	if f.MuxLiveStreamID == nil {
		return "", validation.Errorf("id", "mux live stream payload is missing an id")
	}
	now := nowMs()
	set := bson.M{"updated_at_ms": now, "raw": liveStream}
	setString(set, "status", f.Status)
	if f.PlaybackIDs != nil {
		set["playback_ids"] = f.PlaybackIDs
	}
	setNumber(set, "reconnect_window_seconds", f.ReconnectWindowSeconds)
	if f.RecentAssetIDs != nil {
		set["recent_asset_ids"] = f.RecentAssetIDs
	}

	id, err := upsertByExternalID(ctx, ls.db.Collection(liveStreamCollection), "mux_live_stream_id", *f.MuxLiveStreamID, set, now)
	if err != nil {
		log.Error("Upserting live stream ", *f.MuxLiveStreamID, ": ", err)
		return "", err
	}
	log.Info("Upserted live stream: ", *f.MuxLiveStreamID)
	return id, nil
}

func (ls *liveStreamDatabase) MarkLiveStreamDeleted(ctx context.Context, muxLiveStreamID string) (string, bool, error) {
	id, found, err := markDeletedByExternalID(ctx, ls.db.Collection(liveStreamCollection), "mux_live_stream_id", muxLiveStreamID)
	if err != nil {
		log.Error("Marking live stream deleted: ", err)
		return "", false, err
	}
	return id, found, nil
}

func (ls *liveStreamDatabase) GetLiveStreamByMuxID(ctx context.Context, muxLiveStreamID string) (model.LiveStream, error) {
	result := model.LiveStream{}
	err := ls.db.Collection(liveStreamCollection).FindOne(ctx, bson.M{"mux_live_stream_id": muxLiveStreamID}).Decode(&result)
	if err != nil {
		return model.LiveStream{}, notFound(err)
	}
	return result, nil
}

func (ls *liveStreamDatabase) ListLiveStreams(ctx context.Context, limit int) ([]model.LiveStream, error) {
	results := []model.LiveStream{}
	if err := findList(ctx, ls.db.Collection(liveStreamCollection), bson.M{}, "updated_at_ms", limit, &results); err != nil {
		log.Error("Listing live streams: ", err)
		return nil, err
	}
	return results, nil
}
