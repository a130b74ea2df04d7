package payload

import (
	"strings"

	"github.com/buidl-labs/muxsync/model"
)

// Object types derived from the event taxonomy.
const (
	ObjectAsset      = "asset"
	ObjectLiveStream = "live_stream"
	ObjectUpload     = "upload"
)

// Event type prefixes, one per object type.
const (
	AssetEventPrefix      = "video.asset."
	LiveStreamEventPrefix = "video.live_stream."
	UploadEventPrefix     = "video.upload."
)

// UnknownEventType is recorded for events without a type.
const UnknownEventType = "unknown"

// AssetFields is the sparse field set extracted from an asset payload.
// Nil fields were absent or malformed and must not overwrite stored values.
type AssetFields struct {
	MuxAssetID          *string
	Status              *string
	PlaybackIDs         []model.PlaybackID
	DurationSeconds     *float64
	AspectRatio         *string
	MaxStoredResolution *string
	MaxStoredFrameRate  *float64
	Passthrough         *string
	UploadID            *string
	LiveStreamID        *string
	Tracks              []model.Track
}

// LiveStreamFields is the sparse field set extracted from a live stream payload.
type LiveStreamFields struct {
	MuxLiveStreamID        *string
	Status                 *string
	PlaybackIDs            []model.PlaybackID
	ReconnectWindowSeconds *float64
	RecentAssetIDs         []string
}

// UploadFields is the sparse field set extracted from an upload payload.
type UploadFields struct {
	MuxUploadID    *string
	Status         *string
	UploadURL      *string
	TimeoutSeconds *float64
	CORSOrigin     *string
	AssetID        *string
	Error          Object
}

// EventFields is what the recorder keeps from a webhook event.
type EventFields struct {
	MuxEventID   *string
	Type         string
	ObjectType   *string
	ObjectID     *string
	OccurredAtMs *int64
}

// ExtractAsset normalizes an asset payload.
func ExtractAsset(p Object) AssetFields {
	return AssetFields{
		MuxAssetID:          String(p["id"]),
		Status:              String(p["status"]),
		PlaybackIDs:         PlaybackIDs(p["playback_ids"]),
		DurationSeconds:     Number(p["duration"]),
		AspectRatio:         String(p["aspect_ratio"]),
		MaxStoredResolution: String(p["max_stored_resolution"]),
		MaxStoredFrameRate:  Number(p["max_stored_frame_rate"]),
		Passthrough:         String(p["passthrough"]),
		UploadID:            String(p["upload_id"]),
		LiveStreamID:        String(p["live_stream_id"]),
		Tracks:              Tracks(p["tracks"]),
	}
}

// ExtractLiveStream normalizes a live stream payload.
func ExtractLiveStream(p Object) LiveStreamFields {
	return LiveStreamFields{
		MuxLiveStreamID:        String(p["id"]),
		Status:                 String(p["status"]),
		PlaybackIDs:            PlaybackIDs(p["playback_ids"]),
		ReconnectWindowSeconds: Number(p["reconnect_window"]),
		RecentAssetIDs:         StringArray(p["recent_asset_ids"]),
	}
}

// ExtractUpload normalizes a direct upload payload.
func ExtractUpload(p Object) UploadFields {
	return UploadFields{
		MuxUploadID:    String(p["id"]),
		Status:         String(p["status"]),
		UploadURL:      String(p["url"]),
		TimeoutSeconds: Number(p["timeout"]),
		CORSOrigin:     String(p["cors_origin"]),
		AssetID:        String(p["asset_id"]),
		Error:          AsObject(p["error"]),
	}
}

// ExtractEvent normalizes a webhook event envelope.
func ExtractEvent(e Object) EventFields {
	eventType := UnknownEventType
	if t := String(e["type"]); t != nil {
		eventType = *t
	}
	f := EventFields{
		MuxEventID:   String(e["id"]),
		Type:         eventType,
		ObjectID:     String(AsObject(e["data"])["id"]),
		OccurredAtMs: Timestamp(e["created_at"]),
	}
	if objectType := ObjectTypeOf(eventType); objectType != "" {
		f.ObjectType = &objectType
	}
	return f
}

// ObjectTypeOf derives the object type from an event type, or "" when the
// type does not belong to a known object.
func ObjectTypeOf(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, AssetEventPrefix):
		return ObjectAsset
	case strings.HasPrefix(eventType, LiveStreamEventPrefix):
		return ObjectLiveStream
	case strings.HasPrefix(eventType, UploadEventPrefix):
		return ObjectUpload
	}
	return ""
}
