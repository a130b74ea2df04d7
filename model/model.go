package model

// PlaceholderUserID files video metadata whose owner is not known yet.
const PlaceholderUserID = "default"

// Visibility values accepted for video metadata.
const (
	VisibilityPrivate  = "private"
	VisibilityUnlisted = "unlisted"
	VisibilityPublic   = "public"
)

// StatusDeleted is the status written on soft delete.
const StatusDeleted = "deleted"

// PlaybackID is a playback identifier of an asset or live stream.
type PlaybackID struct {
	ID     string  `bson:"id" json:"id"`
	Policy *string `bson:"policy,omitempty" json:"policy,omitempty"`
}

// Track is a media track (video, audio or text) of an asset.
type Track struct {
	ID           *string `bson:"id,omitempty" json:"id,omitempty"`
	Type         *string `bson:"type,omitempty" json:"type,omitempty"`
	TextType     *string `bson:"text_type,omitempty" json:"textType,omitempty"`
	LanguageCode *string `bson:"language_code,omitempty" json:"languageCode,omitempty"`
	Status       *string `bson:"status,omitempty" json:"status,omitempty"`
	Name         *string `bson:"name,omitempty" json:"name,omitempty"`
}

// Asset is the local mirror of a remote video asset.
type Asset struct {
	ID                  string                 `bson:"_id" json:"id"`
	MuxAssetID          string                 `bson:"mux_asset_id" json:"muxAssetId"`
	Status              *string                `bson:"status,omitempty" json:"status,omitempty"`
	PlaybackIDs         []PlaybackID           `bson:"playback_ids,omitempty" json:"playbackIds,omitempty"`
	DurationSeconds     *float64               `bson:"duration_seconds,omitempty" json:"durationSeconds,omitempty"`
	AspectRatio         *string                `bson:"aspect_ratio,omitempty" json:"aspectRatio,omitempty"`
	MaxStoredResolution *string                `bson:"max_stored_resolution,omitempty" json:"maxStoredResolution,omitempty"`
	MaxStoredFrameRate  *float64               `bson:"max_stored_frame_rate,omitempty" json:"maxStoredFrameRate,omitempty"`
	Passthrough         *string                `bson:"passthrough,omitempty" json:"passthrough,omitempty"`
	UploadID            *string                `bson:"upload_id,omitempty" json:"uploadId,omitempty"`
	LiveStreamID        *string                `bson:"live_stream_id,omitempty" json:"liveStreamId,omitempty"`
	Tracks              []Track                `bson:"tracks,omitempty" json:"tracks,omitempty"`
	CreatedAtMs         int64                  `bson:"created_at_ms" json:"createdAtMs"`
	UpdatedAtMs         int64                  `bson:"updated_at_ms" json:"updatedAtMs"`
	DeletedAtMs         *int64                 `bson:"deleted_at_ms,omitempty" json:"deletedAtMs,omitempty"`
	Raw                 map[string]interface{} `bson:"raw" json:"raw"`
}

// LiveStream is the local mirror of a remote live stream.
type LiveStream struct {
	ID                     string                 `bson:"_id" json:"id"`
	MuxLiveStreamID        string                 `bson:"mux_live_stream_id" json:"muxLiveStreamId"`
	Status                 *string                `bson:"status,omitempty" json:"status,omitempty"`
	PlaybackIDs            []PlaybackID           `bson:"playback_ids,omitempty" json:"playbackIds,omitempty"`
	ReconnectWindowSeconds *float64               `bson:"reconnect_window_seconds,omitempty" json:"reconnectWindowSeconds,omitempty"`
	RecentAssetIDs         []string               `bson:"recent_asset_ids,omitempty" json:"recentAssetIds,omitempty"`
	CreatedAtMs            int64                  `bson:"created_at_ms" json:"createdAtMs"`
	UpdatedAtMs            int64                  `bson:"updated_at_ms" json:"updatedAtMs"`
	DeletedAtMs            *int64                 `bson:"deleted_at_ms,omitempty" json:"deletedAtMs,omitempty"`
	Raw                    map[string]interface{} `bson:"raw" json:"raw"`
}

// Upload is the local mirror of a remote direct upload.
type Upload struct {
	ID             string                 `bson:"_id" json:"id"`
	MuxUploadID    string                 `bson:"mux_upload_id" json:"muxUploadId"`
	Status         *string                `bson:"status,omitempty" json:"status,omitempty"`
	UploadURL      *string                `bson:"upload_url,omitempty" json:"uploadUrl,omitempty"`
	TimeoutSeconds *float64               `bson:"timeout_seconds,omitempty" json:"timeoutSeconds,omitempty"`
	CORSOrigin     *string                `bson:"cors_origin,omitempty" json:"corsOrigin,omitempty"`
	AssetID        *string                `bson:"asset_id,omitempty" json:"assetId,omitempty"`
	Error          map[string]interface{} `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAtMs    int64                  `bson:"created_at_ms" json:"createdAtMs"`
	UpdatedAtMs    int64                  `bson:"updated_at_ms" json:"updatedAtMs"`
	DeletedAtMs    *int64                 `bson:"deleted_at_ms,omitempty" json:"deletedAtMs,omitempty"`
	Raw            map[string]interface{} `bson:"raw" json:"raw"`
}

// Event is an inbound webhook delivery. Events are append-only.
type Event struct {
	ID           string                 `bson:"_id" json:"id"`
	MuxEventID   *string                `bson:"mux_event_id,omitempty" json:"muxEventId,omitempty"`
	Type         string                 `bson:"type" json:"type"`
	ObjectType   *string                `bson:"object_type,omitempty" json:"objectType,omitempty"`
	ObjectID     *string                `bson:"object_id,omitempty" json:"objectId,omitempty"`
	OccurredAtMs *int64                 `bson:"occurred_at_ms,omitempty" json:"occurredAtMs,omitempty"`
	ReceivedAtMs int64                  `bson:"received_at_ms" json:"receivedAtMs"`
	Verified     bool                   `bson:"verified" json:"verified"`
	Raw          map[string]interface{} `bson:"raw" json:"raw"`
}

// VideoMetadata holds user supplied metadata for an asset.
// There is at most one row per (MuxAssetID, UserID).
type VideoMetadata struct {
	ID          string                 `bson:"_id" json:"id"`
	MuxAssetID  string                 `bson:"mux_asset_id" json:"muxAssetId"`
	UserID      string                 `bson:"user_id" json:"userId"`
	Title       *string                `bson:"title,omitempty" json:"title,omitempty"`
	Description *string                `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string               `bson:"tags,omitempty" json:"tags,omitempty"`
	Visibility  *string                `bson:"visibility,omitempty" json:"visibility,omitempty"`
	Custom      map[string]interface{} `bson:"custom,omitempty" json:"custom,omitempty"`
	CreatedAtMs int64                  `bson:"created_at_ms" json:"createdAtMs"`
	UpdatedAtMs int64                  `bson:"updated_at_ms" json:"updatedAtMs"`
}

// Video joins an asset with its metadata rows.
type Video struct {
	Asset    *Asset          `json:"asset"`
	Metadata []VideoMetadata `json:"metadata"`
}

// UserVideo is one entry of a user's video listing. Asset is nil when the
// metadata refers to an asset that has not been synced yet.
type UserVideo struct {
	Metadata VideoMetadata `json:"metadata"`
	Asset    *Asset        `json:"asset"`
}
