package payload_test

import (
	"testing"

	"github.com/buidl-labs/muxsync/payload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAssetDropsMalformedFields(t *testing.T) {
	f := payload.ExtractAsset(payload.Object{
		"id":                    "a1",
		"status":                "ready",
		"duration":              "30",
		"aspect_ratio":          "16:9",
		"max_stored_frame_rate": 29.97,
		"passthrough":           "",
		"tracks":                []interface{}{map[string]interface{}{"type": "video"}},
	})
	require.NotNil(t, f.MuxAssetID)
	assert.Equal(t, "a1", *f.MuxAssetID)
	assert.Equal(t, "ready", *f.Status)
	assert.Nil(t, f.DurationSeconds)
	assert.Equal(t, "16:9", *f.AspectRatio)
	assert.Equal(t, 29.97, *f.MaxStoredFrameRate)
	assert.Nil(t, f.Passthrough)
	assert.Len(t, f.Tracks, 1)
	assert.Nil(t, f.PlaybackIDs)
}

func TestExtractLiveStreamAndUpload(t *testing.T) {
	ls := payload.ExtractLiveStream(payload.Object{
		"id":               "ls1",
		"reconnect_window": 60.0,
		"recent_asset_ids": []interface{}{"a1", 3.0},
	})
	assert.Equal(t, "ls1", *ls.MuxLiveStreamID)
	assert.Equal(t, 60.0, *ls.ReconnectWindowSeconds)
	assert.Equal(t, []string{"a1"}, ls.RecentAssetIDs)

	up := payload.ExtractUpload(payload.Object{
		"id":          "u1",
		"url":         "https://storage.example/upload",
		"timeout":     3600.0,
		"cors_origin": "*",
		"error":       []interface{}{"not", "an", "object"},
	})
	assert.Equal(t, "u1", *up.MuxUploadID)
	assert.Equal(t, "https://storage.example/upload", *up.UploadURL)
	assert.Equal(t, 3600.0, *up.TimeoutSeconds)
	assert.Nil(t, up.Error)
	assert.Nil(t, up.AssetID)
}

func TestExtractEvent(t *testing.T) {
	f := payload.ExtractEvent(payload.Object{
		"id":         "evt-1",
		"type":       "video.live_stream.active",
		"created_at": "2020-01-01T00:00:00Z",
		"data":       map[string]interface{}{"id": "ls1"},
	})
	assert.Equal(t, "evt-1", *f.MuxEventID)
	assert.Equal(t, "video.live_stream.active", f.Type)
	assert.Equal(t, payload.ObjectLiveStream, *f.ObjectType)
	assert.Equal(t, "ls1", *f.ObjectID)
	assert.Equal(t, int64(1577836800000), *f.OccurredAtMs)

	bare := payload.ExtractEvent(payload.Object{"data": "nope"})
	assert.Equal(t, payload.UnknownEventType, bare.Type)
	assert.Nil(t, bare.MuxEventID)
	assert.Nil(t, bare.ObjectType)
	assert.Nil(t, bare.ObjectID)
}

func TestObjectTypeOf(t *testing.T) {
	assert.Equal(t, payload.ObjectAsset, payload.ObjectTypeOf("video.asset.ready"))
	assert.Equal(t, payload.ObjectUpload, payload.ObjectTypeOf("video.upload.cancelled"))
	assert.Equal(t, "", payload.ObjectTypeOf("video.foo.bar"))
	assert.Equal(t, "", payload.ObjectTypeOf("video.asset"))
}

func TestParsePassthrough(t *testing.T) {
	md := payload.ParsePassthrough(`{"userId":"u1","title":"T","tags":["a",1],"visibility":"public","custom":{"k":"v"}}`)
	assert.Equal(t, "u1", *md.UserID)
	assert.Equal(t, "T", *md.Title)
	assert.Equal(t, []string{"a"}, md.Tags)
	assert.Equal(t, "public", *md.Visibility)
	assert.Equal(t, payload.Object{"k": "v"}, md.Custom)

	snake := payload.ParsePassthrough(`{"user_id":"u2","visibility":"everyone"}`)
	assert.Equal(t, "u2", *snake.UserID)
	assert.Nil(t, snake.Visibility)

	plain := payload.ParsePassthrough("user-42")
	assert.Equal(t, "user-42", *plain.UserID)

	array := payload.ParsePassthrough(`["u3"]`)
	assert.Equal(t, `["u3"]`, *array.UserID)

	assert.Equal(t, payload.PassthroughMetadata{}, payload.ParsePassthrough(""))
	assert.Equal(t, payload.PassthroughMetadata{}, payload.ParsePassthrough(nil))
}

func TestDecodeObject(t *testing.T) {
	obj, err := payload.DecodeObject([]byte(`{"type":"video.asset.ready"}`))
	require.NoError(t, err)
	assert.Equal(t, "video.asset.ready", obj["type"])

	_, err = payload.DecodeObject([]byte(`[1,2]`))
	assert.ErrorIs(t, err, payload.ErrNotObject)

	_, err = payload.DecodeObject([]byte(`{`))
	assert.Error(t, err)
}
