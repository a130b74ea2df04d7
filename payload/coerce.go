// Package payload turns loosely typed platform JSON into field sets the
// store can trust. Nothing in here fails on shape drift: a value that does
// not have the expected type is dropped and the field reads as absent.
package payload

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/buidl-labs/muxsync/model"
)

// Object is a decoded JSON object.
type Object = map[string]interface{}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// String returns v when it is a non-empty string.
func String(v interface{}) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// Number returns v when it is a finite number.
func Number(v interface{}) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Timestamp returns epoch milliseconds. Finite numbers are taken as
// milliseconds with any fraction truncated; all-digit strings are unix
// seconds and other strings are parsed as dates.
func Timestamp(v interface{}) *int64 {
	if f := Number(v); f != nil {
		ms := int64(*f)
		return &ms
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		ms := secs * 1000
		return &ms
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ms := t.UnixMilli()
			return &ms
		}
	}
	return nil
}

// AsObject returns v when it is a non-null, non-array JSON object.
func AsObject(v interface{}) Object {
	switch o := v.(type) {
	case map[string]interface{}:
		if o == nil {
			return nil
		}
		return o
	default:
		return nil
	}
}

// StringArray keeps the string elements of an array. An array with no
// strings left reads as absent.
func StringArray(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		if strs, ok := v.([]string); ok && len(strs) > 0 {
			return append([]string(nil), strs...)
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Visibility returns v when it is exactly one of the visibility literals.
func Visibility(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	switch s {
	case model.VisibilityPrivate, model.VisibilityUnlisted, model.VisibilityPublic:
		return &s
	}
	return nil
}

// PlaybackIDs keeps the elements that carry an id.
func PlaybackIDs(v interface{}) []model.PlaybackID {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]model.PlaybackID, 0, len(items))
	for _, item := range items {
		entry := AsObject(item)
		if entry == nil {
			continue
		}
		id := String(entry["id"])
		if id == nil {
			continue
		}
		out = append(out, model.PlaybackID{ID: *id, Policy: String(entry["policy"])})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Tracks coerces every element independently. Unlike playback ids, an
// element without any usable field is kept.
func Tracks(v interface{}) []model.Track {
	items, ok := v.([]interface{})
	if !ok || len(items) == 0 {
		return nil
	}
	out := make([]model.Track, 0, len(items))
	for _, item := range items {
		entry := AsObject(item)
		out = append(out, model.Track{
			ID:           String(entry["id"]),
			Type:         String(entry["type"]),
			TextType:     String(entry["text_type"]),
			LanguageCode: String(entry["language_code"]),
			Status:       String(entry["status"]),
			Name:         String(entry["name"]),
		})
	}
	return out
}
