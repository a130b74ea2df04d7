package payload

import (
	"github.com/goccy/go-json"
)

// PassthroughMetadata is the metadata an asset creator can smuggle through
// the passthrough field.
type PassthroughMetadata struct {
	UserID      *string
	Title       *string
	Description *string
	Tags        []string
	Visibility  *string
	Custom      Object
}

// ParsePassthrough reads passthrough as a JSON object. A value that is not
// a JSON object is taken verbatim as the user id.
func ParsePassthrough(v interface{}) PassthroughMetadata {
	raw := String(v)
	if raw == nil {
		return PassthroughMetadata{}
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(*raw), &parsed); err != nil {
		return PassthroughMetadata{UserID: raw}
	}
	obj := AsObject(parsed)
	if obj == nil {
		return PassthroughMetadata{UserID: raw}
	}

	userID := String(obj["userId"])
	if userID == nil {
		userID = String(obj["user_id"])
	}
	return PassthroughMetadata{
		UserID:      userID,
		Title:       String(obj["title"]),
		Description: String(obj["description"]),
		Tags:        StringArray(obj["tags"]),
		Visibility:  Visibility(obj["visibility"]),
		Custom:      AsObject(obj["custom"]),
	}
}

// DecodeObject parses body as a JSON object.
func DecodeObject(body []byte) (Object, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	obj := AsObject(v)
	if obj == nil {
		return nil, ErrNotObject
	}
	return obj, nil
}
