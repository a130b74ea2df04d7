package dataservice

import (
	"github.com/buidl-labs/muxsync/model"
)

// MetadataInput is a sparse metadata write. Nil fields are absent and do
// not overwrite stored values. A non-nil empty Tags is an explicit empty
// list and is stored as such.
type MetadataInput struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Visibility  *string                `json:"visibility,omitempty" validate:"omitempty,oneof=private unlisted public"`
	Custom      map[string]interface{} `json:"custom,omitempty"`
}

type metadataAction int

const (
	// metadataInsert creates a fresh row for the pair.
	metadataInsert metadataAction = iota
	// metadataPatch sparse-merges the input into the pair's own row.
	metadataPatch
	// metadataMergeAndDrop folds the placeholder row into the real user's
	// row and deletes the placeholder.
	metadataMergeAndDrop
	// metadataRelocate hands the placeholder row over to the real user.
	metadataRelocate
)

func (a metadataAction) String() string {
	switch a {
	case metadataInsert:
		return "insert"
	case metadataPatch:
		return "patch"
	case metadataMergeAndDrop:
		return "merge_and_drop"
	case metadataRelocate:
		return "relocate"
	}
	return "unknown"
}

type metadataPlan struct {
	action metadataAction
	// targetID is the row written by patch, merge and relocate.
	targetID string
	// dropID is the placeholder row deleted by merge.
	dropID string
	fields MetadataInput
}

// planMetadataUpsert decides how a metadata write for userID lands, given
// the row already stored for (asset, userID) and the placeholder row for
// the same asset. Either row may be nil.
//
// Merge precedence is incoming > existing real row > placeholder row.
func planMetadataUpsert(userID string, existing, placeholder *model.VideoMetadata, input MetadataInput) metadataPlan {
	if userID == model.PlaceholderUserID {
		if existing != nil {
			return metadataPlan{action: metadataPatch, targetID: existing.ID, fields: input}
		}
		return metadataPlan{action: metadataInsert, fields: input}
	}

	switch {
	case existing != nil && placeholder != nil && placeholder.ID != existing.ID:
		return metadataPlan{
			action:   metadataMergeAndDrop,
			targetID: existing.ID,
			dropID:   placeholder.ID,
			fields:   coalesceMetadata(input, storedInput(existing), storedInput(placeholder)),
		}
	case existing != nil:
		return metadataPlan{action: metadataPatch, targetID: existing.ID, fields: input}
	case placeholder != nil:
		return metadataPlan{
			action:   metadataRelocate,
			targetID: placeholder.ID,
			fields:   coalesceMetadata(input, storedInput(placeholder)),
		}
	}
	return metadataPlan{action: metadataInsert, fields: input}
}

func storedInput(m *model.VideoMetadata) MetadataInput {
	return MetadataInput{
		Title:       m.Title,
		Description: m.Description,
		Tags:        m.Tags,
		Visibility:  m.Visibility,
		Custom:      m.Custom,
	}
}

// coalesceMetadata takes, field by field, the first present value.
// Arrays and objects are taken whole.
func coalesceMetadata(inputs ...MetadataInput) MetadataInput {
	var out MetadataInput
	for _, in := range inputs {
		if out.Title == nil {
			out.Title = in.Title
		}
		if out.Description == nil {
			out.Description = in.Description
		}
		if out.Tags == nil {
			out.Tags = in.Tags
		}
		if out.Visibility == nil {
			out.Visibility = in.Visibility
		}
		if out.Custom == nil {
			out.Custom = in.Custom
		}
	}
	return out
}
