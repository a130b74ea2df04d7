package validation_test

import (
	"fmt"
	"testing"

	"github.com/buidl-labs/muxsync/validation"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name       string  `validate:"required"`
	Count      int     `validate:"min=1"`
	Visibility *string `validate:"omitempty,oneof=private unlisted public"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, validation.Struct(sample{Name: "a", Count: 1}))

	bad := "secret"
	err := validation.Struct(sample{Count: 0, Visibility: &bad})
	assert.True(t, validation.IsValidationError(err))
	assert.Contains(t, err.Error(), "Name is required")
	assert.Contains(t, err.Error(), "Count must be at least 1")
	assert.Contains(t, err.Error(), "Visibility must be one of")
}

func TestIsValidationErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("upserting: %w", validation.Errorf("id", "missing"))
	assert.True(t, validation.IsValidationError(err))
	assert.Equal(t, "upserting: id: missing", err.Error())
	assert.False(t, validation.IsValidationError(fmt.Errorf("boom")))
}
