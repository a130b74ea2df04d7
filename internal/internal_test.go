package internal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buidl-labs/muxsync/internal"
)

func TestReasonDescriptions(t *testing.T) {
	for _, reason := range []string{internal.ReasonDuplicate, internal.ReasonMissingData, internal.ReasonUnsupportedEvent} {
		assert.NotEmpty(t, internal.ReasonDescriptions[reason], reason)
	}
}
