package routes

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/ingest"
	"github.com/buidl-labs/muxsync/muxapi"
	"github.com/buidl-labs/muxsync/validation"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 50},
		{"limit=abc", 50},
		{"limit=10", 10},
		{"limit=0", MinLimit},
		{"limit=-3", MinLimit},
		{"limit=9999", MaxLimit},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/assets?"+tt.query, nil)
		assert.Equal(t, tt.want, parseLimit(r, 50), tt.query)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", ingest.ErrMalformedEvent), http.StatusBadRequest},
		{fmt.Errorf("%w: mismatch", muxapi.ErrInvalidSignature), http.StatusUnauthorized},
		{validation.Errorf("id", "missing"), http.StatusUnprocessableEntity},
		{dataservice.ErrNotFound, http.StatusNotFound},
		{ingest.ErrNoCredentials, http.StatusServiceUnavailable},
		{&ingest.RemoteError{Op: "retrieve asset", Err: errors.New("timeout")}, http.StatusBadGateway},
		{&ingest.RemoteError{Op: "retrieve asset", Err: &muxapi.APIError{StatusCode: 404}}, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
