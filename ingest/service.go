// Package ingest turns webhook deliveries and remote listings into local
// state: it records events, routes them to the upsert engine and reconciles
// the metadata carried in asset passthrough fields.
package ingest

import (
	"errors"
	"fmt"

	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/muxapi"
)

// ErrNoCredentials is returned by operations that need the Mux API when no
// API credentials are configured.
var ErrNoCredentials = errors.New("mux api credentials are not configured")

// ErrMalformedEvent is returned for webhook bodies that are not a JSON object.
var ErrMalformedEvent = errors.New("webhook body is not a JSON object")

// RemoteError wraps a failed call to the Mux API.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Config wires a Service.
type Config struct {
	// Client is nil when no API credentials are configured. Events are then
	// applied from their embedded payloads.
	Client muxapi.Client
	// Verifier checks webhook signatures. Nil disables verification.
	Verifier *muxapi.Verifier
}

// Service applies webhook events and backfills to the store.
type Service struct {
	assets      dataservice.AssetDatabase
	liveStreams dataservice.LiveStreamDatabase
	uploads     dataservice.UploadDatabase
	events      dataservice.EventDatabase
	metadata    dataservice.VideoMetadataDatabase

	client   muxapi.Client
	verifier *muxapi.Verifier
}

// NewService returns a Service over db.
func NewService(db dataservice.DatabaseHelper, cfg Config) *Service {
	return &Service{
		assets:      dataservice.NewAssetDatabase(db),
		liveStreams: dataservice.NewLiveStreamDatabase(db),
		uploads:     dataservice.NewUploadDatabase(db),
		events:      dataservice.NewEventDatabase(db),
		metadata:    dataservice.NewVideoMetadataDatabase(db),
		client:      cfg.Client,
		verifier:    cfg.Verifier,
	}
}

// HasClient reports whether the Mux API can be called.
func (s *Service) HasClient() bool {
	return s.client != nil
}

func (s *Service) requireClient() error {
	if s.client == nil {
		return ErrNoCredentials
	}
	return nil
}
