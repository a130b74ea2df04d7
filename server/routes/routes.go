// Package routes holds the HTTP handlers of the service.
package routes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/ingest"
	"github.com/buidl-labs/muxsync/muxapi"
	"github.com/buidl-labs/muxsync/payload"
	"github.com/buidl-labs/muxsync/util"
	"github.com/buidl-labs/muxsync/validation"
)

// Listing limits accepted from query strings.
const (
	MinLimit = 1
	MaxLimit = 500
)

const maxBodyBytes = 1 << 20

// Handler serves the HTTP API over the store and the ingestion service.
type Handler struct {
	service     *ingest.Service
	assets      dataservice.AssetDatabase
	liveStreams dataservice.LiveStreamDatabase
	uploads     dataservice.UploadDatabase
	events      dataservice.EventDatabase
	videos      dataservice.VideoMetadataDatabase

	backfillDefaults ingest.BackfillOptions
}

// NewHandler returns a Handler over db and service.
func NewHandler(db dataservice.DatabaseHelper, service *ingest.Service) *Handler {
	return &Handler{
		service:     service,
		assets:      dataservice.NewAssetDatabase(db),
		liveStreams: dataservice.NewLiveStreamDatabase(db),
		uploads:     dataservice.NewUploadDatabase(db),
		events:      dataservice.NewEventDatabase(db),
		videos:      dataservice.NewVideoMetadataDatabase(db),
	}
}

// SetBackfillDefaults sets the options applied to POST /backfill fields
// the request leaves unset.
func (h *Handler) SetBackfillDefaults(d ingest.BackfillOptions) {
	h.backfillDefaults = d
}

// HealthHandler reports that the process is serving.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	util.WriteResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"muxClient": h.service.HasClient(),
	})
}

// parseLimit reads the limit query parameter clamped to [MinLimit, MaxLimit].
// A missing or malformed value yields def.
func parseLimit(r *http.Request, def int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return def
	}
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// readObject reads a JSON object body. An empty body yields nil when
// optional is set.
func readObject(w http.ResponseWriter, r *http.Request, optional bool) (payload.Object, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, validation.Errorf("body", "reading request body: %v", err)
	}
	if len(body) == 0 && optional {
		return nil, nil
	}
	obj, err := payload.DecodeObject(body)
	if err != nil {
		return nil, validation.Errorf("body", "expected a JSON object")
	}
	return obj, nil
}

func statusFor(err error) int {
	var remote *ingest.RemoteError
	switch {
	case errors.Is(err, ingest.ErrMalformedEvent):
		return http.StatusBadRequest
	case errors.Is(err, muxapi.ErrInvalidSignature):
		return http.StatusUnauthorized
	case validation.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dataservice.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrNoCredentials):
		return http.StatusServiceUnavailable
	case errors.As(err, &remote):
		if muxapi.IsNotFound(err) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed: ", err)
		util.WriteError(w, status, http.StatusText(status))
		return
	}
	util.WriteError(w, status, err.Error())
}
