package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/internal"
	"github.com/buidl-labs/muxsync/metrics"
	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/muxapi"
	"github.com/buidl-labs/muxsync/payload"
)

// Result describes what happened to one webhook event.
type Result struct {
	EventID          string `json:"eventId,omitempty"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
	Skipped          bool   `json:"skipped"`
	Reason           string `json:"reason,omitempty"`
	ObjectType       string `json:"objectType,omitempty"`
	ObjectID         string `json:"objectId,omitempty"`
	Action           string `json:"action,omitempty"`
	// MetadataID is the metadata row reconciled after an asset upsert.
	MetadataID string `json:"metadataId,omitempty"`
}

func skipped(reason string) Result {
	metrics.EventsSkipped.WithLabelValues(reason).Inc()
	log.WithField("reason", reason).Info("Skipped event: ", internal.ReasonDescriptions[reason])
	return Result{Skipped: true, Reason: reason}
}

// IngestWebhook verifies, records and dispatches one webhook delivery.
// Duplicate, unroutable and empty events are reported in the Result, not
// as errors.
func (s *Service) IngestWebhook(ctx context.Context, body []byte, headers map[string][]string) (Result, error) {
	verified := false
	if s.verifier != nil {
		if err := s.verifier.Verify(body, muxapi.NormalizeHeaders(headers)); err != nil {
			log.Warn("Rejected webhook delivery: ", err)
			return Result{}, err
		}
		verified = true
	}
	metrics.WebhooksReceived.WithLabelValues(strconv.FormatBool(verified)).Inc()

	event, err := payload.DecodeObject(body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	rec, err := s.events.RecordEvent(ctx, event, verified)
	if err != nil {
		return Result{}, err
	}
	if rec.AlreadyProcessed {
		metrics.EventsDeduplicated.Inc()
		res := skipped(internal.ReasonDuplicate)
		res.EventID = rec.EventID
		res.AlreadyProcessed = true
		return res, nil
	}

	res, err := s.Dispatch(ctx, event)
	res.EventID = rec.EventID
	return res, err
}

// Dispatch applies a recorded event to local state.
func (s *Service) Dispatch(ctx context.Context, event payload.Object) (Result, error) {
	f := payload.ExtractEvent(event)
	if f.ObjectID == nil {
		return skipped(internal.ReasonMissingData), nil
	}
	objectType := payload.ObjectTypeOf(f.Type)
	if objectType == "" {
		res := skipped(internal.ReasonUnsupportedEvent)
		res.ObjectID = *f.ObjectID
		return res, nil
	}

	res := Result{ObjectType: objectType, ObjectID: *f.ObjectID}
	logger := log.WithFields(log.Fields{"type": f.Type, "object": *f.ObjectID})

	if strings.HasSuffix(f.Type, ".deleted") {
		res.Action = internal.ActionDelete
		if err := s.markDeleted(ctx, objectType, *f.ObjectID); err != nil {
			return res, err
		}
		logger.Info("Applied delete event")
		metrics.EventsDispatched.WithLabelValues(objectType, res.Action).Inc()
		return res, nil
	}

	obj, err := s.canonical(ctx, objectType, *f.ObjectID, event)
	if err != nil {
		return res, err
	}
	if obj == nil {
		res = skipped(internal.ReasonMissingData)
		res.ObjectType, res.ObjectID = objectType, *f.ObjectID
		return res, nil
	}

	res.Action = internal.ActionUpsert
	switch objectType {
	case payload.ObjectAsset:
		if _, err := s.assets.UpsertAsset(ctx, obj); err != nil {
			return res, err
		}
		meta := payload.ParsePassthrough(obj["passthrough"])
		userID := model.PlaceholderUserID
		if meta.UserID != nil {
			userID = *meta.UserID
		}
		if res.MetadataID, err = s.metadata.UpsertVideoMetadata(ctx, *f.ObjectID, userID, metadataInput(meta)); err != nil {
			return res, err
		}
	case payload.ObjectLiveStream:
		if _, err := s.liveStreams.UpsertLiveStream(ctx, obj); err != nil {
			return res, err
		}
	case payload.ObjectUpload:
		if _, err := s.uploads.UpsertUpload(ctx, obj); err != nil {
			return res, err
		}
	}
	logger.Info("Applied upsert event")
	metrics.EventsDispatched.WithLabelValues(objectType, res.Action).Inc()
	return res, nil
}

func (s *Service) markDeleted(ctx context.Context, objectType, id string) error {
	var err error
	switch objectType {
	case payload.ObjectAsset:
		_, _, err = s.assets.MarkAssetDeleted(ctx, id)
	case payload.ObjectLiveStream:
		_, _, err = s.liveStreams.MarkLiveStreamDeleted(ctx, id)
	case payload.ObjectUpload:
		_, _, err = s.uploads.MarkUploadDeleted(ctx, id)
	}
	return err
}

// canonical returns the current object from the API when a client is
// configured, else the payload embedded in the event. It returns nil when
// the embedded payload is not an object.
func (s *Service) canonical(ctx context.Context, objectType, id string, event payload.Object) (payload.Object, error) {
	if s.client == nil {
		return payload.AsObject(event["data"]), nil
	}

	var obj payload.Object
	var err error
	switch objectType {
	case payload.ObjectAsset:
		obj, err = s.client.RetrieveAsset(ctx, id)
	case payload.ObjectLiveStream:
		obj, err = s.client.RetrieveLiveStream(ctx, id)
	case payload.ObjectUpload:
		obj, err = s.client.RetrieveUpload(ctx, id)
	}
	if err != nil {
		return nil, &RemoteError{Op: "retrieve " + objectType, Err: err}
	}
	return obj, nil
}

func metadataInput(m payload.PassthroughMetadata) dataservice.MetadataInput {
	return dataservice.MetadataInput{
		Title:       m.Title,
		Description: m.Description,
		Tags:        m.Tags,
		Visibility:  m.Visibility,
		Custom:      m.Custom,
	}
}
