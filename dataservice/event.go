package dataservice

import (
	"context"
	"errors"

	guuid "github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/payload"
)

// RecordResult tells the caller whether an event was seen before.
type RecordResult struct {
	EventID          string `json:"eventId"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
}

// EventDatabase provides the webhook event db operations.
type EventDatabase interface {
	RecordEvent(ctx context.Context, event payload.Object, verified bool) (RecordResult, error)
	GetEvent(ctx context.Context, id string) (model.Event, error)
	ListRecentEvents(ctx context.Context, limit int) ([]model.Event, error)
	ListEventsForObject(ctx context.Context, objectType, objectID string, limit int) ([]model.Event, error)
}

type eventDatabase struct {
	db DatabaseHelper
}

// NewEventDatabase returns an instance of EventDatabase.
func NewEventDatabase(db DatabaseHelper) EventDatabase {
	return &eventDatabase{
		db: db,
	}
}

// RecordEvent stores event once per mux event id. The unique index on
// mux_event_id makes the insert conditional: when two deliveries of the
// same event race, the loser gets AlreadyProcessed with the winner's id.
func (e *eventDatabase) RecordEvent(ctx context.Context, event payload.Object, verified bool) (RecordResult, error) {
	f := payload.ExtractEvent(event)
	coll := e.db.Collection(eventCollection)

	if f.MuxEventID != nil {
		existing, err := e.findByMuxEventID(ctx, *f.MuxEventID)
		if err == nil {
			log.Info("Event already processed: ", *f.MuxEventID)
			return RecordResult{EventID: existing, AlreadyProcessed: true}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Error("Looking up event: ", err)
			return RecordResult{}, err
		}
	}

	doc := model.Event{
		ID:           guuid.New().String(),
		MuxEventID:   f.MuxEventID,
		Type:         f.Type,
		ObjectType:   f.ObjectType,
		ObjectID:     f.ObjectID,
		OccurredAtMs: f.OccurredAtMs,
		ReceivedAtMs: nowMs(),
		Verified:     verified,
		Raw:          event,
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if f.MuxEventID != nil && mongo.IsDuplicateKeyError(err) {
			existing, lookupErr := e.findByMuxEventID(ctx, *f.MuxEventID)
			if lookupErr == nil {
				log.Info("Event recorded concurrently: ", *f.MuxEventID)
				return RecordResult{EventID: existing, AlreadyProcessed: true}, nil
			}
		}
		log.Error("Inserting an event: ", err)
		return RecordResult{}, err
	}
	log.Info("Inserted an event: ", doc.Type)
	return RecordResult{EventID: doc.ID}, nil
}

func (e *eventDatabase) findByMuxEventID(ctx context.Context, muxEventID string) (string, error) {
	var existing idOnly
	err := e.db.Collection(eventCollection).FindOne(ctx, bson.M{"mux_event_id": muxEventID}).Decode(&existing)
	return existing.ID, err
}

func (e *eventDatabase) GetEvent(ctx context.Context, id string) (model.Event, error) {
	result := model.Event{}
	if err := e.db.Collection(eventCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&result); err != nil {
		return model.Event{}, notFound(err)
	}
	return result, nil
}

func (e *eventDatabase) ListRecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	results := []model.Event{}
	if err := findList(ctx, e.db.Collection(eventCollection), bson.M{}, "received_at_ms", limit, &results); err != nil {
		log.Error("Listing recent events: ", err)
		return nil, err
	}
	return results, nil
}

func (e *eventDatabase) ListEventsForObject(ctx context.Context, objectType, objectID string, limit int) ([]model.Event, error) {
	results := []model.Event{}
	filter := bson.M{"object_type": objectType, "object_id": objectID}
	if err := findList(ctx, e.db.Collection(eventCollection), filter, "received_at_ms", limit, &results); err != nil {
		log.Error("Listing events for object: ", err)
		return nil, err
	}
	return results, nil
}
