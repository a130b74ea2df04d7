package dataservice

import (
	"context"
	"errors"

	guuid "github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/buidl-labs/muxsync/model"
)

type idOnly struct {
	ID string `bson:"_id"`
}

// upsertByExternalID patches the row whose key equals externalID with set,
// or inserts a new row carrying set when there is none. An insert that
// loses a race against a concurrent insert of the same external id is
// retried once as a patch.
func upsertByExternalID(ctx context.Context, coll CollectionHelper, key, externalID string, set bson.M, now int64) (string, error) {
	for attempt := 0; ; attempt++ {
		var existing idOnly
		err := coll.FindOne(ctx, bson.M{key: externalID}).Decode(&existing)
		if err == nil {
			if _, err := coll.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": set}); err != nil {
				return "", err
			}
			return existing.ID, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return "", err
		}

		id := guuid.New().String()
		doc := bson.M{"_id": id, key: externalID, "created_at_ms": now}
		for k, v := range set {
			doc[k] = v
		}
		_, err = coll.InsertOne(ctx, doc)
		if err == nil {
			return id, nil
		}
		if !mongo.IsDuplicateKeyError(err) || attempt > 0 {
			return "", err
		}
		log.Warn("Concurrent insert of ", key, "=", externalID, ", retrying as update")
	}
}

// markDeletedByExternalID soft deletes the row whose key equals externalID.
// found is false when no such row exists; that is not an error.
func markDeletedByExternalID(ctx context.Context, coll CollectionHelper, key, externalID string) (id string, found bool, err error) {
	var existing idOnly
	err = coll.FindOne(ctx, bson.M{key: externalID}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	now := nowMs()
	_, err = coll.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": bson.M{
		"status":        model.StatusDeleted,
		"deleted_at_ms": now,
		"updated_at_ms": now,
	}})
	if err != nil {
		return "", false, err
	}
	return existing.ID, true, nil
}

func findList(ctx context.Context, coll CollectionHelper, filter bson.M, sortKey string, limit int, results interface{}) error {
	cur, err := coll.Find(ctx, filter, findOptions(sortKey, listLimit(limit)))
	if err != nil {
		return err
	}
	return cur.All(ctx, results)
}

func setString(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = *v
	}
}

func setNumber(set bson.M, key string, v *float64) {
	if v != nil {
		set[key] = *v
	}
}
