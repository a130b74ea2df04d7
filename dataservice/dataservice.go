package dataservice

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	assetCollection         = "assets"
	liveStreamCollection    = "liveStreams"
	uploadCollection        = "uploads"
	eventCollection         = "events"
	videoMetadataCollection = "videoMetadata"
)

const defaultListLimit = 50

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// DatabaseHelper is the database handle every *Database type is built on.
type DatabaseHelper interface {
	Collection(name string) CollectionHelper
	Client() ClientHelper
	// WithTransaction runs fn as one atomic read-modify-write unit.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CollectionHelper is the subset of collection operations the store uses.
type CollectionHelper interface {
	FindOne(ctx context.Context, filter interface{}) SingleResultHelper
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorHelper, error)
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	CreateIndexes(ctx context.Context, models []mongo.IndexModel) error
}

// SingleResultHelper decodes the result of FindOne.
type SingleResultHelper interface {
	Decode(v interface{}) error
}

// CursorHelper decodes the results of Find.
type CursorHelper interface {
	All(ctx context.Context, results interface{}) error
}

// ClientHelper wraps a database client.
type ClientHelper interface {
	Database(string) DatabaseHelper
	Connect() error
	Disconnect(ctx context.Context) error
	StartSession() (mongo.Session, error)
}

type mongoClient struct {
	cl           *mongo.Client
	transactions bool
}

type mongoDatabase struct {
	db           *mongo.Database
	transactions bool
}

type mongoCollection struct {
	coll *mongo.Collection
}

type mongoSingleResult struct {
	sr *mongo.SingleResult
}

type mongoCursor struct {
	cur *mongo.Cursor
}

// NewClient returns a mongo backed ClientHelper. Call Connect before use.
// When transactions is true, WithTransaction runs inside a session
// transaction, which requires a replica set.
func NewClient(uri string, transactions bool) (ClientHelper, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	c, err := mongo.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &mongoClient{cl: c, transactions: transactions}, nil
}

// NewDatabase returns the named database of client.
func NewDatabase(name string, client ClientHelper) DatabaseHelper {
	return client.Database(name)
}

func (mc *mongoClient) Database(dbName string) DatabaseHelper {
	return &mongoDatabase{db: mc.cl.Database(dbName), transactions: mc.transactions}
}

func (mc *mongoClient) Connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mc.cl.Connect(ctx); err != nil {
		return err
	}
	return mc.cl.Ping(ctx, nil)
}

func (mc *mongoClient) Disconnect(ctx context.Context) error {
	return mc.cl.Disconnect(ctx)
}

func (mc *mongoClient) StartSession() (mongo.Session, error) {
	return mc.cl.StartSession()
}

func (md *mongoDatabase) Collection(colName string) CollectionHelper {
	return &mongoCollection{coll: md.db.Collection(colName)}
}

func (md *mongoDatabase) Client() ClientHelper {
	return &mongoClient{cl: md.db.Client(), transactions: md.transactions}
}

func (md *mongoDatabase) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !md.transactions {
		return fn(ctx)
	}
	session, err := md.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (mc *mongoCollection) FindOne(ctx context.Context, filter interface{}) SingleResultHelper {
	return &mongoSingleResult{sr: mc.coll.FindOne(ctx, filter)}
}

func (mc *mongoCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorHelper, error) {
	cur, err := mc.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cur: cur}, nil
}

func (mc *mongoCollection) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	res, err := mc.coll.InsertOne(ctx, document)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (mc *mongoCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	res, err := mc.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (mc *mongoCollection) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	res, err := mc.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (mc *mongoCollection) CreateIndexes(ctx context.Context, models []mongo.IndexModel) error {
	_, err := mc.coll.Indexes().CreateMany(ctx, models)
	return err
}

func (sr *mongoSingleResult) Decode(v interface{}) error {
	return sr.sr.Decode(v)
}

func (c *mongoCursor) All(ctx context.Context, results interface{}) error {
	return c.cur.All(ctx, results)
}

// EnsureIndexes declares the lookup and listing indexes of every collection.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	unique := options.Index().SetUnique(true)
	byUpdated := mongo.IndexModel{Keys: bson.D{{Key: "updated_at_ms", Value: -1}}}
	byStatus := mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}

	indexes := map[string][]mongo.IndexModel{
		assetCollection: {
			{Keys: bson.D{{Key: "mux_asset_id", Value: 1}}, Options: unique},
			byStatus, byUpdated,
		},
		liveStreamCollection: {
			{Keys: bson.D{{Key: "mux_live_stream_id", Value: 1}}, Options: unique},
			byStatus, byUpdated,
		},
		uploadCollection: {
			{Keys: bson.D{{Key: "mux_upload_id", Value: 1}}, Options: unique},
			byStatus, byUpdated,
		},
		eventCollection: {
			{
				Keys: bson.D{{Key: "mux_event_id", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"mux_event_id": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "object_type", Value: 1}, {Key: "object_id", Value: 1}}},
			{Keys: bson.D{{Key: "received_at_ms", Value: -1}}},
		},
		videoMetadataCollection: {
			{Keys: bson.D{{Key: "mux_asset_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "mux_asset_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at_ms", Value: -1}}},
			byUpdated,
		},
	}

	for name, models := range indexes {
		if err := db.Collection(name).CreateIndexes(ctx, models); err != nil {
			log.Error("Creating indexes on ", name, ": ", err)
			return err
		}
	}
	log.Info("Indexes created successfully.")
	return nil
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

func listLimit(limit int) int64 {
	if limit <= 0 {
		return defaultListLimit
	}
	return int64(limit)
}

func findOptions(sortKey string, limit int64) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: sortKey, Value: -1}}).SetLimit(limit)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
