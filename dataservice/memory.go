package dataservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	guuid "github.com/google/uuid"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// errSessionsUnsupported is returned by the in-memory client for sessions.
var errSessionsUnsupported = errors.New("memory database: sessions are not supported")

// memoryDatabase keeps documents as BSON in process memory. It supports the
// filters and updates this package issues: top level equality filters,
// $set/$unset updates, sort plus limit, and unique indexes.
type memoryDatabase struct {
	txMu sync.Mutex

	mu    sync.Mutex
	colls map[string]*memoryCollection
}

type memoryCollection struct {
	name string

	mu     sync.RWMutex
	docs   []bson.Raw
	unique [][]string
}

type memorySingleResult struct {
	doc bson.Raw
	err error
}

type memoryCursor struct {
	docs []bson.Raw
}

type memoryClient struct {
	db *memoryDatabase
}

// NewMemoryDatabase returns an empty in-memory DatabaseHelper.
func NewMemoryDatabase() DatabaseHelper {
	return &memoryDatabase{colls: map[string]*memoryCollection{}}
}

func (m *memoryDatabase) Collection(name string) CollectionHelper {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.colls[name]
	if !ok {
		c = &memoryCollection{name: name}
		m.colls[name] = c
	}
	return c
}

func (m *memoryDatabase) Client() ClientHelper {
	return &memoryClient{db: m}
}

// WithTransaction serializes fn against every other transaction.
func (m *memoryDatabase) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

func (mc *memoryClient) Database(string) DatabaseHelper { return mc.db }

func (mc *memoryClient) Connect() error { return nil }

func (mc *memoryClient) Disconnect(ctx context.Context) error { return nil }

func (mc *memoryClient) StartSession() (mongo.Session, error) {
	return nil, errSessionsUnsupported
}

func (c *memoryCollection) FindOne(ctx context.Context, filter interface{}) SingleResultHelper {
	f, err := toRaw(filter)
	if err != nil {
		return &memorySingleResult{err: err}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, doc := range c.docs {
		if matches(doc, f) {
			return &memorySingleResult{doc: doc}
		}
	}
	return &memorySingleResult{err: mongo.ErrNoDocuments}
}

func (c *memoryCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorHelper, error) {
	f, err := toRaw(filter)
	if err != nil {
		return nil, err
	}

	var sortSpec interface{}
	var limit int64
	for _, o := range opts {
		if o == nil {
			continue
		}
		if o.Sort != nil {
			sortSpec = o.Sort
		}
		if o.Limit != nil {
			limit = *o.Limit
		}
	}

	c.mu.RLock()
	var found []bson.Raw
	for _, doc := range c.docs {
		if matches(doc, f) {
			found = append(found, doc)
		}
	}
	c.mu.RUnlock()

	if sortSpec != nil {
		keys, err := toRaw(sortSpec)
		if err != nil {
			return nil, err
		}
		elems, err := keys.Elements()
		if err != nil {
			return nil, err
		}
		sort.SliceStable(found, func(i, j int) bool {
			for _, e := range elems {
				cmp := compareValues(found[i].Lookup(e.Key()), found[j].Lookup(e.Key()))
				if dir, _ := numeric(e.Value()); dir < 0 {
					cmp = -cmp
				}
				if cmp != 0 {
					return cmp < 0
				}
			}
			return false
		})
	}
	if limit > 0 && int64(len(found)) > limit {
		found = found[:limit]
	}
	return &memoryCursor{docs: found}, nil
}

func (c *memoryCollection) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	doc, err := toRaw(document)
	if err != nil {
		return nil, err
	}
	id := doc.Lookup("_id")
	if id.Type == 0 {
		d, err := rawToD(doc)
		if err != nil {
			return nil, err
		}
		d = append(bson.D{{Key: "_id", Value: guuid.New().String()}}, d...)
		if doc, err = toRaw(d); err != nil {
			return nil, err
		}
		id = doc.Lookup("_id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.docs {
		if sameValue(existing.Lookup("_id"), id) {
			return nil, duplicateKey(c.name, []string{"_id"})
		}
	}
	if err := c.checkUniqueLocked(doc, -1); err != nil {
		return nil, err
	}
	c.docs = append(c.docs, doc)
	if s, ok := id.StringValueOK(); ok {
		return s, nil
	}
	return id, nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	f, err := toRaw(filter)
	if err != nil {
		return 0, err
	}
	u, err := toRaw(update)
	if err != nil {
		return 0, err
	}
	ops, err := u.Elements()
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		if !matches(doc, f) {
			continue
		}
		d, err := rawToD(doc)
		if err != nil {
			return 0, err
		}
		for _, op := range ops {
			fields, err := op.Value().Document().Elements()
			if err != nil {
				return 0, err
			}
			switch op.Key() {
			case "$set":
				for _, field := range fields {
					d = setField(d, field.Key(), field.Value())
				}
			case "$unset":
				for _, field := range fields {
					d = unsetField(d, field.Key())
				}
			case "$setOnInsert":
			default:
				return 0, fmt.Errorf("memory database: unsupported update operator %s", op.Key())
			}
		}
		updated, err := toRaw(d)
		if err != nil {
			return 0, err
		}
		if err := c.checkUniqueLocked(updated, i); err != nil {
			return 0, err
		}
		c.docs[i] = updated
		return 1, nil
	}
	return 0, nil
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	f, err := toRaw(filter)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		if matches(doc, f) {
			c.docs = append(c.docs[:i:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) CreateIndexes(ctx context.Context, models []mongo.IndexModel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range models {
		if m.Options == nil || m.Options.Unique == nil || !*m.Options.Unique {
			continue
		}
		keys, err := toRaw(m.Keys)
		if err != nil {
			return err
		}
		elems, err := keys.Elements()
		if err != nil {
			return err
		}
		var names []string
		for _, e := range elems {
			names = append(names, e.Key())
		}
		c.unique = append(c.unique, names)
	}
	return nil
}

// checkUniqueLocked rejects doc when it collides with another document on
// a unique index. Documents missing an indexed key are not indexed.
func (c *memoryCollection) checkUniqueLocked(doc bson.Raw, self int) error {
	for _, keys := range c.unique {
		values := make([]bson.RawValue, len(keys))
		indexed := true
		for i, k := range keys {
			values[i] = doc.Lookup(k)
			if values[i].Type == 0 || values[i].Type == bsontype.Null {
				indexed = false
				break
			}
		}
		if !indexed {
			continue
		}
		for i, other := range c.docs {
			if i == self {
				continue
			}
			clash := true
			for j, k := range keys {
				if !sameValue(other.Lookup(k), values[j]) {
					clash = false
					break
				}
			}
			if clash {
				return duplicateKey(c.name, keys)
			}
		}
	}
	return nil
}

func (r *memorySingleResult) Decode(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	return decodeRaw(r.doc, v)
}

func (cur *memoryCursor) All(ctx context.Context, results interface{}) error {
	rv := reflect.ValueOf(results)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return errors.New("memory database: results must be a pointer to a slice")
	}
	slice := rv.Elem()
	slice.Set(reflect.MakeSlice(slice.Type(), 0, len(cur.docs)))
	for _, doc := range cur.docs {
		elem := reflect.New(slice.Type().Elem())
		if err := decodeRaw(doc, elem.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}

func decodeRaw(doc bson.Raw, v interface{}) error {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(doc))
	if err != nil {
		return err
	}
	dec.DefaultDocumentM()
	return dec.Decode(v)
}

func toRaw(v interface{}) (bson.Raw, error) {
	if v == nil {
		return bson.Raw(emptyDocument), nil
	}
	if r, ok := v.(bson.Raw); ok {
		return r, nil
	}
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bson.Raw(b), nil
}

var emptyDocument = []byte{5, 0, 0, 0, 0}

func rawToD(doc bson.Raw) (bson.D, error) {
	elems, err := doc.Elements()
	if err != nil {
		return nil, err
	}
	d := make(bson.D, 0, len(elems))
	for _, e := range elems {
		d = append(d, bson.E{Key: e.Key(), Value: e.Value()})
	}
	return d, nil
}

func setField(d bson.D, key string, value bson.RawValue) bson.D {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: value})
}

func unsetField(d bson.D, key string) bson.D {
	for i := range d {
		if d[i].Key == key {
			return append(d[:i:i], d[i+1:]...)
		}
	}
	return d
}

func matches(doc, filter bson.Raw) bool {
	elems, err := filter.Elements()
	if err != nil {
		return false
	}
	for _, e := range elems {
		if strings.HasPrefix(e.Key(), "$") {
			return false
		}
		if !sameValue(doc.Lookup(e.Key()), e.Value()) {
			return false
		}
	}
	return true
}

func sameValue(a, b bson.RawValue) bool {
	if a.Type != b.Type {
		af, aok := numeric(a)
		bf, bok := numeric(b)
		return aok && bok && af == bf
	}
	return bytes.Equal(a.Value, b.Value)
}

func numeric(v bson.RawValue) (float64, bool) {
	if i, ok := v.Int32OK(); ok {
		return float64(i), true
	}
	if i, ok := v.Int64OK(); ok {
		return float64(i), true
	}
	if f, ok := v.DoubleOK(); ok {
		return f, true
	}
	return 0, false
}

// compareValues orders missing values first, then numbers, then strings.
func compareValues(a, b bson.RawValue) int {
	if af, ok := numeric(a); ok {
		if bf, ok := numeric(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, ok := a.StringValueOK(); ok {
		if bs, ok := b.StringValueOK(); ok {
			return strings.Compare(as, bs)
		}
	}
	switch {
	case a.Type == 0 && b.Type != 0:
		return -1
	case a.Type != 0 && b.Type == 0:
		return 1
	}
	return 0
}

func duplicateKey(collection string, keys []string) error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Index:   0,
			Code:    11000,
			Message: fmt.Sprintf("E11000 duplicate key error collection: %s index: %s", collection, strings.Join(keys, "_")),
		}},
	}
}
