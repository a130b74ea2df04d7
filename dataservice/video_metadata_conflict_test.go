package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/buidl-labs/muxsync/model"
)

// interferingDatabase runs interfere against the raw collection right
// before the next UpdateOne, the way a concurrent writer without a
// transaction would.
type interferingDatabase struct {
	DatabaseHelper
	interfere func(ctx context.Context, coll CollectionHelper)
}

func (d *interferingDatabase) Collection(name string) CollectionHelper {
	return &interferingCollection{CollectionHelper: d.DatabaseHelper.Collection(name), db: d}
}

func (d *interferingDatabase) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type interferingCollection struct {
	CollectionHelper
	db *interferingDatabase
}

func (c *interferingCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	if f := c.db.interfere; f != nil {
		c.db.interfere = nil
		f(ctx, c.CollectionHelper)
	}
	return c.CollectionHelper.UpdateOne(ctx, filter, update)
}

func newConflictDatabase(t *testing.T) *interferingDatabase {
	t.Helper()
	db := NewMemoryDatabase()
	require.NoError(t, EnsureIndexes(context.Background(), db))
	return &interferingDatabase{DatabaseHelper: db}
}

func TestApplyRelocateOfTakenPlaceholderConflicts(t *testing.T) {
	ctx := context.Background()
	db := newConflictDatabase(t)
	vm := &videoMetadataDatabase{db: db}

	phID, err := vm.UpsertVideoMetadata(ctx, "asset-1", model.PlaceholderUserID, MetadataInput{Title: sp("ph")})
	require.NoError(t, err)
	placeholder, err := vm.find(ctx, "asset-1", model.PlaceholderUserID)
	require.NoError(t, err)

	alicePlan := planMetadataUpsert("alice", nil, placeholder, MetadataInput{})
	bobPlan := planMetadataUpsert("bob", nil, placeholder, MetadataInput{})
	require.Equal(t, metadataRelocate, alicePlan.action)
	require.Equal(t, metadataRelocate, bobPlan.action)

	id, err := vm.apply(ctx, "asset-1", "alice", alicePlan)
	require.NoError(t, err)
	assert.Equal(t, phID, id)

	_, err = vm.apply(ctx, "asset-1", "bob", bobPlan)
	assert.ErrorIs(t, err, errMetadataConflict)

	owned, err := vm.GetVideoMetadata(ctx, "asset-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, phID, owned.ID)
}

func TestUpsertVideoMetadataPlansAgainAfterLostRelocate(t *testing.T) {
	ctx := context.Background()
	db := newConflictDatabase(t)
	vm := &videoMetadataDatabase{db: db}

	phID, err := vm.UpsertVideoMetadata(ctx, "asset-1", model.PlaceholderUserID, MetadataInput{Title: sp("ph")})
	require.NoError(t, err)

	db.interfere = func(ctx context.Context, coll CollectionHelper) {
		_, err := coll.UpdateOne(ctx, bson.M{"_id": phID}, bson.M{"$set": bson.M{"user_id": "carol"}})
		require.NoError(t, err)
	}

	id, err := vm.UpsertVideoMetadata(ctx, "asset-1", "alice", MetadataInput{Title: sp("mine")})
	require.NoError(t, err)
	assert.NotEqual(t, phID, id)

	carol, err := vm.GetVideoMetadata(ctx, "asset-1", "carol")
	require.NoError(t, err)
	assert.Equal(t, phID, carol.ID)
	assert.Equal(t, "ph", *carol.Title)

	alice, err := vm.GetVideoMetadata(ctx, "asset-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, id, alice.ID)
	assert.Equal(t, "mine", *alice.Title)
}

func TestApplyMergeKeepsPlaceholderTakenByAnotherUser(t *testing.T) {
	ctx := context.Background()
	db := newConflictDatabase(t)
	vm := &videoMetadataDatabase{db: db}

	phID, err := vm.UpsertVideoMetadata(ctx, "asset-1", model.PlaceholderUserID, MetadataInput{Title: sp("ph")})
	require.NoError(t, err)
	placeholder, err := vm.find(ctx, "asset-1", model.PlaceholderUserID)
	require.NoError(t, err)

	aliceID, err := vm.apply(ctx, "asset-1", "alice", metadataPlan{action: metadataInsert})
	require.NoError(t, err)
	alice, err := vm.find(ctx, "asset-1", "alice")
	require.NoError(t, err)
	plan := planMetadataUpsert("alice", alice, placeholder, MetadataInput{})
	require.Equal(t, metadataMergeAndDrop, plan.action)

	_, err = vm.apply(ctx, "asset-1", "bob", planMetadataUpsert("bob", nil, placeholder, MetadataInput{}))
	require.NoError(t, err)

	id, err := vm.apply(ctx, "asset-1", "alice", plan)
	require.NoError(t, err)
	assert.Equal(t, aliceID, id)

	bob, err := vm.GetVideoMetadata(ctx, "asset-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, phID, bob.ID)
}

func TestApplyInsertOfExistingPairConflicts(t *testing.T) {
	ctx := context.Background()
	vm := &videoMetadataDatabase{db: newConflictDatabase(t)}

	_, err := vm.apply(ctx, "asset-1", "alice", metadataPlan{action: metadataInsert})
	require.NoError(t, err)
	_, err = vm.apply(ctx, "asset-1", "alice", metadataPlan{action: metadataInsert})
	assert.ErrorIs(t, err, errMetadataConflict)
}
