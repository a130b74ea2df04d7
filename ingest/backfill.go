package ingest

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/buidl-labs/muxsync/metrics"
	"github.com/buidl-labs/muxsync/model"
	"github.com/buidl-labs/muxsync/muxapi"
	"github.com/buidl-labs/muxsync/payload"
	"github.com/buidl-labs/muxsync/validation"
)

// DefaultMaxAssets bounds a backfill run when MaxAssets is unset.
const DefaultMaxAssets = 200

// BackfillOptions tunes a backfill run. Nil fields take their defaults.
type BackfillOptions struct {
	MaxAssets            *int   `json:"maxAssets,omitempty" validate:"omitempty,min=1"`
	DefaultUserID        string `json:"defaultUserId,omitempty"`
	IncludeVideoMetadata *bool  `json:"includeVideoMetadata,omitempty"`
}

// BackfillResult counts what a backfill run did.
type BackfillResult struct {
	Scanned         int `json:"scanned"`
	SyncedAssets    int `json:"syncedAssets"`
	MetadataUpserts int `json:"metadataUpserts"`
	// MissingUserID counts assets whose metadata was filed under the
	// placeholder user.
	MissingUserID int `json:"missingUserId"`
}

// WithDefaults fills the unset fields of o from d.
func (o BackfillOptions) WithDefaults(d BackfillOptions) BackfillOptions {
	if o.MaxAssets == nil {
		o.MaxAssets = d.MaxAssets
	}
	if o.DefaultUserID == "" {
		o.DefaultUserID = d.DefaultUserID
	}
	if o.IncludeVideoMetadata == nil {
		o.IncludeVideoMetadata = d.IncludeVideoMetadata
	}
	return o
}

// Backfill walks the remote asset listing and upserts each asset, one at a
// time, stopping after MaxAssets assets. A remote failure aborts the run;
// the returned counters cover the assets completed before it.
func (s *Service) Backfill(ctx context.Context, opts BackfillOptions) (BackfillResult, error) {
	var res BackfillResult
	if err := s.requireClient(); err != nil {
		return res, err
	}
	if err := validation.Struct(opts); err != nil {
		return res, err
	}
	maxAssets := DefaultMaxAssets
	if opts.MaxAssets != nil {
		maxAssets = *opts.MaxAssets
	}
	includeMetadata := opts.IncludeVideoMetadata == nil || *opts.IncludeVideoMetadata

	logger := log.WithField("maxAssets", maxAssets)
	logger.Info("Starting backfill")

	it := muxapi.NewAssetIterator(s.client, muxapi.DefaultPageSize)
	for res.Scanned < maxAssets {
		asset, err := it.Next(ctx)
		if errors.Is(err, muxapi.Done) {
			break
		}
		if err != nil {
			logger.Error("Backfill aborted: ", err)
			metrics.BackfillAssets.WithLabelValues("failed").Inc()
			return res, &RemoteError{Op: "list assets", Err: err}
		}
		res.Scanned++

		muxAssetID := payload.String(asset["id"])
		if muxAssetID == nil {
			metrics.BackfillAssets.WithLabelValues("skipped").Inc()
			continue
		}
		if _, err := s.assets.UpsertAsset(ctx, asset); err != nil {
			return res, err
		}
		res.SyncedAssets++
		metrics.BackfillAssets.WithLabelValues("synced").Inc()

		if !includeMetadata {
			continue
		}
		meta := payload.ParsePassthrough(asset["passthrough"])
		userID := opts.DefaultUserID
		if meta.UserID != nil {
			userID = *meta.UserID
		}
		if userID == "" {
			userID = model.PlaceholderUserID
			res.MissingUserID++
		}
		if _, err := s.metadata.UpsertVideoMetadata(ctx, *muxAssetID, userID, metadataInput(meta)); err != nil {
			return res, err
		}
		res.MetadataUpserts++
	}

	logger.WithFields(log.Fields{
		"scanned":         res.Scanned,
		"syncedAssets":    res.SyncedAssets,
		"metadataUpserts": res.MetadataUpserts,
		"missingUserId":   res.MissingUserID,
	}).Info("Backfill finished")
	return res, nil
}
