package muxapi

import (
	"context"
	"errors"

	"github.com/buidl-labs/muxsync/payload"
)

// DefaultPageSize is the page size of AssetIterator.
const DefaultPageSize = 100

// Done is returned by AssetIterator.Next when there are no more assets.
var Done = errors.New("no more items in iterator")

// AssetIterator walks every asset page by page. The listing ends on the
// first empty page.
type AssetIterator struct {
	client   Client
	pageSize int
	page     int
	buf      []payload.Object
	done     bool
}

// NewAssetIterator returns an iterator over all assets of client.
func NewAssetIterator(client Client, pageSize int) *AssetIterator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &AssetIterator{client: client, pageSize: pageSize}
}

// Next returns the next asset, or Done.
func (it *AssetIterator) Next(ctx context.Context) (payload.Object, error) {
	for len(it.buf) == 0 {
		if it.done {
			return nil, Done
		}
		it.page++
		assets, err := it.client.ListAssets(ctx, it.page, it.pageSize)
		if err != nil {
			return nil, err
		}
		if len(assets) == 0 {
			it.done = true
		}
		it.buf = assets
	}
	next := it.buf[0]
	it.buf = it.buf[1:]
	return next, nil
}
