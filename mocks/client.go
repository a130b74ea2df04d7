// Package mocks holds testify mocks of the service's external
// dependencies.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/buidl-labs/muxsync/muxapi"
	"github.com/buidl-labs/muxsync/payload"
)

// Client is a mock of muxapi.Client.
type Client struct {
	mock.Mock
}

var _ muxapi.Client = (*Client)(nil)

func (m *Client) objects(args mock.Arguments) ([]payload.Object, error) {
	var out []payload.Object
	if v := args.Get(0); v != nil {
		out = v.([]payload.Object)
	}
	return out, args.Error(1)
}

func (m *Client) object(args mock.Arguments) (payload.Object, error) {
	var out payload.Object
	if v := args.Get(0); v != nil {
		out = v.(payload.Object)
	}
	return out, args.Error(1)
}

func (m *Client) ListAssets(ctx context.Context, page, limit int) ([]payload.Object, error) {
	return m.objects(m.Called(ctx, page, limit))
}

func (m *Client) RetrieveAsset(ctx context.Context, id string) (payload.Object, error) {
	return m.object(m.Called(ctx, id))
}

func (m *Client) CreateAsset(ctx context.Context, params payload.Object) (payload.Object, error) {
	return m.object(m.Called(ctx, params))
}

func (m *Client) ListLiveStreams(ctx context.Context, page, limit int) ([]payload.Object, error) {
	return m.objects(m.Called(ctx, page, limit))
}

func (m *Client) RetrieveLiveStream(ctx context.Context, id string) (payload.Object, error) {
	return m.object(m.Called(ctx, id))
}

func (m *Client) CreateLiveStream(ctx context.Context, params payload.Object) (payload.Object, error) {
	return m.object(m.Called(ctx, params))
}

func (m *Client) ListUploads(ctx context.Context, page, limit int) ([]payload.Object, error) {
	return m.objects(m.Called(ctx, page, limit))
}

func (m *Client) RetrieveUpload(ctx context.Context, id string) (payload.Object, error) {
	return m.object(m.Called(ctx, id))
}

func (m *Client) CreateUpload(ctx context.Context, params payload.Object) (payload.Object, error) {
	return m.object(m.Called(ctx, params))
}
