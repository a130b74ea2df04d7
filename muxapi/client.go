// Package muxapi talks to the Mux Video REST API and verifies the
// signatures of its webhook deliveries.
package muxapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/buidl-labs/muxsync/metrics"
	"github.com/buidl-labs/muxsync/payload"
)

// DefaultBaseURL is the Mux Video API root.
const DefaultBaseURL = "https://api.mux.com/video/v1"

// Client is the subset of the Mux Video API the service uses. Payloads are
// passed through untyped; the payload package normalizes them.
type Client interface {
	ListAssets(ctx context.Context, page, limit int) ([]payload.Object, error)
	RetrieveAsset(ctx context.Context, id string) (payload.Object, error)
	CreateAsset(ctx context.Context, params payload.Object) (payload.Object, error)

	ListLiveStreams(ctx context.Context, page, limit int) ([]payload.Object, error)
	RetrieveLiveStream(ctx context.Context, id string) (payload.Object, error)
	CreateLiveStream(ctx context.Context, params payload.Object) (payload.Object, error)

	ListUploads(ctx context.Context, page, limit int) ([]payload.Object, error)
	RetrieveUpload(ctx context.Context, id string) (payload.Object, error)
	CreateUpload(ctx context.Context, params payload.Object) (payload.Object, error)
}

// APIError is a non-2xx answer of the Mux API.
type APIError struct {
	StatusCode int
	Type       string
	Messages   []string
}

func (e *APIError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Type != "" {
		return fmt.Sprintf("mux api: %d %s: %s", e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("mux api: %d: %s", e.StatusCode, msg)
}

// IsNotFound reports whether err is a 404 from the Mux API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Config configures an HTTPClient.
type Config struct {
	TokenID     string
	TokenSecret string
	BaseURL     string
	// RequestsPerSecond caps outbound calls. Zero means 5.
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// HTTPClient implements Client over HTTP with basic auth.
type HTTPClient struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	http        *http.Client
	limiter     *rate.Limiter
	cb          *gobreaker.CircuitBreaker[[]byte]
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Type     string   `json:"type"`
		Messages []string `json:"messages"`
	} `json:"error"`
}

const breakerName = "mux-api"

// NewHTTPClient returns a rate limited, circuit broken Mux API client.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors say nothing about the health of the API.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("Circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &HTTPClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokenID:     cfg.TokenID,
		tokenSecret: cfg.TokenSecret,
		http:        httpClient,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cb:          cb,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

func (c *HTTPClient) ListAssets(ctx context.Context, page, limit int) ([]payload.Object, error) {
	return c.list(ctx, "list_assets", "/assets", page, limit)
}

func (c *HTTPClient) RetrieveAsset(ctx context.Context, id string) (payload.Object, error) {
	return c.object(ctx, "retrieve_asset", http.MethodGet, "/assets/"+url.PathEscape(id), nil)
}

func (c *HTTPClient) CreateAsset(ctx context.Context, params payload.Object) (payload.Object, error) {
	return c.object(ctx, "create_asset", http.MethodPost, "/assets", params)
}

func (c *HTTPClient) ListLiveStreams(ctx context.Context, page, limit int) ([]payload.Object, error) {
	return c.list(ctx, "list_live_streams", "/live-streams", page, limit)
}

func (c *HTTPClient) RetrieveLiveStream(ctx context.Context, id string) (payload.Object, error) {
	return c.object(ctx, "retrieve_live_stream", http.MethodGet, "/live-streams/"+url.PathEscape(id), nil)
}

func (c *HTTPClient) CreateLiveStream(ctx context.Context, params payload.Object) (payload.Object, error) {
	return c.object(ctx, "create_live_stream", http.MethodPost, "/live-streams", params)
}

func (c *HTTPClient) ListUploads(ctx context.Context, page, limit int) ([]payload.Object, error) {
	return c.list(ctx, "list_uploads", "/uploads", page, limit)
}

func (c *HTTPClient) RetrieveUpload(ctx context.Context, id string) (payload.Object, error) {
	return c.object(ctx, "retrieve_upload", http.MethodGet, "/uploads/"+url.PathEscape(id), nil)
}

func (c *HTTPClient) CreateUpload(ctx context.Context, params payload.Object) (payload.Object, error) {
	return c.object(ctx, "create_upload", http.MethodPost, "/uploads", params)
}

func (c *HTTPClient) list(ctx context.Context, op, path string, page, limit int) ([]payload.Object, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	data, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var items []interface{}
	if len(data) == 0 {
		return []payload.Object{}, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("mux api: decoding %s: %w", op, err)
	}
	out := make([]payload.Object, 0, len(items))
	for _, item := range items {
		if obj := payload.AsObject(item); obj != nil {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (c *HTTPClient) object(ctx context.Context, op, method, path string, body payload.Object) (payload.Object, error) {
	data, err := c.do(ctx, op, method, path, body)
	if err != nil {
		return nil, err
	}
	obj, err := payload.DecodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("mux api: decoding %s: %w", op, err)
	}
	return obj, nil
}

// do performs one call and returns the data member of the envelope.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body payload.Object) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := c.cb.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, body)
	})
	metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.APIRequests.WithLabelValues(op, "rejected").Inc()
		log.WithField("operation", op).Warn("Mux API request rejected by circuit breaker")
	case err != nil:
		metrics.APIRequests.WithLabelValues(op, "failure").Inc()
		log.WithField("operation", op).Error("Mux API request failed: ", err)
	default:
		metrics.APIRequests.WithLabelValues(op, "success").Inc()
	}
	return data, err
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, body payload.Object) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			apiErr.Type = env.Error.Type
			apiErr.Messages = env.Error.Messages
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("mux api: decoding response: %w", decodeErr)
	}
	return env.Data, nil
}
