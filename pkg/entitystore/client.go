// Package entitystore provides a typed client for the remote entity API that
// holds user profiles and deals. It exposes filter/create/update primitives;
// all business logic lives with the caller.
package entitystore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Entity names used by the pipeline.
const (
	EntityUserProfile = "UserProfile"
	EntityDeal        = "Deal"
)

// Client defines the entity API operations used by the pipeline.
type Client interface {
	// List returns up to limit records of the entity, ordered by sort
	// (a field name, "-" prefix for descending).
	List(ctx context.Context, entity, sort string, limit int) ([]json.RawMessage, error)

	// Filter returns records matching all key/value pairs in where.
	Filter(ctx context.Context, entity string, where map[string]any, limit int) ([]json.RawMessage, error)

	// Create inserts a record and returns the stored representation,
	// including the server-assigned id.
	Create(ctx context.Context, entity string, fields any) (json.RawMessage, error)

	// Update applies a partial update to the record with the given id.
	Update(ctx context.Context, entity, id string, partial any) error
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles API calls to rps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an entity store client. By default calls are throttled
// to 10 req/s.
func NewClient(apiKey, baseURL string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) List(ctx context.Context, entity, sort string, limit int) ([]json.RawMessage, error) {
	q := url.Values{}
	if sort != "" {
		q.Set("sort", sort)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := fmt.Sprintf("%s/entities/%s", c.baseURL, url.PathEscape(entity))
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	var records []json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &records); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("entitystore: list %s", entity))
	}
	return records, nil
}

func (c *httpClient) Filter(ctx context.Context, entity string, where map[string]any, limit int) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/entities/%s/filter", c.baseURL, url.PathEscape(entity))
	body := map[string]any{"where": where}
	if limit > 0 {
		body["limit"] = limit
	}

	var records []json.RawMessage
	if err := c.do(ctx, http.MethodPost, endpoint, body, &records); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("entitystore: filter %s", entity))
	}
	return records, nil
}

func (c *httpClient) Create(ctx context.Context, entity string, fields any) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/entities/%s", c.baseURL, url.PathEscape(entity))

	var record json.RawMessage
	if err := c.do(ctx, http.MethodPost, endpoint, fields, &record); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("entitystore: create %s", entity))
	}
	return record, nil
}

func (c *httpClient) Update(ctx context.Context, entity, id string, partial any) error {
	endpoint := fmt.Sprintf("%s/entities/%s/%s", c.baseURL, url.PathEscape(entity), url.PathEscape(id))

	if err := c.do(ctx, http.MethodPatch, endpoint, partial, nil); err != nil {
		return eris.Wrap(err, fmt.Sprintf("entitystore: update %s %s", entity, id))
	}
	return nil
}

// do performs one HTTP round-trip, marshaling body in and out as JSON.
func (c *httpClient) do(ctx context.Context, method, endpoint string, body, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "unmarshal response")
		}
	}
	return nil
}
