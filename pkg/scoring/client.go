// Package scoring wraps the external deal scoring service. The scoring
// algorithm itself is opaque; the client only delivers a deal id and user
// identity and parses the normalized score.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the scoring service operation used by the pipeline.
type Client interface {
	Score(ctx context.Context, req ScoreRequest) (*ScoreResponse, error)
}

// ScoreRequest identifies the deal and requesting user.
type ScoreRequest struct {
	DealID    string `json:"deal_id"`
	UserEmail string `json:"user_email"`
}

// ScoreResponse is the service's reply. OverallScore ranges 0-100 and may
// be omitted by the service, in which case it decodes as 0.
type ScoreResponse struct {
	Scoring ScoringResult `json:"scoring"`
}

// ScoringResult holds the normalized score for a deal.
type ScoringResult struct {
	OverallScore float64 `json:"overall_score"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles scoring calls to rps requests per second.
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

// NewClient creates a scoring service client.
func NewClient(apiKey, baseURL string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Score(ctx context.Context, req ScoreRequest) (*ScoreResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "scoring: rate limit")
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "scoring: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("scoring: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ScoreResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "scoring: unmarshal response")
	}

	return &result, nil
}
