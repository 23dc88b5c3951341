// Package research wraps the product research service, which fans a
// canonical product query out to manufacturer and retailer sources and
// returns per-field claims with their origin.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://research.internal.example"

// ErrSchema is returned when the service responds 200 but the payload
// violates the response schema. Callers must not retry it.
var ErrSchema = eris.New("research: response violates schema")

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("research: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client queries the research service.
type Client interface {
	Research(ctx context.Context, req Request) (*Response, error)
}

// Request is the body for POST /v1/research.
type Request struct {
	Query  string   `json:"query"`
	Fields []string `json:"fields,omitempty"`
	Market string   `json:"market,omitempty"`
}

// SourceClaim is one field assertion from one source the service consulted.
type SourceClaim struct {
	Field        string  `json:"field"`
	Value        string  `json:"value"`
	SourceDomain string  `json:"source_domain"`
	SourceKind   string  `json:"source_kind"`
	Confidence   float64 `json:"confidence"`
}

// Response is the body from POST /v1/research.
type Response struct {
	Query         string        `json:"query"`
	Summary       string        `json:"summary,omitempty"`
	Claims        []SourceClaim `json:"claims"`
	SourceDomains []string      `json:"source_domains,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default service base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a research service client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
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

func (c *httpClient) Research(ctx context.Context, req Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "research: rate limiter wait")
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "research: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/research", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "research: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "research: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "research: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(ErrSchema, err.Error())
	}
	if err := validate(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// validate enforces the response schema: every claim names its field and
// origin domain and carries a confidence inside [0,1].
func validate(r *Response) error {
	for i, cl := range r.Claims {
		if cl.Field == "" {
			return eris.Wrapf(ErrSchema, "claim %d has no field", i)
		}
		if cl.SourceDomain == "" {
			return eris.Wrapf(ErrSchema, "claim %d (%s) has no source domain", i, cl.Field)
		}
		if cl.Confidence < 0 || cl.Confidence > 1 {
			return eris.Wrapf(ErrSchema, "claim %d (%s) confidence %f out of range", i, cl.Field, cl.Confidence)
		}
	}
	return nil
}
