// Package logistics wraps the warehouse logistics service. It is the
// fallback evidence source when primary research returns nothing usable:
// its catalog carries the basics (brand, type, yield) keyed by SKU.
package logistics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://logistics.internal.example"

// ErrSchema is returned when the service responds 200 but the payload
// violates the response schema. Callers must not retry it.
var ErrSchema = eris.New("logistics: response violates schema")

// ErrNotFound is returned when the catalog has no entry for the query.
var ErrNotFound = eris.New("logistics: no catalog entry")

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("logistics: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client queries the logistics catalog.
type Client interface {
	Lookup(ctx context.Context, query string) (*Entry, error)
}

// Entry is one logistics catalog record.
type Entry struct {
	SKU          string            `json:"sku"`
	SourceDomain string            `json:"source_domain"`
	Fields       map[string]string `json:"fields"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default service base URL.
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

// NewClient creates a logistics catalog client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
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

func (c *httpClient) Lookup(ctx context.Context, query string) (*Entry, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "logistics: rate limiter wait")
		}
	}

	u := c.baseURL + "/v1/catalog?q=" + url.QueryEscape(query)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "logistics: create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "logistics: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "logistics: read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var entry Entry
	if err := json.Unmarshal(respBody, &entry); err != nil {
		return nil, eris.Wrap(ErrSchema, err.Error())
	}
	if entry.SourceDomain == "" {
		return nil, eris.Wrap(ErrSchema, "entry has no source domain")
	}
	if len(entry.Fields) == 0 {
		return nil, ErrNotFound
	}

	return &entry, nil
}
