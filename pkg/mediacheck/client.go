// Package mediacheck wraps the media validation service, which inspects
// product imagery and reports named pass/fail checks (model code visible,
// resolution, watermarks).
package mediacheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://media.internal.example"

// ErrSchema is returned when the service responds 200 but the payload
// violates the response schema. Callers must not retry it.
var ErrSchema = eris.New("mediacheck: response violates schema")

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediacheck: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client validates product media.
type Client interface {
	Validate(ctx context.Context, req Request) ([]Check, error)
}

// Request is the body for POST /v1/validate.
type Request struct {
	ImageURLs     []string `json:"image_urls"`
	ExpectedBrand string   `json:"expected_brand,omitempty"`
	ExpectedModel string   `json:"expected_model,omitempty"`
}

// Check is one named validation outcome.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

type response struct {
	Checks []Check `json:"checks"`
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a media validation client.
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

func (c *httpClient) Validate(ctx context.Context, req Request) ([]Check, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "mediacheck: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/validate", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "mediacheck: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "mediacheck: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "mediacheck: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(ErrSchema, err.Error())
	}
	for i, chk := range result.Checks {
		if chk.Name == "" {
			return nil, eris.Wrapf(ErrSchema, "check %d has no name", i)
		}
	}

	return result.Checks, nil
}
