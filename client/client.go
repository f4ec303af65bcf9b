// Package cmrclient is a reusable client for the NASA Common Metadata
// Repository search API.
package cmrclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Client is a reusable CMR search client.
type Client struct {
	httpClient     *http.Client
	baseURL        *url.URL
	defaultHeaders http.Header
	retryPolicy    RetryPolicy
	logger         Logger
}

// New constructs a Client with provided options.
func New(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient:     &http.Client{},
		defaultHeaders: make(http.Header),
		retryPolicy:    NoRetryPolicy,
	}
	c.defaultHeaders.Set("Accept", "application/json")
	c.defaultHeaders.Set("User-Agent", "go-cmr-client/0.1")

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.baseURL == nil {
		return nil, ErrInvalidBaseURL
	}
	if c.httpClient == nil {
		return nil, ErrNilHTTPClient
	}
	return c, nil
}

// Collections returns a service for collection searches.
func (c *Client) Collections() *CollectionService {
	return &CollectionService{client: c}
}

// Granules returns a service for granule searches.
func (c *Client) Granules() *GranuleService {
	return &GranuleService{client: c}
}

func (c *Client) buildURL(endpoint string, query url.Values) (string, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u := *c.baseURL
	u.Path = path.Join(c.baseURL.Path, endpoint)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, contentType string, opts []RequestOption) (*http.Request, error) {
	urlStr, err := c.buildURL(endpoint, query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, err
	}

	for key, values := range c.defaultHeaders {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(req); err != nil {
			return nil, err
		}
	}

	return req, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.logger != nil {
		c.logger.Debugf("cmrclient: %s %s", req.Method, req.URL)
	}

	resp, err := c.retry(ctx, func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return nil, readErr
	}

	apiErr := newAPIError(resp.StatusCode, data)
	if c.logger != nil {
		c.logger.Errorf("cmrclient: request failed status=%d", resp.StatusCode)
	}
	return nil, apiErr
}

// doRaw executes a request and returns the response body and headers.
// Search endpoints need both: the body carries the result document and
// the headers carry hit counts and continuation markers.
func (c *Client) doRaw(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, contentType string, opts []RequestOption) ([]byte, http.Header, error) {
	req, err := c.newRequest(ctx, method, endpoint, query, body, contentType, opts)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return data, resp.Header, nil
}
