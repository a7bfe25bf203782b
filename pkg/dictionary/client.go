package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Free Dictionary API entries endpoint.
	DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	// DefaultTimeout bounds one lookup.
	DefaultTimeout = 5 * time.Second

	maxBodySize = 1 << 20
)

// Client looks words up against the dictionary API.
type Client struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	client    *http.Client
}

// NewClient creates a client. An empty baseURL or non-positive timeout
// falls back to the defaults.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Timeout:   timeout,
		UserAgent: "hldict-cli",
		client:    http.DefaultClient,
	}
}

// NewHTTPClient returns an HTTP client whose transport keeps one idle
// connection per lookup worker, so concurrent lookups reuse connections to
// the dictionary host.
func NewHTTPClient(workers int) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = EffectiveWorkers(workers)
	return &http.Client{Transport: tr}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// Define fetches the first definition of word. Failures are returned as
// *LookupError and are never retried.
func (c *Client) Define(ctx context.Context, word string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	endpoint := c.BaseURL + "/" + url.PathEscape(word)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &LookupError{Word: word, Kind: KindNetwork, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &LookupError{Word: word, Kind: transportKind(err), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &LookupError{Word: word, Kind: KindStatus, Err: fmt.Errorf("bad status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &LookupError{Word: word, Kind: transportKind(err), Err: fmt.Errorf("failed to read body: %w", err)}
	}

	def, err := FirstDefinition(body)
	if err != nil {
		kind := KindShape
		if errors.Is(err, ErrDecode) {
			kind = KindDecode
		}
		return "", &LookupError{Word: word, Kind: kind, Err: err}
	}
	return def, nil
}
