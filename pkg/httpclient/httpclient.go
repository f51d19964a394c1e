// Package httpclient implements the download.Client transport on top of a
// retrying HTTP client. Transient failures are retried with exponential
// backoff inside this layer; callers only see the final outcome.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/glorpus-work/siphon/internal/logger"
	pkgerrors "github.com/glorpus-work/siphon/pkg/errors"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a single streaming request.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is the number of re-attempts after the first try.
	DefaultMaxRetries = 5

	// DefaultRetryWaitMin is the initial backoff delay.
	DefaultRetryWaitMin = 300 * time.Millisecond

	// DefaultRetryWaitMax caps the backoff delay.
	DefaultRetryWaitMax = 10 * time.Second

	// DefaultUserAgent is a realistic browser User-Agent; some origin servers
	// refuse requests without one.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko)" +
		" Version/18.3 Safari/605.1.15"
)

// DefaultRetryStatusCodes lists the response codes treated as transient.
func DefaultRetryStatusCodes() []int {
	return []int{
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusGatewayTimeout,
	}
}

// Config controls timeout, retry policy and request headers for the client.
// The zero value of any field falls back to the package default.
type Config struct {
	Timeout          time.Duration
	MaxRetries       int
	RetryWaitMin     time.Duration
	RetryWaitMax     time.Duration
	RetryStatusCodes []int
	UserAgent        string
	Headers          map[string]string
}

func (cfg Config) withDefaults() Config {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = DefaultRetryWaitMin
	}
	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = DefaultRetryWaitMax
	}
	if cfg.RetryStatusCodes == nil {
		cfg.RetryStatusCodes = DefaultRetryStatusCodes()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return cfg
}

// Client issues HEAD and streaming GET requests with automatic retries.
type Client struct {
	rc  *retryablehttp.Client
	cfg Config
}

// New creates a Client from cfg, applying defaults for zero-valued fields.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()

	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.Logger = logger.GetLogger()
	rc.CheckRetry = statusRetryPolicy(cfg.RetryStatusCodes)

	return &Client{rc: rc, cfg: cfg}
}

// ContentLength issues a HEAD request and returns the server-reported size.
// A response without a length indicator yields errors.ErrMetadataUnavailable.
func (c *Client) ContentLength(ctx context.Context, uri string) (int64, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "could not create HEAD request for %s", uri)
	}
	c.setHeaders(req)

	resp, err := c.rc.Do(req)
	if err != nil {
		return 0, pkgerrors.Wrapf(pkgerrors.ErrTransferFailed, "HEAD %s: %v", uri, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, pkgerrors.Wrapf(pkgerrors.ErrTransferFailed, "HEAD %s: unexpected status code %d", uri, resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return 0, pkgerrors.Wrapf(pkgerrors.ErrMetadataUnavailable, "HEAD %s", uri)
	}
	return resp.ContentLength, nil
}

// Get issues a streaming GET request and returns the response body. The caller
// must close the returned reader.
func (c *Client) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "could not create GET request for %s", uri)
	}
	c.setHeaders(req)

	resp, err := c.rc.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrTransferFailed, "GET %s: %v", uri, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, pkgerrors.Wrapf(pkgerrors.ErrTransferFailed, "GET %s: unexpected status code %d", uri, resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) setHeaders(req *retryablehttp.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
}

// statusRetryPolicy retries connection-level failures like the default policy
// but only re-attempts the configured set of response codes.
func statusRetryPolicy(codes []int) retryablehttp.CheckRetry {
	retriable := make(map[int]bool, len(codes))
	for _, code := range codes {
		retriable[code] = true
	}
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil || resp == nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		if retriable[resp.StatusCode] {
			return true, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return false, nil
	}
}
