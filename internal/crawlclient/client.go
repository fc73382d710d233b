// Package crawlclient posts crawl requests to the external crawl service.
package crawlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/court-case-tracker/internal/courtcase"
	"github.com/JakeFAU/court-case-tracker/internal/metrics"
)

// DefaultPath is the crawl service route that accepts court case batches.
const DefaultPath = "/crawl-court-cases"

// ErrDispatchRejected reports a non-2xx answer from the crawl service.
var ErrDispatchRejected = errors.New("crawl service rejected request")

// Config locates the crawl service.
type Config struct {
	BaseURL string
	Path    string
	Timeout time.Duration
}

// Client sends CrawlRequest batches as a JSON array. It never retries.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a Client. httpClient may be nil.
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("crawl service base url is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse crawl service url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("crawl service url %q must be absolute", cfg.BaseURL)
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	endpoint := base.JoinPath(path).String()

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout > 0 {
		cp := *httpClient
		cp.Timeout = cfg.Timeout
		httpClient = &cp
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Endpoint returns the resolved crawl service URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Dispatch POSTs the requests. The response body is discarded.
func (c *Client) Dispatch(ctx context.Context, requests []courtcase.CrawlRequest) error {
	if requests == nil {
		requests = []courtcase.CrawlRequest{}
	}
	body, err := json.Marshal(requests)
	if err != nil {
		return fmt.Errorf("marshal crawl requests: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build crawl request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveDispatch(metrics.DispatchError, len(requests))
		c.logger.Warn("crawl dispatch failed", zap.String("endpoint", c.endpoint), zap.Error(err))
		return fmt.Errorf("post crawl requests: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close crawl response body", zap.Error(cerr))
		}
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveDispatch(metrics.DispatchRejected, len(requests))
		c.logger.Warn("crawl service rejected dispatch",
			zap.String("endpoint", c.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Int("requests", len(requests)),
		)
		return fmt.Errorf("%w: status %d", ErrDispatchRejected, resp.StatusCode)
	}

	metrics.ObserveDispatch(metrics.DispatchOK, len(requests))
	c.logger.Debug("crawl requests dispatched",
		zap.Int("requests", len(requests)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
