package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultPageSize is how many parts are requested per page
	DefaultPageSize = 200

	// maxPages bounds pagination against a catalog that never stops paging
	maxPages = 500

	maxAttempts    = 3
	maxErrorBody   = 4 * 1024
	maxPageBody    = 16 * 1024 * 1024
	userAgent      = "partingest/1.0"
	defaultPerHour = 1000
)

// Client reads the existing parts catalog over HTTP. It implements
// domain.CatalogSource.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	pageSize    int
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
	log         *zap.Logger
}

// NewClient creates a catalog client limited to requestsPerHour (default 1000)
func NewClient(apiKey, baseURL string, requestsPerHour int) *Client {
	if requestsPerHour <= 0 {
		requestsPerHour = defaultPerHour
	}
	// rate.Limit is per second
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		pageSize:    DefaultPageSize,
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
		log:         logger.Named("catalog"),
	}
}

// SetDebug enables per-request debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetPageSize overrides the page size
func (c *Client) SetPageSize(n int) {
	if n > 0 {
		c.pageSize = n
	}
}

// ListEntries pages through the whole catalog
func (c *Client) ListEntries(ctx context.Context) ([]domain.CatalogEntry, error) {
	entries := []domain.CatalogEntry{}
	page := 1

	for fetched := 1; fetched <= maxPages; fetched++ {
		resp, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		entries = append(entries, MapEntries(resp.Parts)...)

		// A next page that does not move forward ends the walk
		if resp.NextPage <= page || len(resp.Parts) == 0 {
			c.log.Info("Catalog loaded",
				zap.Int("entries", len(entries)),
				zap.Int("pages", fetched),
			)
			return entries, nil
		}
		page = resp.NextPage
	}

	return nil, fmt.Errorf("%w: more than %d pages", domain.ErrCatalogUnavailable, maxPages)
}

// fetchPage retries transient failures (network errors, 429 and 5xx) up to
// three times. Other 4xx responses fail immediately.
func (c *Client) fetchPage(ctx context.Context, page int) (*PageResponse, error) {
	params := url.Values{}
	params.Add("page", strconv.Itoa(page))
	params.Add("page_size", strconv.Itoa(c.pageSize))
	reqURL := fmt.Sprintf("%s/v1/parts?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		c.debugLog("GET page", zap.Int("page", page), zap.Int("attempt", attempt))

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, lastErr
			}
			if waitErr := c.wait(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := readLimitedBody(resp.Body, maxErrorBody)
			resp.Body.Close()

			lastErr = fmt.Errorf("%w: status %d: %s", domain.ErrCatalogUnavailable, resp.StatusCode, string(body))
			c.log.Warn("Catalog request failed",
				zap.Int("page", page),
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
			)
			if !retryable(resp.StatusCode) {
				return nil, lastErr
			}
			if waitErr := c.wait(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		body, err := readLimitedBody(resp.Body, maxPageBody)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		var pageResp PageResponse
		if err := json.Unmarshal(body, &pageResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &pageResp, nil
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return resp, nil
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	if attempt >= maxAttempts {
		return nil
	}
	timer := time.NewTimer(c.backoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) debugLog(msg string, fields ...zap.Field) {
	if c.debug {
		c.log.Debug(msg, fields...)
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}
