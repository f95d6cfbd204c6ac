// Package brewfather fetches batch records from the Brewfather API.
//
// The client is a thin collaborator around the aggregation core: it pages
// through the batch list, pulls each batch with its recipe inlined, and
// dumps the raw JSON to disk for the aggregator to consume. Credentials are
// passed in explicitly; nothing here reads the environment.
package brewfather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sklopivo/sklopivo.github.io/internal/fsutil"
	"github.com/sklopivo/sklopivo.github.io/internal/httputil"
	"github.com/sklopivo/sklopivo.github.io/internal/monitoring"
	"github.com/sklopivo/sklopivo.github.io/internal/timeutil"
)

// Config holds the explicit client configuration. UserID and APIKey are the
// Brewfather API credentials.
type Config struct {
	UserID  string
	APIKey  string
	BaseURL string

	// PageLimit is the page size for the batch list (max 50 upstream).
	PageLimit int

	// Throttle is the sleep between successive API calls to stay inside the
	// upstream rate limit.
	Throttle time.Duration

	// MaxRetries bounds retries on 429 and 5xx responses per request.
	MaxRetries int
}

// Client pages through the Brewfather batch list.
type Client struct {
	cfg   Config
	http  httputil.Doer
	clock timeutil.Clock
}

// NewClient creates a Client with the given configuration. A nil doer
// defaults to http.DefaultClient; a nil clock to the real clock.
func NewClient(cfg Config, doer httputil.Doer, clock timeutil.Clock) (*Client, error) {
	if cfg.UserID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("brewfather credentials are required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("brewfather base URL is required")
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Client{cfg: cfg, http: doer, clock: clock}, nil
}

// batchCursor is the minimal shape needed to advance pagination.
type batchCursor struct {
	ID string `json:"_id"`
}

// FetchAllBatches retrieves every batch record, recipe data included, as raw
// JSON documents in upstream order. The listing is sequential: each page's
// last id seeds the next page's start_after cursor.
func (c *Client) FetchAllBatches(ctx context.Context) ([]json.RawMessage, error) {
	var all []json.RawMessage
	startAfter := ""

	for {
		page, err := c.fetchPage(ctx, startAfter)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		monitoring.Logf("fetched %d batches (total %d)", len(page), len(all))

		var cursor batchCursor
		if err := json.Unmarshal(page[len(page)-1], &cursor); err != nil || cursor.ID == "" {
			return nil, fmt.Errorf("batch record missing _id, cannot paginate: %v", err)
		}
		startAfter = cursor.ID

		if len(page) < c.cfg.PageLimit {
			break
		}
		if c.cfg.Throttle > 0 {
			c.clock.Sleep(c.cfg.Throttle)
		}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, startAfter string) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.cfg.PageLimit))
	q.Set("include", "recipe")
	q.Set("complete", "true")
	if startAfter != "" {
		q.Set("start_after", startAfter)
	}
	reqURL := fmt.Sprintf("%s/v2/batches?%s", c.cfg.BaseURL, q.Encode())

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var page []json.RawMessage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("unexpected batch list response: %w", err)
	}
	return page, nil
}

// get issues one GET with basic auth, retrying 429 and 5xx responses with a
// backoff sleep. Other non-200 statuses fail immediately.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.Throttle
			if backoff <= 0 {
				backoff = time.Second
			}
			c.clock.Sleep(backoff * time.Duration(attempt))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.SetBasicAuth(c.cfg.UserID, c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read response body: %w", readErr)
				continue
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
			monitoring.Logf("retrying %s after status %d (attempt %d/%d)",
				reqURL, resp.StatusCode, attempt+1, c.cfg.MaxRetries)
			continue
		default:
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, reqURL)
		}
	}
	return nil, fmt.Errorf("giving up after %d retries: %w", c.cfg.MaxRetries, lastErr)
}

// WriteRaw dumps the fetched batches as one JSON array, atomically.
func WriteRaw(fsys fsutil.FileSystem, path string, batches []json.RawMessage) error {
	if batches == nil {
		batches = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(batches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal raw batches: %w", err)
	}
	data = append(data, '\n')
	if err := fsutil.WriteFileAtomic(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write raw batch file: %w", err)
	}
	return nil
}
