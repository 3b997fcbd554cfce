package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/albertus-andito/fake-news-detection/internal/core/common"
)

const maxBodyBytes = 8 << 20

// HTTPClient talks to the fact-checking, knowledge-graph and article
// services behind one base URL (/fc and /kgu prefixes).
type HTTPClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

var (
	_ FactChecker    = (*HTTPClient)(nil)
	_ GraphUpdater   = (*HTTPClient)(nil)
	_ ArticleService = (*HTTPClient)(nil)
)

// NewHTTPClient creates a client for baseURL. A non-positive rps disables
// client-side rate limiting.
func NewHTTPClient(baseURL string, timeout time.Duration, rps float64, logger *log.Logger) *HTTPClient {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// BaseURL returns the collaborator root this client was configured with.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, payload any) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("collaborator call", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))
	return resp.StatusCode, data, nil
}

// send performs a request and fails on any non-2xx status.
func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	status, body, err := c.do(ctx, method, path, query, payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &StatusError{Method: method, Path: path, Status: status, Message: common.ErrorMessage(body)}
	}
	return body, nil
}

func fetchJSON[T any](ctx context.Context, c *HTTPClient, method, path string, query url.Values, payload any) (T, error) {
	body, err := c.send(ctx, method, path, query, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return common.ParseJSON[T](body)
}
