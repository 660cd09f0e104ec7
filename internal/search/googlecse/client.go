package googlecse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/search"
)

// Google Custom Search JSON API. Выдача ограничена десятью результатами
// на запрос, это потолок самого API.
const (
	defaultBaseURL    = "https://www.googleapis.com/customsearch/v1"
	defaultMaxResults = 5
	apiMaxResults     = 10
)

type Config struct {
	APIKey   string
	EngineID string
	BaseURL  string
	Timeout  time.Duration
}

type Client struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		baseURL:  cfg.BaseURL,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

type googleResponse struct {
	Items             []googleItem `json:"items"`
	SearchInformation struct {
		SearchTime float64 `json:"searchTime"`
	} `json:"searchInformation"`
}

type googleItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

var dateRestrict = map[string]string{
	"day":   "d1",
	"week":  "w1",
	"month": "m1",
	"year":  "y1",
}

func (c *Client) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	if req.MaxResults <= 0 {
		req.MaxResults = defaultMaxResults
	}
	if req.MaxResults > apiMaxResults {
		req.MaxResults = apiMaxResults
	}

	query := req.Query
	if len(req.Sites) > 0 {
		restricts := make([]string, len(req.Sites))
		for i, site := range req.Sites {
			restricts[i] = "site:" + site
		}
		query = fmt.Sprintf("%s (%s)", req.Query, strings.Join(restricts, " OR "))
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(req.MaxResults))
	if restrict, ok := dateRestrict[req.TimeRange]; ok {
		params.Set("dateRestrict", restrict)
	}

	requestURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	backoff := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	for attempt := 0; attempt <= len(backoff); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff[attempt-1]):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("do request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var googleResp googleResponse
			if err := json.Unmarshal(respBody, &googleResp); err != nil {
				return nil, fmt.Errorf("unmarshal response: %w", err)
			}

			if len(googleResp.Items) == 0 {
				return nil, search.ErrEmptyResults
			}

			return c.toResponse(req.Query, &googleResp), nil

		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, search.ErrUnauthorized

		case http.StatusTooManyRequests:
			return nil, search.ErrRateLimit

		case http.StatusBadRequest:
			return nil, search.ErrInvalidRequest

		default:
			if resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
				c.logger.Warn("search retry",
					zap.Int("attempt", attempt+1),
					zap.Int("status", resp.StatusCode),
				)
				continue
			}
			return nil, fmt.Errorf("%w: status %d", search.ErrSearchFailed, resp.StatusCode)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrSearchFailed, lastErr)
	}
	return nil, search.ErrSearchFailed
}

func (c *Client) toResponse(query string, resp *googleResponse) *search.Response {
	results := make([]search.Result, len(resp.Items))
	for i, item := range resp.Items {
		results[i] = search.Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
			Source:  item.DisplayLink,
		}
	}

	return &search.Response{
		Query:      query,
		Results:    results,
		SearchTime: resp.SearchInformation.SearchTime,
	}
}
