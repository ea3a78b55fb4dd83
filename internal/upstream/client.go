package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/utafrali/searchfeed/pkg/errors"
	"github.com/utafrali/searchfeed/pkg/httpclient"

	"github.com/utafrali/searchfeed/internal/domain"
)

// Request is one query sent to the external search service.
type Request struct {
	Shopkey string `json:"shopkey"`
	Query   string `json:"query"`
	Start   int    `json:"start"`
	Count   int    `json:"count"`
}

// ProductRef is one product reference returned by the search service, in
// ranked order.
type ProductRef struct {
	ID string `json:"id"`
}

// Response is the search service's answer to a query.
type Response struct {
	Products []ProductRef `json:"products"`
	Total    int          `json:"total"`
}

// Client talks to the external search service over HTTP. Network failures
// and 5xx answers surface as errors wrapping pkg/errors.ErrServiceUnavail so
// callers can fall back without inspecting transport details.
type Client struct {
	http    *httpclient.Client
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a search service client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	cfg := httpclient.DefaultConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return &Client{
		http:    httpclient.New(cfg),
		baseURL: baseURL,
		logger:  logger,
	}
}

// Send executes a search query and returns the ranked product references.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	q := url.Values{}
	q.Set("shopkey", req.Shopkey)
	q.Set("query", req.Query)
	q.Set("start", strconv.Itoa(req.Start))
	q.Set("count", strconv.Itoa(req.Count))

	resp, err := c.http.Get(ctx, c.baseURL+"/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("search service request: %w", apperrors.ErrServiceUnavail)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service returned status %d: %w", resp.StatusCode, apperrors.ErrServiceUnavail)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return &out, nil
}

// PushUpdate uploads a single rebuilt export item, replacing the service's
// copy of the product.
func (c *Client) PushUpdate(ctx context.Context, shopkey string, item *domain.ExportItem) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal export item: %w", err)
	}

	u := c.baseURL + "/update?shopkey=" + url.QueryEscape(shopkey)
	resp, err := c.http.Post(ctx, u, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("push update: %w", apperrors.ErrServiceUnavail)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("push update returned status %d", resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// PushDelete removes a product from the service's index.
func (c *Client) PushDelete(ctx context.Context, shopkey, productID string) error {
	q := url.Values{}
	q.Set("shopkey", shopkey)
	q.Set("id", productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/update?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("push delete: %w", apperrors.ErrServiceUnavail)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("push delete returned status %d", resp.StatusCode)
	}
	return nil
}

// Ping verifies the search service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.Get(ctx, c.baseURL+"/health")
	if err != nil {
		return fmt.Errorf("ping search service: %w", err)
	}
	resp.Body.Close()
	return nil
}
