package bizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/bizdata-console/internal/domain/business"
)

const collectionPath = "/api/businesses"

// Client talks to the business REST API. It implements business.Remote.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient buat client ke baseURL. httpClient nil berarti http.DefaultClient
// (tanpa timeout eksplisit).
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log.With().Str("component", "bizapi").Logger(),
	}
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// List GET /api/businesses. The body must be a JSON array.
func (c *Client) List(ctx context.Context) ([]business.Business, error) {
	body, err := c.do(ctx, http.MethodGet, collectionPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}

	raw := bytes.TrimSpace(body)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("list businesses: body is not a JSON array: %w", business.ErrShape)
	}
	var list []business.Business
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("list businesses: %v: %w", err, business.ErrShape)
	}
	if list == nil {
		list = []business.Business{}
	}
	return list, nil
}

// Create POST /api/businesses
func (c *Client) Create(ctx context.Context, p business.Payload) error {
	if _, err := c.do(ctx, http.MethodPost, collectionPath, p); err != nil {
		return fmt.Errorf("create business: %w", err)
	}
	return nil
}

// Update PUT /api/businesses/{id}
func (c *Client) Update(ctx context.Context, id business.ID, p business.Payload) error {
	if _, err := c.do(ctx, http.MethodPut, itemPath(id), p); err != nil {
		return fmt.Errorf("update business %d: %w", id, err)
	}
	return nil
}

// Delete DELETE /api/businesses/{id}
func (c *Client) Delete(ctx context.Context, id business.ID) error {
	if _, err := c.do(ctx, http.MethodDelete, itemPath(id), nil); err != nil {
		return fmt.Errorf("delete business %d: %w", id, err)
	}
	return nil
}

// Ping checks that the API answers the list endpoint with a success status.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, collectionPath, nil)
	return err
}

func itemPath(id business.ID) string {
	return collectionPath + "/" + strconv.FormatInt(int64(id), 10)
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, business.ErrNetwork)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %v: %w", err, business.ErrNetwork)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("remote call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &business.StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return body, nil
}
