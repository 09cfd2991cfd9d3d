// Package client is the HTTP client for the store API consumed by the
// dashboard. Every call is attempted exactly once; failures are returned as
// *models.RemoteError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"tokodash/internal/models"

	"go.uber.org/zap"
)

// ItemService is the remote item API as seen by the dashboard core.
type ItemService interface {
	ListItems(ctx context.Context, token string) ([]models.Item, error)
	CreateItem(ctx context.Context, token string, fields models.ItemFields) (models.Item, error)
	UpdateItem(ctx context.Context, token string, id int64, fields models.ItemFields) (models.Item, error)
	DeleteItem(ctx context.Context, token string, id int64) error
	UploadImage(ctx context.Context, token string, file models.ImageFile) (models.UploadResult, error)
}

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Config holds the client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the store API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

var _ ItemService = (*Client)(nil)

// New creates a new Client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

type listItemsResponse struct {
	Success bool          `json:"success"`
	Items   []models.Item `json:"items"`
}

// ListItems fetches every item of the authenticated merchant's store.
func (c *Client) ListItems(ctx context.Context, token string) ([]models.Item, error) {
	var resp listItemsResponse
	status, err := c.doJSON(ctx, http.MethodGet, "/api/stores/items", token, nil, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &models.RemoteError{StatusCode: status, Message: "item list request was not successful"}
	}
	if resp.Items == nil {
		resp.Items = []models.Item{}
	}
	return resp.Items, nil
}

// CreateItem creates an item; the server assigns its identifier.
func (c *Client) CreateItem(ctx context.Context, token string, fields models.ItemFields) (models.Item, error) {
	var item models.Item
	_, err := c.doJSON(ctx, http.MethodPost, "/api/stores/items", token, fields, &item)
	return item, err
}

// UpdateItem replaces the mutable fields of item id.
func (c *Client) UpdateItem(ctx context.Context, token string, id int64, fields models.ItemFields) (models.Item, error) {
	var item models.Item
	_, err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/stores/items/%d", id), token, fields, &item)
	return item, err
}

// DeleteItem deletes item id.
func (c *Client) DeleteItem(ctx context.Context, token string, id int64) error {
	_, err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/stores/items/%d", id), token, nil, nil)
	return err
}

// UploadImage sends file as the multipart "file" field and returns the URL
// the server stored it under.
func (c *Client) UploadImage(ctx context.Context, token string, file models.ImageFile) (models.UploadResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return models.UploadResult{}, &models.RemoteError{Err: fmt.Errorf("building upload: %w", err)}
	}
	if _, err := part.Write(file.Data); err != nil {
		return models.UploadResult{}, &models.RemoteError{Err: fmt.Errorf("building upload: %w", err)}
	}
	if err := w.Close(); err != nil {
		return models.UploadResult{}, &models.RemoteError{Err: fmt.Errorf("building upload: %w", err)}
	}

	var result models.UploadResult
	if _, err := c.do(ctx, http.MethodPost, "/api/files/upload", token, &body, w.FormDataContentType(), &result); err != nil {
		return models.UploadResult{}, err
	}
	if result.URL == "" {
		return models.UploadResult{}, &models.RemoteError{StatusCode: http.StatusOK, Message: "upload response carried no url"}
	}
	return result, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	req := map[string]string{"username": username, "password": password}
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &models.RemoteError{StatusCode: http.StatusOK, Message: "login response carried no token"}
	}
	return resp.Token, nil
}

// ListOrders fetches the orders placed against the merchant's store.
func (c *Client) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	var resp struct {
		Success bool           `json:"success"`
		Orders  []models.Order `json:"orders"`
	}
	status, err := c.doJSON(ctx, http.MethodGet, "/api/stores/orders", token, nil, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &models.RemoteError{StatusCode: status, Message: "order list request was not successful"}
	}
	return resp.Orders, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) (int, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, &models.RemoteError{Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, token, body, contentType, out)
}

// do performs one request. Non-2xx answers become a RemoteError carrying the
// server's "message" field when the body has one.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, &models.RemoteError{Err: fmt.Errorf("building request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, &models.RemoteError{Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &models.RemoteError{
			StatusCode: resp.StatusCode,
			Message:    readMessage(resp.Body),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return resp.StatusCode, &models.RemoteError{StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return resp.StatusCode, nil
}

func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Message
}
