package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// Client is a thin authenticated wrapper over the Graph REST surface.
type Client struct {
	http    *http.Client
	baseURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Graph endpoint (tests).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a Graph client using the token source for authentication.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		http:    oauth2.NewClient(ctx, ts),
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the Graph error envelope.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do performs one request and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &models.UpstreamError{Service: "graph", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		if json.NewDecoder(resp.Body).Decode(&ae) == nil && ae.Error.Code != "" {
			return &models.UpstreamError{Service: "graph", Err: fmt.Errorf("%s %s: %s (%s)", method, path, ae.Error.Message, ae.Error.Code)}
		}
		return &models.UpstreamError{Service: "graph", Err: fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.UpstreamError{Service: "graph", Err: fmt.Errorf("decoding %s %s: %w", method, path, err)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) patchJSON(ctx context.Context, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, bytes.NewReader(data), "application/json", out)
}

// ErrNotFound reports a missing drive item.
var ErrNotFound = fmt.Errorf("graph: item not found")

// driveItem is the subset of the item resource this service reads.
type driveItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemByPath resolves a drive item by its path relative to the drive root.
func (c *Client) ItemByPath(ctx context.Context, path string) (string, error) {
	var item driveItem
	if err := c.getJSON(ctx, "/me/drive/root:/"+escapePath(path), &item); err != nil {
		return "", err
	}
	return item.ID, nil
}

// UploadFile creates or replaces a drive item at path with the given content.
func (c *Client) UploadFile(ctx context.Context, path string, content []byte) (string, error) {
	var item driveItem
	err := c.do(ctx, http.MethodPut, "/me/drive/root:/"+escapePath(path)+":/content",
		bytes.NewReader(content), "application/octet-stream", &item)
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

// DownloadFile fetches the raw content of a drive item by path.
func (c *Client) DownloadFile(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/me/drive/root:/"+escapePath(path)+":/content", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &models.UpstreamError{Service: "graph", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &models.UpstreamError{Service: "graph", Err: fmt.Errorf("download %s: status %d", path, resp.StatusCode)}
	}
	return io.ReadAll(resp.Body)
}

// escapePath encodes each path segment while keeping the separators.
func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}
