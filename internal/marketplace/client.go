package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is the typed boundary to the remote marketplace API. It owns no
// state beyond the base locations; the bearer token is passed per call so the
// same client serves every browser session.
type Client struct {
	base string
	hc   *http.Client
}

func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// endpoint joins a resource path onto the API base. Paths are given the way
// the backend routes them, e.g. "trading/orders/".
func (c *Client) endpoint(path string, query url.Values) string {
	s := c.base + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		s += "?" + query.Encode()
	}
	return s
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values, out any) error {
	return c.do(ctx, token, http.MethodGet, c.endpoint(path, query), nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, token, path string, body, out any) error {
	return c.sendJSON(ctx, token, http.MethodPost, path, body, out)
}

func (c *Client) patchJSON(ctx context.Context, token, path string, body, out any) error {
	return c.sendJSON(ctx, token, http.MethodPatch, path, body, out)
}

func (c *Client) sendJSON(ctx context.Context, token, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	return c.do(ctx, token, method, c.endpoint(path, nil), rd, "application/json", out)
}

func (c *Client) delete(ctx context.Context, token, path string) error {
	return c.do(ctx, token, http.MethodDelete, c.endpoint(path, nil), nil, "", nil)
}

// getPageURL fetches an opaque next/previous page reference exactly as the
// backend returned it.
func (c *Client) getPageURL(ctx context.Context, token, pageURL string, out any) error {
	return c.do(ctx, token, http.MethodGet, pageURL, nil, "", out)
}

// Upload is a file part for a multipart request.
type Upload struct {
	Field   string
	Name    string
	Content io.Reader
}

func (c *Client) doMultipart(ctx context.Context, token, method, path string, fields map[string]string, file *Upload, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(fw, file.Content); err != nil {
			return fmt.Errorf("copy upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	return c.do(ctx, token, method, c.endpoint(path, nil), &buf, mw.FormDataContentType(), out)
}

// do performs one request/response cycle and converts every failure into the
// error taxonomy. A missing token means an anonymous request.
func (c *Client) do(ctx context.Context, token, method, fullURL string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}

	switch {
	case resp.StatusCode >= 500:
		return &Error{Kind: KindBackend, Status: resp.StatusCode, Message: backendMessage(raw)}
	case resp.StatusCode >= 400:
		return &Error{Kind: KindRejected, Status: resp.StatusCode, Message: backendMessage(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Kind: KindBackend, Status: resp.StatusCode, Message: "unreadable response: " + err.Error()}
		}
	}
	return nil
}

// backendMessage digs the human-readable error text out of the backend's
// usual shapes: {"error": ...}, {"detail": ...} or a field->messages map.
func backendMessage(raw []byte) string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		if s := strings.TrimSpace(string(raw)); s != "" && len(s) < 200 {
			return s
		}
		return ""
	}
	for _, key := range []string{"error", "detail", "message"} {
		if v, ok := m[key].(string); ok {
			return v
		}
	}
	// DRF validation errors: {"quantity": ["..."], ...}
	for field, v := range m {
		if list, ok := v.([]any); ok && len(list) > 0 {
			if s, ok := list[0].(string); ok {
				return field + ": " + s
			}
		}
	}
	return ""
}
