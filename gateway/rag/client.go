// Package rag talks to the AgriGPT retrieval backend over HTTP.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
	"github.com/alumnx-ai-labs/agrigpt-frontend/internal/logging"
)

const (
	defaultBaseURL   = "http://localhost:8000"
	defaultTimeout   = 120 * time.Second
	defaultTextPath  = "/query"
	defaultImagePath = "/query-image"
)

// Client implements gateway.Client against the backend's HTTP API
type Client struct {
	options    gateway.ClientOptions
	httpClient *http.Client
}

var _ gateway.Client = (*Client)(nil)

// NewClient creates a new backend client
func NewClient(opts ...gateway.Option) (*Client, error) {
	options := gateway.ClientOptions{
		BaseURL:   defaultBaseURL,
		Timeout:   defaultTimeout,
		TextPath:  defaultTextPath,
		ImagePath: defaultImagePath,
		Headers:   make(map[string]string),
	}

	for _, opt := range opts {
		opt(&options)
	}

	options.BaseURL = strings.TrimRight(options.BaseURL, "/")
	if options.BaseURL == "" {
		return nil, fmt.Errorf("backend URL not provided")
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: options.Timeout,
		}
	}

	return &Client{
		options:    options,
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the configured backend URL
func (c *Client) BaseURL() string {
	return c.options.BaseURL
}

// SubmitTextQuery posts a text question as JSON
func (c *Client) SubmitTextQuery(ctx context.Context, q gateway.TextQuery) (*gateway.Result, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, gateway.Validation(fmt.Sprintf("failed to marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+c.options.TextPath, bytes.NewReader(body))
	if err != nil {
		return nil, gateway.Validation(fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doQuery(req, "text")
}

// SubmitImageQuery posts an image and question as multipart form data
func (c *Client) SubmitImageQuery(ctx context.Context, q gateway.ImageQuery) (*gateway.Result, error) {
	if len(q.Attachment.Data) == 0 {
		return nil, gateway.Validation("Image is required")
	}

	fields := map[string]string{
		"phone_number": q.Identity,
		"query":        q.Text,
		"top_k":        strconv.Itoa(gateway.ClampResultLimit(q.ResultLimit)),
		"chat_id":      q.SessionID,
		"language":     q.Language,
	}

	body, contentType, err := buildMultipart(q.Attachment, fields)
	if err != nil {
		return nil, gateway.Validation(fmt.Sprintf("failed to encode image: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+c.options.ImagePath, body)
	if err != nil {
		return nil, gateway.Validation(fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", contentType)

	return c.doQuery(req, "image")
}

func (c *Client) doQuery(req *http.Request, op string) (*gateway.Result, error) {
	log := logging.For("gateway").With("op", op, "url", req.URL.String())
	start := time.Now()

	respBody, err := c.do(req)
	if err != nil {
		log.Warn("query failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	var result gateway.Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		log.Warn("query returned an unreadable body", "error", err)
		return nil, gateway.Server(fmt.Sprintf("failed to parse response: %v", err))
	}
	if result.Kind == "" {
		result.Kind = history.KindText
	}

	log.Debug("query answered", "kind", result.Kind, "elapsed", time.Since(start))
	return &result, nil
}

// do executes req once and returns the body of a 2xx response. Anything
// else comes back as a classified gateway error.
func (c *Client) do(req *http.Request) ([]byte, error) {
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, gateway.Network(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, gateway.Network(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, gateway.Server(errorDetail(resp.StatusCode, respBody))
	}
	return respBody, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	for k, v := range c.options.Headers {
		req.Header.Set(k, v)
	}
}

// errorDetail extracts the server's message from an error body. The
// backend answers with {"detail": "..."} or, for rejected input, with a
// list of {"msg": "..."} entries.
func errorDetail(status int, body []byte) string {
	var errResp struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		var s string
		if err := json.Unmarshal(errResp.Detail, &s); err == nil && s != "" {
			return s
		}

		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(errResp.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}

		if errResp.Message != "" {
			return errResp.Message
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}

func buildMultipart(att gateway.Attachment, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := att.Name
	if name == "" {
		name = "upload"
	}
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(att.Data); err != nil {
		return nil, "", err
	}

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
