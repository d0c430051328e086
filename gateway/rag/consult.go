package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
	"github.com/alumnx-ai-labs/agrigpt-frontend/internal/logging"
)

// Turn is one earlier exchange sent as chat_history
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnsFrom converts a stored message log into chat history. Messages
// without content are skipped.
func TurnsFrom(msgs []history.Message) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		turns = append(turns, Turn{Role: string(m.Role), Content: m.Content})
	}
	return turns
}

func (c Category) consultPath() string {
	if c == CategorySchemes {
		return "/query-government-schemes"
	}
	return "/ask-consultant"
}

// Consult asks the subject matter consultant of category, optionally with
// the earlier turns of the conversation.
func (c *Client) Consult(ctx context.Context, category Category, query string, turns []Turn) (map[string]any, error) {
	if strings.TrimSpace(query) == "" {
		return nil, gateway.Validation("Query is required")
	}
	if turns == nil {
		turns = []Turn{}
	}

	payload := struct {
		Query       string `json:"query"`
		ChatHistory []Turn `json:"chat_history"`
	}{Query: query, ChatHistory: turns}

	resp, err := c.postJSON(ctx, category.consultPath(), payload)
	if err != nil {
		return nil, err
	}
	logging.For("gateway").Debug("consultant answered", "category", category, "history", len(turns))
	return resp, nil
}

// SearchImagesByText finds reference images matching a description
func (c *Client) SearchImagesByText(ctx context.Context, query string, topK int) (map[string]any, error) {
	if strings.TrimSpace(query) == "" {
		return nil, gateway.Validation("Query is required")
	}

	payload := struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}{Query: query, TopK: gateway.ClampResultLimit(topK)}

	return c.postJSON(ctx, "/hybrid-image-query", payload)
}

// SearchImagesByImage finds reference images similar to img
func (c *Client) SearchImagesByImage(ctx context.Context, img gateway.Attachment, topK int) (map[string]any, error) {
	if len(img.Data) == 0 {
		return nil, gateway.Validation("Image is required")
	}
	path := "/query-by-image?top_k=" + strconv.Itoa(gateway.ClampResultLimit(topK))
	return c.postMultipart(ctx, path, img, nil)
}

// AskWithImage asks a free-form question about img
func (c *Client) AskWithImage(ctx context.Context, img gateway.Attachment, query string) (map[string]any, error) {
	if len(img.Data) == 0 {
		return nil, gateway.Validation("Image is required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, gateway.Validation("Query is required")
	}
	return c.postMultipart(ctx, "/ask-with-image", img, map[string]string{"query": query})
}

// AnswerText picks the answer out of a consultant response. The backend
// has used response, answer and message for it.
func AnswerText(resp map[string]any) string {
	for _, key := range []string{"response", "answer", "message"} {
		if s, ok := resp[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, gateway.Validation(fmt.Sprintf("failed to marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeObject(respBody)
}

func (c *Client) postMultipart(ctx context.Context, path string, att gateway.Attachment, fields map[string]string) (map[string]any, error) {
	body, contentType, err := buildMultipart(att, fields)
	if err != nil {
		return nil, gateway.Validation(fmt.Sprintf("failed to encode image: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeObject(respBody)
}
