package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/internal/logging"
)

// Category selects the knowledge base a document is ingested into
type Category string

const (
	CategoryCitrus  Category = "citrus"
	CategorySchemes Category = "schemes"
)

// ParseCategory accepts the short names and the display names of the
// admin panel.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "citrus", "citrus crop":
		return CategoryCitrus, nil
	case "schemes", "government schemes", "government-schemes":
		return CategorySchemes, nil
	default:
		return "", fmt.Errorf("unknown category %q (want citrus or schemes)", s)
	}
}

func (c Category) path() string {
	if c == CategorySchemes {
		return "/ingest/government-schemes"
	}
	return "/ingest/citrus"
}

// Label is the human readable name of the category
func (c Category) Label() string {
	if c == CategorySchemes {
		return "Government Schemes"
	}
	return "Citrus Crop"
}

// Health asks the backend whether it is up
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.options.BaseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		if gateway.IsClass(err, gateway.ClassNetwork) {
			return nil, gateway.Server("Backend is not responding")
		}
		return nil, err
	}
	return decodeObject(body)
}

// ClearKnowledgeBase wipes every ingested document on the backend
func (c *Client) ClearKnowledgeBase(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.options.BaseURL+"/clear-knowledge-base", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	logging.For("gateway").Info("knowledge base cleared")
	return decodeObject(body)
}

// Ingest uploads a PDF into the knowledge base of the given category
func (c *Client) Ingest(ctx context.Context, category Category, doc gateway.Attachment) (map[string]any, error) {
	if !doc.IsPDF() {
		return nil, gateway.Validation(fmt.Sprintf("%s is not a PDF (%s)", doc.Name, doc.ContentType))
	}

	body, contentType, err := buildMultipart(doc, nil)
	if err != nil {
		return nil, gateway.Validation(fmt.Sprintf("failed to encode document: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+category.path(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	logging.For("gateway").Info("document ingested", "category", category, "file", doc.Name, "bytes", len(doc.Data))
	return decodeObject(respBody)
}

func decodeObject(body []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, gateway.Server(fmt.Sprintf("failed to parse response: %v", err))
	}
	return out, nil
}
