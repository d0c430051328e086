package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
)

// Result limit bounds for image queries
const (
	MinResultLimit     = 1
	MaxResultLimit     = 5
	DefaultResultLimit = 5
)

// TextQuery is the input of a text question
type TextQuery struct {
	Identity  string `json:"phone_number"`
	Text      string `json:"query"`
	SessionID string `json:"chat_id"`
	Language  string `json:"language"`
}

// ImageQuery is the input of an image question
type ImageQuery struct {
	Attachment  Attachment
	Identity    string
	Text        string
	ResultLimit int
	SessionID   string
	Language    string
}

// Result is the backend's answer
type Result struct {
	Kind    history.Kind `json:"type"`
	Content string       `json:"content"`
}

// UnmarshalJSON accepts a content field that is not a string. Structured
// answers sometimes arrive as an object; its JSON text is kept as is.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind    history.Kind    `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Kind = raw.Kind
	r.Content = ""
	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw.Content, &r.Content); err != nil {
		r.Content = string(raw.Content)
	}
	return nil
}

// ClientOptions contains options for creating a gateway client
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	TextPath   string
	ImagePath  string
	Headers    map[string]string
	HTTPClient *http.Client
}

// Option is a functional option for configuring clients
type Option func(*ClientOptions)

// WithBaseURL sets the base URL
func WithBaseURL(url string) Option {
	return func(o *ClientOptions) {
		o.BaseURL = url
	}
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *ClientOptions) {
		o.Timeout = timeout
	}
}

// WithPaths overrides the text and image query routes. Empty values keep
// the defaults.
func WithPaths(textPath, imagePath string) Option {
	return func(o *ClientOptions) {
		if textPath != "" {
			o.TextPath = textPath
		}
		if imagePath != "" {
			o.ImagePath = imagePath
		}
	}
}

// WithHeaders sets additional headers
func WithHeaders(headers map[string]string) Option {
	return func(o *ClientOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *ClientOptions) {
		o.HTTPClient = c
	}
}

// ClampResultLimit bounds n to [MinResultLimit, MaxResultLimit]
func ClampResultLimit(n int) int {
	if n < MinResultLimit {
		return MinResultLimit
	}
	if n > MaxResultLimit {
		return MaxResultLimit
	}
	return n
}
