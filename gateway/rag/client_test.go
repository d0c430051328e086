package rag

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...gateway.Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]gateway.Option{
		gateway.WithBaseURL(srv.URL + "/"),
		gateway.WithHTTPClient(srv.Client()),
	}, opts...)
	c, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestSubmitTextQuery_SendsJSONAndDecodesResult(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/query" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"type":"structured","content":"## Frost\nCover the trees."}`)
	})

	res, err := c.SubmitTextQuery(context.Background(), gateway.TextQuery{
		Identity:  "9876543210",
		Text:      "Will my citrus crop survive frost?",
		SessionID: "chat-1",
		Language:  "hi",
	})
	if err != nil {
		t.Fatalf("SubmitTextQuery: %v", err)
	}

	want := map[string]string{
		"phone_number": "9876543210",
		"query":        "Will my citrus crop survive frost?",
		"chat_id":      "chat-1",
		"language":     "hi",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("body[%q] = %q, want %q", k, got[k], v)
		}
	}
	if res.Kind != history.KindStructured {
		t.Fatalf("kind = %q, want structured", res.Kind)
	}
	if !strings.HasPrefix(res.Content, "## Frost") {
		t.Fatalf("content = %q", res.Content)
	}
}

func TestConfiguredHeadersAreSent(t *testing.T) {
	var apiKey, accept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-Api-Key")
		accept = r.Header.Get("Accept")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}, gateway.WithHeaders(map[string]string{"x-api-key": "secret-key"}))

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if apiKey != "secret-key" {
		t.Fatalf("api key header = %q", apiKey)
	}
	if accept != "application/json" {
		t.Fatalf("accept header = %q", accept)
	}
}

func TestSubmitTextQuery_MissingTypeMeansText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"content":"Water twice a week."}`)
	})

	res, err := c.SubmitTextQuery(context.Background(), gateway.TextQuery{Identity: "1", Text: "q"})
	if err != nil {
		t.Fatalf("SubmitTextQuery: %v", err)
	}
	if res.Kind != history.KindText || res.Content != "Water twice a week." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSubmitTextQuery_ObjectContentKeptAsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"type":"structured","content":{"summary":"ok"}}`)
	})

	res, err := c.SubmitTextQuery(context.Background(), gateway.TextQuery{Identity: "1", Text: "q"})
	if err != nil {
		t.Fatalf("SubmitTextQuery: %v", err)
	}
	if res.Content != `{"summary":"ok"}` {
		t.Fatalf("content = %q", res.Content)
	}
}

func TestSubmitTextQuery_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantClass  gateway.Class
		wantDetail string
	}{
		{
			name:       "string detail",
			status:     http.StatusTooManyRequests,
			body:       `{"detail":"rate limited"}`,
			wantClass:  gateway.ClassServer,
			wantDetail: "rate limited",
		},
		{
			name:       "list detail",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":[{"loc":["body","query"],"msg":"field required"},{"msg":"bad chat id"}]}`,
			wantClass:  gateway.ClassServer,
			wantDetail: "field required; bad chat id",
		},
		{
			name:       "no detail",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantClass:  gateway.ClassServer,
			wantDetail: "request failed with status 502",
		},
		{
			name:       "undecodable success body",
			status:     http.StatusOK,
			body:       `not json`,
			wantClass:  gateway.ClassServer,
			wantDetail: "failed to parse response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.SubmitTextQuery(context.Background(), gateway.TextQuery{Identity: "1", Text: "q"})
			if err == nil {
				t.Fatalf("expected error")
			}
			ge := gateway.Classify(err)
			if ge.Class != tt.wantClass {
				t.Fatalf("class = %q, want %q", ge.Class, tt.wantClass)
			}
			if !strings.HasPrefix(err.Error(), tt.wantDetail) {
				t.Fatalf("error = %q, want prefix %q", err.Error(), tt.wantDetail)
			}
		})
	}
}

func TestSubmitTextQuery_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(gateway.WithBaseURL(url))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.SubmitTextQuery(context.Background(), gateway.TextQuery{Identity: "1", Text: "q"})
	if !gateway.IsClass(err, gateway.ClassNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestSubmitTextQuery_SingleAttempt(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, _ = c.SubmitTextQuery(context.Background(), gateway.TextQuery{Identity: "1", Text: "q"})
	if calls != 1 {
		t.Fatalf("expected exactly one request, got %d", calls)
	}
}

func TestSubmitImageQuery_SendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query-image" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		for k, v := range map[string]string{
			"phone_number": "9876543210",
			"query":        "what is this spot?",
			"top_k":        "5",
			"chat_id":      "chat-9",
			"language":     "te",
		} {
			if got := r.FormValue(k); got != v {
				t.Errorf("field %s = %q, want %q", k, got, v)
			}
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		if hdr.Filename != "leaf.png" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		if hdr.Header.Get("Content-Type") != "image/png" {
			t.Errorf("part content type = %q", hdr.Header.Get("Content-Type"))
		}
		_, _ = io.WriteString(w, `{"type":"text","content":"Citrus canker."}`)
	})

	res, err := c.SubmitImageQuery(context.Background(), gateway.ImageQuery{
		Attachment:  gateway.Attachment{Name: "leaf.png", ContentType: "image/png", Data: pngHeader},
		Identity:    "9876543210",
		Text:        "what is this spot?",
		ResultLimit: 9,
		SessionID:   "chat-9",
		Language:    "te",
	})
	if err != nil {
		t.Fatalf("SubmitImageQuery: %v", err)
	}
	if res.Content != "Citrus canker." {
		t.Fatalf("content = %q", res.Content)
	}
}

func TestSubmitImageQuery_RequiresData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})

	_, err := c.SubmitImageQuery(context.Background(), gateway.ImageQuery{Identity: "1", Text: "q"})
	if !gateway.IsClass(err, gateway.ClassValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/health" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"status":"healthy"}`)
	})

	out, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if out["status"] != "healthy" {
		t.Fatalf("unexpected health %v", out)
	}
}

func TestHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, _ := NewClient(gateway.WithBaseURL(url))
	_, err := c.Health(context.Background())
	if err == nil || err.Error() != "Backend is not responding" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestClearKnowledgeBase(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/clear-knowledge-base" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"message":"cleared"}`)
	})

	out, err := c.ClearKnowledgeBase(context.Background())
	if err != nil {
		t.Fatalf("ClearKnowledgeBase: %v", err)
	}
	if out["message"] != "cleared" {
		t.Fatalf("unexpected response %v", out)
	}
}

func TestIngest(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("FormFile: %v", err)
		}
		_, _ = io.WriteString(w, `{"chunks":12}`)
	})

	doc := gateway.Attachment{Name: "schemes.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4\n")}
	if _, err := c.Ingest(context.Background(), CategorySchemes, doc); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if gotPath != "/ingest/government-schemes" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestIngest_RejectsNonPDF(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})

	doc := gateway.Attachment{Name: "leaf.png", ContentType: "image/png", Data: pngHeader}
	_, err := c.Ingest(context.Background(), CategoryCitrus, doc)
	var ge *gateway.Error
	if !errors.As(err, &ge) || ge.Class != gateway.ClassValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"citrus":             CategoryCitrus,
		"Citrus Crop":        CategoryCitrus,
		"schemes":            CategorySchemes,
		"Government Schemes": CategorySchemes,
	} {
		got, err := ParseCategory(in)
		if err != nil || got != want {
			t.Fatalf("ParseCategory(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseCategory("mango"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
