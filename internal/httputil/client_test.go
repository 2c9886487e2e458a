package httputil

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNewRequestRejectsPlainHTTP(t *testing.T) {
	_, err := NewRequest(context.Background(), http.MethodGet, "http://example.com", nil)
	if err == nil {
		t.Fatal("NewRequest() should reject non-HTTPS URLs")
	}
}

func TestNewRequestDefaults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := NewRequest(ctx, http.MethodPost, "https://example.com/x", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	if req.Context() != ctx {
		t.Error("request is not bound to the caller context")
	}
	if req.Header.Get("User-Agent") != BrowserUserAgent {
		t.Errorf("User-Agent = %q", req.Header.Get("User-Agent"))
	}
}

func TestReadBodyLimit(t *testing.T) {
	exact := strings.NewReader(strings.Repeat("x", MaxBodySize))
	body, err := ReadBody(exact)
	if err != nil {
		t.Fatalf("ReadBody() error: %v", err)
	}
	if len(body) != MaxBodySize {
		t.Errorf("len(body) = %d, want %d", len(body), MaxBodySize)
	}

	big := strings.NewReader(strings.Repeat("x", MaxBodySize+100))
	body, err = ReadBody(big)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("ReadBody() error = %v, want ErrBodyTooLarge", err)
	}
	if body != nil {
		t.Errorf("ReadBody() returned %d bytes of a truncated body", len(body))
	}
}
