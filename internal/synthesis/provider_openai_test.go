package synthesis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProviderSynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["input"] != "hello" || req["voice"] != "alloy" {
			t.Fatalf("unexpected request %v", req)
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	provider := NewOpenAIProvider(OpenAIConfig{APIKey: "key", BaseURL: server.URL})
	got, err := provider.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(got) != "mp3-bytes" {
		t.Fatalf("unexpected audio %q", got)
	}
	if !strings.HasPrefix(provider.Name(), "openai/") {
		t.Fatalf("name %q should identify the service", provider.Name())
	}
}

func TestOpenAIProviderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(OpenAIConfig{APIKey: "key", BaseURL: server.URL})
	if _, err := provider.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	provider := NewOpenAIProvider(OpenAIConfig{})
	if _, err := provider.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatal("missing key must error")
	}
}
