package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientEmbed(t *testing.T) {
	var gotPath string
	var gotBody embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embedding":  []float32{0.1, 0.2, 0.3},
			"norm":       0.374,
			"dimensions": 3,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	emb, err := c.Embed(context.Background(), "Honesty beats comfort", "value")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if gotPath != "/embed" {
		t.Errorf("expected POST to /embed, got %q", gotPath)
	}
	if gotBody.Text != "Honesty beats comfort" || gotBody.BeliefType != "value" {
		t.Errorf("request body wrong: %+v", gotBody)
	}
	if len(emb.Vector) != 3 {
		t.Errorf("expected 3-dimensional vector, got %d", len(emb.Vector))
	}
	if emb.Norm != 0.374 {
		t.Errorf("expected norm 0.374, got %v", emb.Norm)
	}
	if emb.Dimensions != 3 {
		t.Errorf("expected dimensions 3, got %d", emb.Dimensions)
	}
}

func TestClientEmbed_DefaultsDimensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float32{1, 0, 0, 0},
			"norm":      1.0,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	emb, err := c.Embed(context.Background(), "some text", "value")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if emb.Dimensions != 4 {
		t.Errorf("expected dimensions defaulted to 4, got %d", emb.Dimensions)
	}
}

func TestClientEmbed_EmptyText(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	if _, err := c.Embed(context.Background(), "", "value"); err != ErrEmptyText {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if called {
		t.Error("empty text must not reach the provider")
	}
}

func TestClientEmbed_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	_, err := c.Embed(context.Background(), "some text", "value")
	if !errors.Is(err, ErrProviderError) {
		t.Errorf("expected ErrProviderError, got %v", err)
	}
}

func TestClientEmbed_EmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{}, "norm": 0})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	if _, err := c.Embed(context.Background(), "some text", "value"); err != ErrEmptyVector {
		t.Errorf("expected ErrEmptyVector, got %v", err)
	}
}

func TestClientEmbed_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)
	if _, err := c.Embed(context.Background(), "some text", "value"); err == nil {
		t.Error("expected error for unreachable provider")
	}
}
