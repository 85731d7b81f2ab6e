package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeTranslatesAndLowercases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req["source"] != "auto" {
			t.Errorf("source = %q, want auto", req["source"])
		}
		if req["target"] != "en" {
			t.Errorf("target = %q, want en", req["target"])
		}
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "Big POTHOLE on the road"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 5*time.Second)
	result := client.Normalize(context.Background(), "rasta par bada khadda")

	if result.Degraded {
		t.Errorf("result degraded with reason %q, want translated", result.Reason)
	}
	if result.Text != "big pothole on the road" {
		t.Errorf("text = %q, want %q", result.Text, "big pothole on the road")
	}
}

func TestNormalizeDegradesOnServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 5*time.Second)
	result := client.Normalize(context.Background(), "Bada KHADDA hai")

	if !result.Degraded {
		t.Error("expected degraded result on service error")
	}
	if result.Reason != "request_failed" {
		t.Errorf("reason = %q, want request_failed", result.Reason)
	}
	if result.Text != "bada khadda hai" {
		t.Errorf("text = %q, want lower-cased original", result.Text)
	}
}

func TestNormalizeDegradesOnUnreachableService(t *testing.T) {
	// Port 0 is never connectable.
	client := NewClient("http://127.0.0.1:0", "en", time.Second)
	result := client.Normalize(context.Background(), "Gutter overflow")

	if !result.Degraded {
		t.Error("expected degraded result when service is unreachable")
	}
	if result.Text != "gutter overflow" {
		t.Errorf("text = %q, want lower-cased original", result.Text)
	}
}

func TestNormalizeDegradesWhenNotConfigured(t *testing.T) {
	client := NewClient("", "en", time.Second)
	result := client.Normalize(context.Background(), "URGENT Pothole")

	if !result.Degraded {
		t.Error("expected degraded result when no URL is configured")
	}
	if result.Reason != "not_configured" {
		t.Errorf("reason = %q, want not_configured", result.Reason)
	}
	if result.Text != "urgent pothole" {
		t.Errorf("text = %q, want lower-cased original", result.Text)
	}
}

func TestNormalizeDegradesOnEmptyTranslation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"translatedText": ""})
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 5*time.Second)
	result := client.Normalize(context.Background(), "Khadda")

	if !result.Degraded {
		t.Error("expected degraded result on empty translation")
	}
	if result.Reason != "empty_response" {
		t.Errorf("reason = %q, want empty_response", result.Reason)
	}
}
