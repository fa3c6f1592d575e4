package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload["to"] != "bob@example.com" || payload["subject"] != "S" || payload["body"] != "B" {
			t.Fatalf("unexpected payload: %v", payload)
		}
		if payload["agent"] != "pingup" {
			t.Fatalf("expected agent 'pingup', got %v", payload["agent"])
		}
		w.WriteHeader(200)
	}))
	defer server.Close()

	wh := &Webhook{URL: server.URL}
	if err := wh.Send(context.Background(), "bob@example.com", "S", "B"); err != nil {
		t.Fatalf("webhook send failed: %v", err)
	}
}

func TestWebhookSendRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	wh := &Webhook{URL: server.URL}
	if err := wh.Send(context.Background(), "bob@example.com", "S", "B"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
