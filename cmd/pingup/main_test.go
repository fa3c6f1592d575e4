package main

import (
	"testing"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/config"
)

func TestBuildNotifier(t *testing.T) {
	cfg := config.DefaultConfig()
	if n := buildNotifier(cfg); n.Len() != 0 {
		t.Fatalf("expected no backends for default config, got %d", n.Len())
	}

	cfg.EmailHost = "mail.example"
	cfg.EmailFrom = "pingup@example"
	if n := buildNotifier(cfg); n.Len() != 1 {
		t.Fatalf("expected email backend, got %d", n.Len())
	}

	cfg.WebhookURL = "https://hooks.example/x"
	if n := buildNotifier(cfg); n.Len() != 2 {
		t.Fatalf("expected email and webhook backends, got %d", n.Len())
	}

	// incomplete email config is skipped
	cfg2 := config.DefaultConfig()
	cfg2.EmailHost = "mail.example"
	if n := buildNotifier(cfg2); n.Len() != 0 {
		t.Fatalf("expected no backends without a sender address, got %d", n.Len())
	}
}
