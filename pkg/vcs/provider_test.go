package vcs

import (
	"context"
	"testing"
	"time"
)

func TestNewBase_RateLimiter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestsPerHour = 3600
	b := newBase("test", cfg, nil, nil)
	if b.limiter == nil {
		t.Fatalf("limiter not configured")
	}

	// The burst should admit immediate requests without blocking.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 5; i++ {
		if err := b.wait(ctx); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}
}

func TestNewBase_NoLimiter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestsPerHour = 0
	b := newBase("test", cfg, nil, nil)
	if b.limiter != nil {
		t.Fatalf("limiter configured despite zero rate")
	}
	if err := b.wait(context.Background()); err != nil {
		t.Errorf("wait without limiter failed: %v", err)
	}
}

func TestNewProviders(t *testing.T) {
	github, err := NewGitHubProvider(nil)
	if err != nil {
		t.Fatalf("NewGitHubProvider failed: %v", err)
	}
	if github.Name() != "github" {
		t.Errorf("name = %q", github.Name())
	}

	gitlab, err := NewGitLabProvider(nil)
	if err != nil {
		t.Fatalf("NewGitLabProvider failed: %v", err)
	}
	if gitlab.Name() != "gitlab" {
		t.Errorf("name = %q", gitlab.Name())
	}
}

func TestNormalizeGitLabKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"mit", "MIT"},
		{"apache-2.0", "Apache-2.0"},
		{"gpl-3.0", "GPL-3.0-only"},
		{"bsd-3-clause", "BSD-3-Clause"},
		{"something-custom", "something-custom"},
	}
	for _, tt := range tests {
		if got := normalizeGitLabKey(tt.key); got != tt.want {
			t.Errorf("normalizeGitLabKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
