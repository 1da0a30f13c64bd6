// Package vcs looks up package metadata on repository hosts. Providers
// feed curation workflows: the license a host declares for a repository is
// evidence for a concluded-license override, never applied automatically.
package vcs

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/licomply/toolkit/pkg/log"
	"github.com/licomply/toolkit/pkg/metrics"
)

// RepositoryInfo is the host-side metadata of one repository.
type RepositoryInfo struct {
	// Name in owner/repo form
	Name string `json:"name"`

	// Description as shown on the host
	Description string `json:"description,omitempty"`

	// Homepage configured on the host
	Homepage string `json:"homepage,omitempty"`

	// DefaultBranch of the repository
	DefaultBranch string `json:"default_branch,omitempty"`

	// DeclaredLicense is the license identifier the host detected,
	// empty when the host reports none
	DeclaredLicense string `json:"declared_license,omitempty"`
}

// Provider fetches repository metadata from one host.
type Provider interface {
	// Name returns the provider name ("github", "gitlab").
	Name() string

	// RepositoryInfo fetches metadata for owner/repo.
	RepositoryInfo(ctx context.Context, owner, repo string) (*RepositoryInfo, error)
}

// Config holds the common provider configuration.
type Config struct {
	// Token authenticates API requests; anonymous when empty
	Token string

	// BaseURL overrides the host API endpoint (self-hosted installs)
	BaseURL string

	// RequestsPerHour caps outgoing API requests; 0 disables limiting
	RequestsPerHour int

	// Timeout for individual requests
	Timeout time.Duration
}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() *Config {
	return &Config{
		RequestsPerHour: 3600,
		Timeout:         30 * time.Second,
	}
}

// base carries the cross-provider plumbing: request pacing, logging and
// request counting.
type base struct {
	name      string
	limiter   *rate.Limiter
	logger    log.Logger
	collector metrics.Collector
}

func newBase(name string, cfg *Config, logger log.Logger, collector metrics.Collector) base {
	b := base{name: name, logger: logger, collector: collector}
	if b.logger == nil {
		b.logger = log.NopLogger{}
	}
	if cfg.RequestsPerHour > 0 {
		rps := float64(cfg.RequestsPerHour) / 3600.0
		b.limiter = rate.NewLimiter(rate.Limit(rps), 10)
	}
	return b
}

// wait blocks until the rate limit admits the next request.
func (b *base) wait(ctx context.Context) error {
	if b.limiter == nil {
		return nil
	}
	return b.limiter.Wait(ctx)
}

func (b *base) count(status string) {
	if b.collector != nil {
		b.collector.CounterInc(metrics.VCSRequestsTotal.Name,
			"provider", b.name, "status", status)
	}
}
