package vcs

import (
	"context"
	"net/http"

	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/log"
	"github.com/licomply/toolkit/pkg/metrics"
)

// GitHubProvider fetches repository metadata from GitHub.
type GitHubProvider struct {
	base
	client *github.Client
}

// GitHubOption configures a GitHubProvider.
type GitHubOption func(*githubOptions)

type githubOptions struct {
	logger    log.Logger
	collector metrics.Collector
}

// WithGitHubLogger sets the provider's logger.
func WithGitHubLogger(logger log.Logger) GitHubOption {
	return func(o *githubOptions) { o.logger = logger }
}

// WithGitHubCollector sets the metrics collector counting API requests.
func WithGitHubCollector(collector metrics.Collector) GitHubOption {
	return func(o *githubOptions) { o.collector = collector }
}

// NewGitHubProvider creates a GitHub metadata provider. Requests are
// anonymous when cfg.Token is empty, which GitHub rate-limits aggressively.
func NewGitHubProvider(cfg *Config, opts ...GitHubOption) (*GitHubProvider, error) {
	const op = "vcs.NewGitHubProvider"

	if cfg == nil {
		cfg = DefaultConfig()
	}
	var o githubOptions
	for _, opt := range opts {
		opt(&o)
	}

	var httpClient *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	client := github.NewClient(httpClient)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, errors.E(op, errors.KindInvalidInput, "invalid base URL", err)
		}
	}

	return &GitHubProvider{
		base:   newBase("github", cfg, o.logger, o.collector),
		client: client,
	}, nil
}

// Name returns "github".
func (p *GitHubProvider) Name() string {
	return "github"
}

// RepositoryInfo fetches metadata for owner/repo.
func (p *GitHubProvider) RepositoryInfo(ctx context.Context, owner, repo string) (*RepositoryInfo, error) {
	const op = "vcs.GitHubProvider.RepositoryInfo"

	if err := p.wait(ctx); err != nil {
		return nil, errors.E(op, errors.KindTimeout, "rate limit wait", err)
	}

	repository, resp, err := p.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			p.count("miss")
			return nil, errors.E(op, errors.KindNotFound, owner+"/"+repo)
		}
		p.count("error")
		return nil, errors.E(op, errors.KindNetwork, "fetch repository", err)
	}
	p.count("ok")

	info := &RepositoryInfo{
		Name:            repository.GetFullName(),
		Description:     repository.GetDescription(),
		Homepage:        repository.GetHomepage(),
		DefaultBranch:   repository.GetDefaultBranch(),
		DeclaredLicense: repository.GetLicense().GetSPDXID(),
	}
	// GitHub reports NOASSERTION for licenses it cannot classify.
	if info.DeclaredLicense == "NOASSERTION" {
		info.DeclaredLicense = ""
	}
	p.logger.Debug("github %s: license %q", info.Name, info.DeclaredLicense)
	return info, nil
}

var _ Provider = (*GitHubProvider)(nil)
