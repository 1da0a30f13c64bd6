package vcs

import (
	"context"
	"net/http"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/log"
	"github.com/licomply/toolkit/pkg/metrics"
)

// GitLabProvider fetches repository metadata from GitLab.
type GitLabProvider struct {
	base
	client *gitlab.Client
}

// GitLabOption configures a GitLabProvider.
type GitLabOption func(*gitlabOptions)

type gitlabOptions struct {
	logger    log.Logger
	collector metrics.Collector
}

// WithGitLabLogger sets the provider's logger.
func WithGitLabLogger(logger log.Logger) GitLabOption {
	return func(o *gitlabOptions) { o.logger = logger }
}

// WithGitLabCollector sets the metrics collector counting API requests.
func WithGitLabCollector(collector metrics.Collector) GitLabOption {
	return func(o *gitlabOptions) { o.collector = collector }
}

// NewGitLabProvider creates a GitLab metadata provider.
func NewGitLabProvider(cfg *Config, opts ...GitLabOption) (*GitLabProvider, error) {
	const op = "vcs.NewGitLabProvider"

	if cfg == nil {
		cfg = DefaultConfig()
	}
	var o gitlabOptions
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []gitlab.ClientOptionFunc{}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(cfg.BaseURL))
	}
	client, err := gitlab.NewClient(cfg.Token, clientOpts...)
	if err != nil {
		return nil, errors.E(op, errors.KindInvalidInput, "create client", err)
	}

	return &GitLabProvider{
		base:   newBase("gitlab", cfg, o.logger, o.collector),
		client: client,
	}, nil
}

// Name returns "gitlab".
func (p *GitLabProvider) Name() string {
	return "gitlab"
}

// RepositoryInfo fetches metadata for owner/repo.
func (p *GitLabProvider) RepositoryInfo(ctx context.Context, owner, repo string) (*RepositoryInfo, error) {
	const op = "vcs.GitLabProvider.RepositoryInfo"

	if err := p.wait(ctx); err != nil {
		return nil, errors.E(op, errors.KindTimeout, "rate limit wait", err)
	}

	pid := owner + "/" + repo
	project, resp, err := p.client.Projects.GetProject(pid, &gitlab.GetProjectOptions{
		License: gitlab.Ptr(true),
	}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			p.count("miss")
			return nil, errors.E(op, errors.KindNotFound, pid)
		}
		p.count("error")
		return nil, errors.E(op, errors.KindNetwork, "fetch project", err)
	}
	p.count("ok")

	info := &RepositoryInfo{
		Name:          project.PathWithNamespace,
		Description:   project.Description,
		Homepage:      project.WebURL,
		DefaultBranch: project.DefaultBranch,
	}
	if project.License != nil {
		// GitLab reports a lower-cased license key ("mit", "apache-2.0").
		info.DeclaredLicense = normalizeGitLabKey(project.License.Key)
	}
	p.logger.Debug("gitlab %s: license %q", info.Name, info.DeclaredLicense)
	return info, nil
}

// normalizeGitLabKey maps GitLab's lower-cased license keys to SPDX
// identifier casing where the mapping is unambiguous. Unknown keys pass
// through unchanged.
func normalizeGitLabKey(key string) string {
	known := map[string]string{
		"mit":          "MIT",
		"apache-2.0":   "Apache-2.0",
		"gpl-2.0":      "GPL-2.0-only",
		"gpl-3.0":      "GPL-3.0-only",
		"lgpl-2.1":     "LGPL-2.1-only",
		"lgpl-3.0":     "LGPL-3.0-only",
		"agpl-3.0":     "AGPL-3.0-only",
		"bsd-2-clause": "BSD-2-Clause",
		"bsd-3-clause": "BSD-3-Clause",
		"mpl-2.0":      "MPL-2.0",
		"epl-2.0":      "EPL-2.0",
		"unlicense":    "Unlicense",
		"isc":          "ISC",
	}
	if spdx, ok := known[strings.ToLower(key)]; ok {
		return spdx
	}
	return key
}

var _ Provider = (*GitLabProvider)(nil)
