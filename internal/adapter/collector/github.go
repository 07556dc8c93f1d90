package collector

import (
	"context"
	"fmt"
	"strconv"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"ragqa/internal/adapter/textproc"
	"ragqa/internal/domain"
)

// GitHubConfig configures topic-driven repository collection. Token is
// optional; unauthenticated requests get GitHub's much lower quota.
type GitHubConfig struct {
	Topics        []string `yaml:"topics"`
	MaxRepos      int      `yaml:"max_repos"`
	Token         string   `yaml:"-"`
	IncludeREADME bool     `yaml:"include_readme"`

	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// GitHub collects repository descriptions and READMEs for configured
// topics through the search API.
type GitHub struct {
	cfg     GitHubConfig
	client  *gh.Client
	limiter *rate.Limiter
}

func NewGitHub(ctx context.Context, cfg GitHubConfig) *GitHub {
	if cfg.MaxRepos <= 0 {
		cfg.MaxRepos = 10
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	var client *gh.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		client = gh.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		client = gh.NewClient(nil)
	}

	return &GitHub{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) SourceInfo() map[string]string {
	return map[string]string{
		"type":          "github",
		"topics":        strconv.Itoa(len(g.cfg.Topics)),
		"max_repos":     strconv.Itoa(g.cfg.MaxRepos),
		"authenticated": strconv.FormatBool(g.cfg.Token != ""),
	}
}

// Collect searches each topic and emits one document per repository.
func (g *GitHub) Collect(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	var lastErr error

	for _, topic := range g.cfg.Topics {
		repos, err := g.searchRepos(ctx, topic)
		if err != nil {
			lastErr = err
			continue
		}

		for _, repo := range repos {
			doc, err := g.repoDocument(ctx, repo, topic)
			if err != nil {
				lastErr = err
				continue
			}
			docs = append(docs, doc)
		}
	}

	if len(docs) == 0 && lastErr != nil {
		return nil, fmt.Errorf("github collection produced nothing: %w", lastErr)
	}
	return docs, nil
}

func (g *GitHub) searchRepos(ctx context.Context, topic string) ([]*gh.Repository, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("topic:%s", topic)
	opts := &gh.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: g.cfg.MaxRepos},
	}

	result, _, err := g.client.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search topic %q: %w", topic, err)
	}

	repos := result.Repositories
	if len(repos) > g.cfg.MaxRepos {
		repos = repos[:g.cfg.MaxRepos]
	}
	return repos, nil
}

func (g *GitHub) repoDocument(ctx context.Context, repo *gh.Repository, topic string) (domain.Document, error) {
	content := repo.GetDescription()

	if g.cfg.IncludeREADME {
		readme, err := g.fetchReadme(ctx, repo)
		if err == nil && readme != "" {
			content = content + "\n\n" + readme
		}
	}

	content = textproc.CleanDefault(content)
	if content == "" {
		content = repo.GetFullName()
	}

	meta := textproc.BuildMetadata(content, "github", repo.GetHTMLURL(), repo.GetFullName(), topic)
	meta.Extra = map[string]string{
		"stars":    strconv.Itoa(repo.GetStargazersCount()),
		"language": repo.GetLanguage(),
	}

	return domain.Document{Content: content, Metadata: meta}, nil
}

func (g *GitHub) fetchReadme(ctx context.Context, repo *gh.Repository) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	readme, _, err := g.client.Repositories.GetReadme(ctx,
		repo.GetOwner().GetLogin(), repo.GetName(), nil)
	if err != nil {
		return "", err
	}
	return readme.GetContent()
}
