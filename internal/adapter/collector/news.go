package collector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"ragqa/internal/adapter/textproc"
	"ragqa/internal/domain"
)

// Feed is one RSS or Atom source.
type Feed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

type NewsConfig struct {
	Feeds       []Feed `yaml:"feeds"`
	MaxArticles int    `yaml:"max_articles"`

	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// News collects articles from RSS/Atom feeds.
type News struct {
	cfg     NewsConfig
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

func NewNews(cfg NewsConfig) *News {
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 20
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}
	return &News{
		cfg:     cfg,
		parser:  parser,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (n *News) Name() string { return "news" }

func (n *News) SourceInfo() map[string]string {
	return map[string]string{
		"type":         "news",
		"feeds":        strconv.Itoa(len(n.cfg.Feeds)),
		"max_articles": strconv.Itoa(n.cfg.MaxArticles),
	}
}

// Collect parses each feed and keeps up to MaxArticles items per feed.
func (n *News) Collect(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	var lastErr error

	for _, feed := range n.cfg.Feeds {
		if err := n.limiter.Wait(ctx); err != nil {
			return docs, err
		}

		parsed, err := n.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("parse feed %s: %w", feed.URL, err)
			continue
		}

		for i, item := range parsed.Items {
			if i >= n.cfg.MaxArticles {
				break
			}

			body := item.Content
			if body == "" {
				body = item.Description
			}
			content := textproc.CleanDefault(item.Title + ". " + body)
			if content == "" {
				continue
			}

			category := feed.Category
			if category == "" {
				category = "news"
			}

			meta := textproc.BuildMetadata(content, "news", item.Link, item.Title, category)
			if item.PublishedParsed != nil {
				meta.Extra = map[string]string{
					"feed":      feed.Name,
					"published": item.PublishedParsed.Format(time.RFC3339),
				}
			} else {
				meta.Extra = map[string]string{"feed": feed.Name}
			}
			docs = append(docs, domain.Document{Content: content, Metadata: meta})
		}
	}

	if len(docs) == 0 && lastErr != nil {
		return nil, fmt.Errorf("news collection produced nothing: %w", lastErr)
	}
	return docs, nil
}
