package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/time/rate"

	"ragqa/internal/adapter/textproc"
	"ragqa/internal/domain"
)

// Site is one remote documentation page to fetch.
type Site struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// DocsConfig configures the documentation collector. Remote sites are
// fetched over HTTP; local files are matched against glob patterns
// relative to LocalRoot.
type DocsConfig struct {
	Sites      []Site   `yaml:"sites"`
	LocalRoot  string   `yaml:"local_root"`
	LocalGlobs []string `yaml:"local_globs"`

	// RequestsPerSecond throttles remote fetches. Zero means 1 rps.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// Docs collects documentation pages from configured URLs and local
// file globs.
type Docs struct {
	cfg     DocsConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewDocs(cfg DocsConfig) *Docs {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Docs{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (d *Docs) Name() string { return "documentation" }

func (d *Docs) SourceInfo() map[string]string {
	return map[string]string{
		"type":        "documentation",
		"sites":       strconv.Itoa(len(d.cfg.Sites)),
		"local_globs": strconv.Itoa(len(d.cfg.LocalGlobs)),
	}
}

// Collect fetches every configured site and local glob match. A failed
// site is skipped; only a fully empty run with errors is an error.
func (d *Docs) Collect(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	var lastErr error

	for _, site := range d.cfg.Sites {
		doc, err := d.fetchSite(ctx, site)
		if err != nil {
			lastErr = err
			continue
		}
		docs = append(docs, doc)
	}

	local, err := d.collectLocal()
	if err != nil {
		lastErr = err
	}
	docs = append(docs, local...)

	if len(docs) == 0 && lastErr != nil {
		return nil, fmt.Errorf("documentation collection produced nothing: %w", lastErr)
	}
	return docs, nil
}

func (d *Docs) fetchSite(ctx context.Context, site Site) (domain.Document, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return domain.Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, site.URL, nil)
	if err != nil {
		return domain.Document{}, fmt.Errorf("bad url %q: %w", site.URL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return domain.Document{}, fmt.Errorf("fetch %s: %w", site.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Document{}, fmt.Errorf("fetch %s: status %d", site.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", site.URL, err)
	}

	content := textproc.CleanDefault(string(body))
	category := site.Category
	if category == "" {
		category = "documentation"
	}

	return domain.Document{
		Content:  content,
		Metadata: textproc.BuildMetadata(content, "documentation", site.URL, site.Name, category),
	}, nil
}

func (d *Docs) collectLocal() ([]domain.Document, error) {
	if len(d.cfg.LocalGlobs) == 0 {
		return nil, nil
	}

	root := d.cfg.LocalRoot
	if root == "" {
		root = "."
	}

	var docs []domain.Document
	seen := make(map[string]bool)

	for _, pattern := range d.cfg.LocalGlobs {
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return docs, fmt.Errorf("bad glob %q: %w", pattern, err)
		}

		for _, rel := range matches {
			path := filepath.Join(root, rel)
			if seen[path] {
				continue
			}
			seen[path] = true

			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}

			// local files keep URLs, remote pages get fully cleaned
			content := textproc.Clean(string(data), textproc.CleanOptions{
				KeepHTML: !strings.HasSuffix(rel, ".html"),
				KeepURLs: true,
			})
			docs = append(docs, domain.Document{
				Content:  content,
				Metadata: textproc.BuildMetadata(content, "documentation", "", rel, "local"),
			})
		}
	}

	return docs, nil
}

const (
	userAgent    = "ragqa-collector/1.0"
	maxBodyBytes = 10 << 20
)
