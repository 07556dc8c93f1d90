package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ragqa/internal/adapter/textproc"
	"ragqa/internal/domain"
)

// WikipediaConfig configures topic-driven article collection through
// the MediaWiki action API.
type WikipediaConfig struct {
	Language         string   `yaml:"language"`
	Topics           []string `yaml:"topics"`
	MaxPagesPerTopic int      `yaml:"max_pages_per_topic"`

	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// Wikipedia searches each topic and pulls plain-text extracts for the
// top matching pages.
type Wikipedia struct {
	cfg     WikipediaConfig
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

func NewWikipedia(cfg WikipediaConfig) *Wikipedia {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.MaxPagesPerTopic <= 0 {
		cfg.MaxPagesPerTopic = 5
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Wikipedia{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		baseURL: fmt.Sprintf("https://%s.wikipedia.org/w/api.php", cfg.Language),
	}
}

func (w *Wikipedia) Name() string { return "wikipedia" }

func (w *Wikipedia) SourceInfo() map[string]string {
	return map[string]string{
		"type":     "wikipedia",
		"language": w.cfg.Language,
		"topics":   strconv.Itoa(len(w.cfg.Topics)),
	}
}

// Collect searches every configured topic. A topic that fails is
// skipped so one bad query never loses the rest of the run.
func (w *Wikipedia) Collect(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	var lastErr error

	for _, topic := range w.cfg.Topics {
		titles, err := w.searchTitles(ctx, topic)
		if err != nil {
			lastErr = err
			continue
		}

		for _, title := range titles {
			extract, pageURL, err := w.fetchExtract(ctx, title)
			if err != nil {
				lastErr = err
				continue
			}
			if extract == "" {
				continue
			}

			content := textproc.CleanDefault(extract)
			meta := textproc.BuildMetadata(content, "wikipedia", pageURL, title, topic)
			docs = append(docs, domain.Document{Content: content, Metadata: meta})
		}
	}

	if len(docs) == 0 && lastErr != nil {
		return nil, fmt.Errorf("wikipedia collection produced nothing: %w", lastErr)
	}
	return docs, nil
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

func (w *Wikipedia) searchTitles(ctx context.Context, topic string) ([]string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {topic},
		"srlimit":  {strconv.Itoa(w.cfg.MaxPagesPerTopic)},
		"format":   {"json"},
	}

	var parsed wikiSearchResponse
	if err := w.getJSON(ctx, params, &parsed); err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}

	titles := make([]string, 0, len(parsed.Query.Search))
	for _, hit := range parsed.Query.Search {
		titles = append(titles, hit.Title)
	}
	return titles, nil
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

func (w *Wikipedia) fetchExtract(ctx context.Context, title string) (extract, pageURL string, err error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"1"},
		"titles":      {title},
		"format":      {"json"},
	}

	var parsed wikiExtractResponse
	if err := w.getJSON(ctx, params, &parsed); err != nil {
		return "", "", fmt.Errorf("extract %q: %w", title, err)
	}

	for _, page := range parsed.Query.Pages {
		pageURL = fmt.Sprintf("https://%s.wikipedia.org/wiki/%s",
			w.cfg.Language, url.PathEscape(strings.ReplaceAll(page.Title, " ", "_")))
		return page.Extract, pageURL, nil
	}
	return "", "", nil
}

func (w *Wikipedia) getJSON(ctx context.Context, params url.Values, out any) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
