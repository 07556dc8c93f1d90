package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ragqa/internal/domain"
)

func TestDocsCollectRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Go FAQ</h1><p>Goroutines are cheap.</p></body></html>`)
	}))
	defer srv.Close()

	d := NewDocs(DocsConfig{
		Sites:             []Site{{Name: "Go FAQ", URL: srv.URL, Category: "language"}},
		RequestsPerSecond: 100,
	})

	docs, err := d.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("documents = %d, want 1", len(docs))
	}

	doc := docs[0]
	if strings.Contains(doc.Content, "<p>") {
		t.Error("HTML tags should be stripped")
	}
	if !strings.Contains(doc.Content, "Goroutines are cheap.") {
		t.Errorf("content = %q", doc.Content)
	}
	if doc.Metadata.Source != "documentation" || doc.Metadata.Title != "Go FAQ" {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if doc.Metadata.ContentHash == "" || doc.Metadata.WordCount == 0 {
		t.Error("derived metadata fields should be filled")
	}
}

func TestDocsCollectSkipsFailingSite(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "working page content")
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	d := NewDocs(DocsConfig{
		Sites: []Site{
			{Name: "bad", URL: bad.URL},
			{Name: "good", URL: good.URL},
		},
		RequestsPerSecond: 100,
	})

	docs, err := d.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 1 || docs[0].Metadata.Title != "good" {
		t.Errorf("docs = %+v, want only the working site", docs)
	}
}

func TestDocsCollectLocalGlobs(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "guides"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "guides", "intro.md"), "# Intro\nlocal guide text")
	writeFile(t, filepath.Join(root, "guides", "skip.txt"), "not matched")

	d := NewDocs(DocsConfig{
		LocalRoot:  root,
		LocalGlobs: []string{"**/*.md"},
	})

	docs, err := d.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("documents = %d, want 1", len(docs))
	}
	if !strings.Contains(docs[0].Content, "local guide text") {
		t.Errorf("content = %q", docs[0].Content)
	}
	if docs[0].Metadata.Category != "local" {
		t.Errorf("category = %q, want local", docs[0].Metadata.Category)
	}
}

func TestWikipediaCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("list") {
		case "search":
			fmt.Fprint(w, `{"query":{"search":[{"title":"Machine learning"}]}}`)
		default:
			fmt.Fprint(w, `{"query":{"pages":{"1":{"title":"Machine learning","extract":"Machine learning studies algorithms that improve with data."}}}}`)
		}
	}))
	defer srv.Close()

	wiki := NewWikipedia(WikipediaConfig{
		Topics:            []string{"machine learning"},
		MaxPagesPerTopic:  1,
		RequestsPerSecond: 100,
	})
	wiki.baseURL = srv.URL

	docs, err := wiki.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("documents = %d, want 1", len(docs))
	}
	if docs[0].Metadata.Source != "wikipedia" {
		t.Errorf("source = %q", docs[0].Metadata.Source)
	}
	if docs[0].Metadata.Title != "Machine learning" {
		t.Errorf("title = %q", docs[0].Metadata.Title)
	}
	if docs[0].Metadata.Category != "machine learning" {
		t.Errorf("category = %q, want the topic", docs[0].Metadata.Category)
	}
	if !strings.Contains(docs[0].Content, "improve with data") {
		t.Errorf("content = %q", docs[0].Content)
	}
}

func TestNewsCollectCapsPerFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Tech</title>
<item><title>First</title><link>https://example.org/1</link><description>story one body</description></item>
<item><title>Second</title><link>https://example.org/2</link><description>story two body</description></item>
<item><title>Third</title><link>https://example.org/3</link><description>story three body</description></item>
</channel></rss>`)
	}))
	defer srv.Close()

	n := NewNews(NewsConfig{
		Feeds:             []Feed{{Name: "tech", URL: srv.URL, Category: "technology"}},
		MaxArticles:       2,
		RequestsPerSecond: 100,
	})

	docs, err := n.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want cap of 2", len(docs))
	}
	if docs[0].Metadata.Title != "First" {
		t.Errorf("title = %q", docs[0].Metadata.Title)
	}
	if docs[0].Metadata.Category != "technology" {
		t.Errorf("category = %q", docs[0].Metadata.Category)
	}
	if docs[0].Metadata.Extra["feed"] != "tech" {
		t.Errorf("extra = %v", docs[0].Metadata.Extra)
	}
}

// stubCollector is a scripted port.Collector for manager tests.
type stubCollector struct {
	name string
	docs []domain.Document
	err  error
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) Collect(context.Context) ([]domain.Document, error) {
	return s.docs, s.err
}

func (s *stubCollector) SourceInfo() map[string]string {
	return map[string]string{"type": s.name}
}

func TestManagerIsolatesFailures(t *testing.T) {
	rawDir := t.TempDir()
	m := NewManager(rawDir, nil,
		&stubCollector{name: "good", docs: []domain.Document{{Content: "hello"}}},
		&stubCollector{name: "broken", err: fmt.Errorf("upstream down")},
		&stubCollector{name: "alsogood", docs: []domain.Document{{Content: "world"}, {Content: "again"}}},
	)

	report := m.CollectAll(context.Background(), true)

	if report.SuccessfulCollectors != 2 || report.FailedCollectors != 1 {
		t.Fatalf("successes = %d, failures = %d", report.SuccessfulCollectors, report.FailedCollectors)
	}
	if report.TotalItems != 3 {
		t.Errorf("total items = %d, want 3", report.TotalItems)
	}
	if report.Results[1].Error == "" {
		t.Error("failed run should carry its error")
	}
	if report.Results[0].FilePath == "" || report.Results[2].FilePath == "" {
		t.Error("successful runs should be persisted")
	}
}

func TestManagerBatchFormatAndReload(t *testing.T) {
	rawDir := t.TempDir()
	m := NewManager(rawDir, nil, &stubCollector{
		name: "docs",
		docs: []domain.Document{{Content: "persisted content", Metadata: domain.Metadata{Source: "docs"}}},
	})

	report := m.CollectAll(context.Background(), true)
	path := report.Results[0].FilePath

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read batch: %v", err)
	}

	var batch domain.CollectionBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		t.Fatalf("parse batch: %v", err)
	}
	if batch.Metadata.Collector != "docs" || batch.Metadata.ItemCount != 1 {
		t.Errorf("batch metadata = %+v", batch.Metadata)
	}
	if batch.Metadata.RunID == "" {
		t.Error("run id should be set")
	}
	if batch.Metadata.SourceInfo["type"] != "docs" {
		t.Errorf("source info = %v", batch.Metadata.SourceInfo)
	}

	docs, err := LoadBatches(rawDir)
	if err != nil {
		t.Fatalf("LoadBatches: %v", err)
	}
	if len(docs) != 1 || docs[0].Content != "persisted content" {
		t.Errorf("reloaded docs = %+v", docs)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
