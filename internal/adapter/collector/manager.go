package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

// RunResult reports one collector's outcome inside a manager run.
type RunResult struct {
	Collector string            `json:"collector"`
	Status    string            `json:"status"`
	ItemCount int               `json:"item_count"`
	FilePath  string            `json:"filepath,omitempty"`
	Error     string            `json:"error,omitempty"`
	Documents []domain.Document `json:"-"`
}

// Report aggregates a full CollectAll run.
type Report struct {
	Timestamp            time.Time   `json:"timestamp"`
	Results              []RunResult `json:"results"`
	TotalItems           int         `json:"total_items"`
	SuccessfulCollectors int         `json:"successful_collectors"`
	FailedCollectors     int         `json:"failed_collectors"`
	DurationSeconds      float64     `json:"duration_seconds"`
}

// Manager runs registered collectors sequentially and persists each
// successful run as a JSON batch. One collector failing never stops
// the others.
type Manager struct {
	collectors []port.Collector
	rawDir     string
	logger     *slog.Logger
	progress   func(done, total int, name string)
}

func NewManager(rawDir string, logger *slog.Logger, collectors ...port.Collector) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		collectors: collectors,
		rawDir:     rawDir,
		logger:     logger,
	}
}

// SetProgress installs a callback invoked after each collector run.
func (m *Manager) SetProgress(fn func(done, total int, name string)) {
	m.progress = fn
}

// Collectors lists the registered collector names.
func (m *Manager) Collectors() []string {
	names := make([]string, len(m.collectors))
	for i, c := range m.collectors {
		names[i] = c.Name()
	}
	return names
}

// CollectAll runs every collector. With save set, each non-empty run
// is written under the raw data directory.
func (m *Manager) CollectAll(ctx context.Context, save bool) Report {
	start := time.Now()
	report := Report{Timestamp: start}

	for i, c := range m.collectors {
		result := m.runOne(ctx, c, save)
		report.Results = append(report.Results, result)
		if m.progress != nil {
			m.progress(i+1, len(m.collectors), c.Name())
		}

		if result.Status == "success" {
			report.SuccessfulCollectors++
			report.TotalItems += result.ItemCount
		} else {
			report.FailedCollectors++
		}
	}

	report.DurationSeconds = time.Since(start).Seconds()
	m.logger.Info("collection run finished",
		"total_items", report.TotalItems,
		"successful", report.SuccessfulCollectors,
		"failed", report.FailedCollectors,
		"duration_seconds", report.DurationSeconds)
	return report
}

func (m *Manager) runOne(ctx context.Context, c port.Collector, save bool) RunResult {
	m.logger.Info("collecting", "collector", c.Name())

	docs, err := c.Collect(ctx)
	if err != nil {
		m.logger.Error("collector failed", "collector", c.Name(), "error", err)
		return RunResult{Collector: c.Name(), Status: "failed", Error: err.Error()}
	}

	result := RunResult{
		Collector: c.Name(),
		Status:    "success",
		ItemCount: len(docs),
		Documents: docs,
	}

	if save && len(docs) > 0 {
		path, err := m.saveBatch(c, docs)
		if err != nil {
			m.logger.Error("failed to persist batch", "collector", c.Name(), "error", err)
			result.Status = "failed"
			result.Error = err.Error()
			return result
		}
		result.FilePath = path
	}

	m.logger.Info("collected", "collector", c.Name(), "items", len(docs))
	return result
}

func (m *Manager) saveBatch(c port.Collector, docs []domain.Document) (string, error) {
	if err := os.MkdirAll(m.rawDir, 0o755); err != nil {
		return "", fmt.Errorf("create raw data dir: %w", err)
	}

	batch := domain.CollectionBatch{
		Metadata: domain.BatchMetadata{
			Collector:   c.Name(),
			CollectedAt: time.Now(),
			SourceInfo:  c.SourceInfo(),
			ItemCount:   len(docs),
			RunID:       uuid.NewString(),
		},
		Data: docs,
	}

	filename := fmt.Sprintf("%s_%s.json", c.Name(), time.Now().Format("20060102_150405"))
	path := filepath.Join(m.rawDir, filename)

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal batch: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write batch: %w", err)
	}
	return path, nil
}

// LoadBatches reads every persisted batch file in the raw data
// directory and returns the contained documents.
func LoadBatches(rawDir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("read raw data dir: %w", err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(rawDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read batch %s: %w", entry.Name(), err)
		}

		var batch domain.CollectionBatch
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("parse batch %s: %w", entry.Name(), err)
		}
		docs = append(docs, batch.Data...)
	}
	return docs, nil
}
