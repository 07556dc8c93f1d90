package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Processing.ChunkSize != 1000 {
		t.Errorf("expected ChunkSize=1000, got %d", cfg.Processing.ChunkSize)
	}
	if cfg.Processing.ChunkOverlap != 200 {
		t.Errorf("expected ChunkOverlap=200, got %d", cfg.Processing.ChunkOverlap)
	}
	if cfg.VectorDB.IndexType != "flat_ip" {
		t.Errorf("expected IndexType=flat_ip, got %s", cfg.VectorDB.IndexType)
	}
	if cfg.VectorDB.SimilarityThreshold != 0.7 {
		t.Errorf("expected SimilarityThreshold=0.7, got %f", cfg.VectorDB.SimilarityThreshold)
	}
	if cfg.RAG.MaxContextLength != 4000 {
		t.Errorf("expected MaxContextLength=4000, got %d", cfg.RAG.MaxContextLength)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected Port=8000, got %d", cfg.Server.Port)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ragqa.yaml")

	content := `
processing:
  chunk_size: 500
vector_db:
  top_k: 10
  similarity_threshold: 0.5
sources:
  wikipedia:
    language: de
    topics: ["golang"]
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Processing.ChunkSize != 500 {
		t.Errorf("expected ChunkSize=500, got %d", cfg.Processing.ChunkSize)
	}
	// untouched fields keep their defaults
	if cfg.Processing.ChunkOverlap != 200 {
		t.Errorf("expected ChunkOverlap=200, got %d", cfg.Processing.ChunkOverlap)
	}
	if cfg.VectorDB.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.VectorDB.TopK)
	}
	if cfg.Sources.Wikipedia.Language != "de" {
		t.Errorf("expected Language=de, got %s", cfg.Sources.Wikipedia.Language)
	}
	if len(cfg.Sources.Wikipedia.Topics) != 1 {
		t.Errorf("expected 1 topic, got %v", cfg.Sources.Wikipedia.Topics)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ragqa.yaml")

	if err := os.WriteFile(configPath, []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "ragqa.yaml")

	cfg := DefaultConfig()
	cfg.VectorDB.TopK = 7
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.VectorDB.TopK != 7 {
		t.Errorf("expected TopK=7 after round trip, got %d", loaded.VectorDB.TopK)
	}
}
