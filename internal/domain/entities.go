package domain

import "time"

// Document is a unit of ingested content produced by a collector.
// Immutable once produced.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes where a document (or a chunk derived from it) came
// from. Collector-specific fields live in Extra.
type Metadata struct {
	Source      string `json:"source"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	TextLength  int    `json:"text_length"`
	WordCount   int    `json:"word_count"`
	ExtractedAt string `json:"extracted_at"`
	ContentHash string `json:"content_hash"`

	// Chunk lineage, set by the ingest pipeline.
	DocumentIndex int `json:"document_index,omitempty"`
	ChunkIndex    int `json:"chunk_index,omitempty"`
	TotalChunks   int `json:"total_chunks,omitempty"`
	ChunkSize     int `json:"chunk_size,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// CollectionBatch wraps one collector run for persistence.
type CollectionBatch struct {
	Metadata BatchMetadata `json:"metadata"`
	Data     []Document    `json:"data"`
}

type BatchMetadata struct {
	Collector   string            `json:"collector"`
	CollectedAt time.Time         `json:"collected_at"`
	SourceInfo  map[string]string `json:"source_info"`
	ItemCount   int               `json:"item_count"`
	RunID       string            `json:"run_id"`
}

// SearchResult is one retrieval hit, already threshold-filtered.
type SearchResult struct {
	Index      int      `json:"index"`
	Text       string   `json:"text"`
	Metadata   Metadata `json:"metadata"`
	Similarity float64  `json:"similarity"`
	Distance   float64  `json:"distance"`
	Rank       int      `json:"rank"`
}

// Source attributes one retrieved document in an Answer.
type Source struct {
	Source     string  `json:"source"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
}

// Answer is the output of the question-answering pipeline. A failed
// question still yields a well-formed Answer with Error set; the
// pipeline never surfaces a Go error for a single question.
//
// Confidence is the mean similarity of the retrieved results. It
// measures retrieval agreement, not answer correctness.
type Answer struct {
	Answer             string    `json:"answer"`
	Sources            []Source  `json:"sources"`
	Confidence         float64   `json:"confidence"`
	RetrievedDocuments int       `json:"retrieved_documents"`
	ProcessingTime     float64   `json:"processing_time"`
	Question           string    `json:"question,omitempty"`
	ContextLength      int       `json:"context_length,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	Error              string    `json:"error,omitempty"`
}

// Failed reports whether the answer is a degraded (error) answer.
func (a Answer) Failed() bool { return a.Error != "" }

// IngestStats summarizes one ProcessDocuments run.
type IngestStats struct {
	DocumentCount      int     `json:"document_count"`
	ChunkCount         int     `json:"chunk_count"`
	EmbeddingDimension int     `json:"embedding_dimension"`
	DurationSeconds    float64 `json:"duration_seconds"`
	IndexPath          string  `json:"index_path,omitempty"`
}

// IndexStats describes the live vector index.
type IndexStats struct {
	TotalDocuments      int     `json:"total_documents"`
	IndexType           string  `json:"index_type"`
	Dimension           int     `json:"dimension"`
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}
