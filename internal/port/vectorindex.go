package port

import "ragqa/internal/domain"

// NoEntry is the sentinel position returned by Search when fewer than
// k entries exist. Callers must discard it.
const NoEntry = -1

// VectorIndex stores embeddings plus the chunk text and metadata they
// were derived from, at stable append-only positions.
//
// The index is single-writer: Add, Load and Clear must not run
// concurrently with Search.
type VectorIndex interface {
	// Add appends entries. The three slices must be position-aligned;
	// a length mismatch fails the whole batch.
	Add(texts []string, embeddings [][]float32, metadata []domain.Metadata) error

	// Search returns the k nearest entries by the configured metric.
	// When k exceeds the entry count, the tail is padded with NoEntry.
	Search(query []float32, k int) (distances []float64, indices []int, err error)

	// SearchWithMetadata returns ranked results annotated with a
	// similarity score and filtered by the similarity threshold. It
	// may legitimately return zero results.
	SearchWithMetadata(query []float32, k int) ([]domain.SearchResult, error)

	// Save persists the index to path plus a position-aligned JSON
	// sidecar at path+".json".
	Save(path string) error

	// Load restores a previously saved index.
	Load(path string) error

	// Clear discards all entries and restarts positions at zero.
	Clear() error

	// Stats describes the current index.
	Stats() domain.IndexStats

	// Generation increments on every mutation (Add, Load, Clear).
	// Caches key on it to detect staleness.
	Generation() uint64
}
