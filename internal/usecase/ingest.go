package usecase

import (
	"fmt"
	"time"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

// Ingest drives the chunk → embed → index pipeline and exposes
// query-time retrieval over the index it owns.
type Ingest struct {
	chunker  port.Chunker
	embedder port.Embedder
	index    port.VectorIndex
}

func NewIngest(chunker port.Chunker, embedder port.Embedder, index port.VectorIndex) *Ingest {
	return &Ingest{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
	}
}

// ProcessDocuments chunks every document, embeds all chunks of the
// batch in one Encode call, and adds them to the index. A batch that
// produces zero chunks is an error; the caller decides severity.
func (p *Ingest) ProcessDocuments(documents []domain.Document, saveIndex bool, indexPath string) (domain.IngestStats, error) {
	start := time.Now()

	texts, metadata := p.chunkDocuments(documents)
	if len(texts) == 0 {
		return domain.IngestStats{}, fmt.Errorf("no indexable chunks in %d documents", len(documents))
	}

	// One call across the whole document set amortizes the embedding
	// model's per-call overhead.
	embeddings, err := p.embedder.Encode(texts)
	if err != nil {
		return domain.IngestStats{}, fmt.Errorf("failed to embed chunks: %w", err)
	}

	if err := p.index.Add(texts, embeddings, metadata); err != nil {
		return domain.IngestStats{}, fmt.Errorf("failed to index chunks: %w", err)
	}

	stats := domain.IngestStats{
		DocumentCount:      len(documents),
		ChunkCount:         len(texts),
		EmbeddingDimension: p.embedder.Dimension(),
	}

	if saveIndex {
		if indexPath == "" {
			indexPath = fmt.Sprintf("models/index_%s", time.Now().Format("20060102_150405"))
		}
		if err := p.index.Save(indexPath); err != nil {
			return domain.IngestStats{}, fmt.Errorf("failed to save index: %w", err)
		}
		stats.IndexPath = indexPath
	}

	stats.DurationSeconds = time.Since(start).Seconds()
	return stats, nil
}

func (p *Ingest) chunkDocuments(documents []domain.Document) ([]string, []domain.Metadata) {
	var texts []string
	var metadata []domain.Metadata

	for docIdx, doc := range documents {
		if doc.Content == "" {
			continue
		}

		chunks := p.chunker.Chunk(doc.Content)
		for chunkIdx, chunk := range chunks {
			meta := doc.Metadata
			meta.DocumentIndex = docIdx
			meta.ChunkIndex = chunkIdx
			meta.TotalChunks = len(chunks)
			meta.ChunkSize = len(chunk)

			texts = append(texts, chunk)
			metadata = append(metadata, meta)
		}
	}

	return texts, metadata
}

// Search encodes the query once and delegates to the index.
func (p *Ingest) Search(query string, k int) ([]domain.SearchResult, error) {
	queryEmbedding, err := p.embedder.EncodeSingle(query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := p.index.SearchWithMetadata(queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	return results, nil
}

// BatchSearch encodes all queries in one call and searches per query.
func (p *Ingest) BatchSearch(queries []string, k int) ([][]domain.SearchResult, error) {
	embeddings, err := p.embedder.Encode(queries)
	if err != nil {
		return nil, fmt.Errorf("failed to embed queries: %w", err)
	}

	all := make([][]domain.SearchResult, len(queries))
	for i := range queries {
		results, err := p.index.SearchWithMetadata(embeddings[i], k)
		if err != nil {
			return nil, fmt.Errorf("vector search failed for query %d: %w", i, err)
		}
		all[i] = results
	}

	return all, nil
}

// LoadIndex restores a previously saved index.
func (p *Ingest) LoadIndex(path string) error {
	return p.index.Load(path)
}

// ClearIndex drops every entry.
func (p *Ingest) ClearIndex() error {
	return p.index.Clear()
}

// IndexStats describes the owned index.
func (p *Ingest) IndexStats() domain.IndexStats {
	return p.index.Stats()
}

// IndexGeneration exposes the index mutation counter for caches.
func (p *Ingest) IndexGeneration() uint64 {
	return p.index.Generation()
}

// EmbedderInfo names the embedding model and its dimension.
func (p *Ingest) EmbedderInfo() (string, int) {
	return p.embedder.ModelName(), p.embedder.Dimension()
}
