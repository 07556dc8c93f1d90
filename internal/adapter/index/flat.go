package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"ragqa/internal/adapter/embedding"
	"ragqa/internal/domain"
	"ragqa/internal/port"
)

const (
	// TypeInnerProduct scores by inner product over unit-normalized
	// vectors (equivalent to cosine similarity). Higher is closer.
	TypeInnerProduct = "flat_ip"

	// TypeL2 scores by Euclidean distance. Lower is closer.
	TypeL2 = "flat_l2"
)

var bucketVectors = []byte("vectors")

// Config sets up a flat index.
type Config struct {
	IndexType           string
	Dimension           int
	TopK                int
	SimilarityThreshold float64
}

// FlatIndex is a brute-force exact nearest-neighbor index. Entries sit
// at stable append-only positions in three parallel arrays; Clear is
// the only way positions restart. Search may run concurrently, but
// mutation (Add, Load, Clear) is single-writer.
type FlatIndex struct {
	mu         sync.RWMutex
	indexType  string
	dimension  int
	topK       int
	threshold  float64
	vectors    [][]float32
	texts      []string
	metadata   []domain.Metadata
	generation uint64
}

// sidecar is the JSON file persisted next to the vector database,
// position-aligned with it.
type sidecar struct {
	Documents []string          `json:"documents"`
	Metadata  []domain.Metadata `json:"metadata"`
	Config    sidecarConfig     `json:"config"`
}

type sidecarConfig struct {
	IndexType           string  `json:"index_type"`
	Dimension           int     `json:"dimension"`
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

func NewFlatIndex(cfg Config) (*FlatIndex, error) {
	switch cfg.IndexType {
	case TypeInnerProduct, TypeL2:
	case "":
		cfg.IndexType = TypeInnerProduct
	default:
		return nil, fmt.Errorf("unsupported index type: %s", cfg.IndexType)
	}

	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", cfg.Dimension)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.7
	}

	return &FlatIndex{
		indexType: cfg.IndexType,
		dimension: cfg.Dimension,
		topK:      cfg.TopK,
		threshold: cfg.SimilarityThreshold,
	}, nil
}

// Add appends entries to the index. The whole batch fails on a length
// or dimension mismatch; nothing is partially inserted.
func (x *FlatIndex) Add(texts []string, embeddings [][]float32, metadata []domain.Metadata) error {
	if len(texts) != len(embeddings) {
		return fmt.Errorf("text count (%d) does not match embedding count (%d)", len(texts), len(embeddings))
	}
	if metadata != nil && len(metadata) != len(texts) {
		return fmt.Errorf("metadata count (%d) does not match text count (%d)", len(metadata), len(texts))
	}

	for i, emb := range embeddings {
		if len(emb) != x.dimension {
			return fmt.Errorf("embedding %d has dimension %d, index expects %d", i, len(emb), x.dimension)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for i, emb := range embeddings {
		v := make([]float32, len(emb))
		copy(v, emb)
		if x.indexType == TypeInnerProduct {
			embedding.Normalize(v)
		}
		x.vectors = append(x.vectors, v)
		x.texts = append(x.texts, texts[i])
		if metadata != nil {
			x.metadata = append(x.metadata, metadata[i])
		} else {
			x.metadata = append(x.metadata, domain.Metadata{})
		}
	}

	x.generation++
	return nil
}

// Search returns the k nearest entries. When k exceeds the stored
// entry count the tail is padded with port.NoEntry positions.
func (x *FlatIndex) Search(query []float32, k int) ([]float64, []int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(query) != x.dimension {
		return nil, nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), x.dimension)
	}
	if k <= 0 {
		k = x.topK
	}

	q := query
	if x.indexType == TypeInnerProduct {
		q = make([]float32, len(query))
		copy(q, query)
		embedding.Normalize(q)
	}

	type scored struct {
		pos  int
		dist float64
	}

	scores := make([]scored, len(x.vectors))
	for i, v := range x.vectors {
		var d float64
		if x.indexType == TypeInnerProduct {
			// Unit vectors, so the inner product is the cosine.
			d = embedding.CosineSimilarity(q, v)
		} else {
			d = embedding.EuclideanDistance(q, v)
		}
		scores[i] = scored{pos: i, dist: d}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if x.indexType == TypeInnerProduct {
			return scores[i].dist > scores[j].dist
		}
		return scores[i].dist < scores[j].dist
	})

	distances := make([]float64, k)
	indices := make([]int, k)
	for i := 0; i < k; i++ {
		if i < len(scores) {
			distances[i] = scores[i].dist
			indices[i] = scores[i].pos
		} else {
			distances[i] = 0
			indices[i] = port.NoEntry
		}
	}

	return distances, indices, nil
}

// SearchWithMetadata returns ranked, threshold-filtered results. Rank
// counts positions in the raw top-k scan, so a filtered list can have
// gaps in its ranks.
func (x *FlatIndex) SearchWithMetadata(query []float32, k int) ([]domain.SearchResult, error) {
	distances, indices, err := x.Search(query, k)
	if err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var results []domain.SearchResult
	for i, pos := range indices {
		if pos == port.NoEntry || pos >= len(x.texts) {
			continue
		}

		similarity := distances[i]
		if x.indexType == TypeL2 {
			// 1-distance degrades for far entries; clamp so a
			// similarity is never negative or above 1.
			similarity = 1 - distances[i]
			if similarity < 0 {
				similarity = 0
			} else if similarity > 1 {
				similarity = 1
			}
		}

		if similarity < x.threshold {
			continue
		}

		results = append(results, domain.SearchResult{
			Index:      pos,
			Text:       x.texts[pos],
			Metadata:   x.metadata[pos],
			Similarity: similarity,
			Distance:   distances[i],
			Rank:       i + 1,
		})
	}

	return results, nil
}

// Save persists vectors into a bbolt database at path and writes the
// position-aligned sidecar to path+".json".
func (x *FlatIndex) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// Rewrite from scratch so stale entries never survive a save.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace index file: %w", err)
	}

	db, err := bbolt.Open(path, 0644, nil)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketVectors)
		if err != nil {
			return err
		}
		for i, v := range x.vectors {
			if err := b.Put(positionKey(i), encodeVector(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write vectors: %w", err)
	}

	side := sidecar{
		Documents: x.texts,
		Metadata:  x.metadata,
		Config: sidecarConfig{
			IndexType:           x.indexType,
			Dimension:           x.dimension,
			TopK:                x.topK,
			SimilarityThreshold: x.threshold,
		},
	}
	data, err := json.MarshalIndent(side, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sidecar: %w", err)
	}
	if err := os.WriteFile(path+".json", data, 0644); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}

	return nil
}

// Load restores a saved index. The vector file and the sidecar must be
// position-aligned; a count mismatch fails the load.
func (x *FlatIndex) Load(path string) error {
	data, err := os.ReadFile(path + ".json")
	if err != nil {
		return fmt.Errorf("failed to read sidecar: %w", err)
	}
	var side sidecar
	if err := json.Unmarshal(data, &side); err != nil {
		return fmt.Errorf("failed to parse sidecar: %w", err)
	}

	db, err := bbolt.Open(path, 0644, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	var vectors [][]float32
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		// Fixed-width big-endian keys keep bbolt iteration in
		// position order.
		return b.ForEach(func(k, v []byte) error {
			vec, err := decodeVector(v)
			if err != nil {
				return err
			}
			vectors = append(vectors, vec)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("failed to read vectors: %w", err)
	}

	if len(vectors) != len(side.Documents) || len(vectors) != len(side.Metadata) {
		return fmt.Errorf("index/sidecar misaligned: %d vectors, %d documents, %d metadata",
			len(vectors), len(side.Documents), len(side.Metadata))
	}
	for i, v := range vectors {
		if len(v) != side.Config.Dimension {
			return fmt.Errorf("vector %d has dimension %d, sidecar declares %d", i, len(v), side.Config.Dimension)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.indexType = side.Config.IndexType
	x.dimension = side.Config.Dimension
	if side.Config.TopK > 0 {
		x.topK = side.Config.TopK
	}
	if side.Config.SimilarityThreshold > 0 {
		x.threshold = side.Config.SimilarityThreshold
	}
	x.vectors = vectors
	x.texts = side.Documents
	x.metadata = side.Metadata
	x.generation++

	return nil
}

// Clear discards all entries; positions restart at zero.
func (x *FlatIndex) Clear() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.vectors = nil
	x.texts = nil
	x.metadata = nil
	x.generation++
	return nil
}

func (x *FlatIndex) Stats() domain.IndexStats {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return domain.IndexStats{
		TotalDocuments:      len(x.texts),
		IndexType:           x.indexType,
		Dimension:           x.dimension,
		TopK:                x.topK,
		SimilarityThreshold: x.threshold,
	}
}

func (x *FlatIndex) Generation() uint64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.generation
}

func positionKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("corrupt vector record: %d bytes", len(buf))
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}
