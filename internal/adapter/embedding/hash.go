package embedding

import (
	"hash/fnv"
	"strings"
)

// HashEmbedder is a deterministic bag-of-words feature hasher. It
// needs no model download or network access, so it backs offline runs
// and tests. Texts sharing vocabulary land near each other, which is
// all retrieval needs from it.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashEmbedder{dimension: dimension}
}

func (e *HashEmbedder) Encode(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.embed(text)
	}
	return embeddings, nil
}

func (e *HashEmbedder) EncodeSingle(text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *HashEmbedder) embed(text string) []float32 {
	v := make([]float32, e.dimension)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		sum := h.Sum32()
		idx := int(sum % uint32(e.dimension))
		// Signed hashing keeps unrelated words from piling up in
		// the same direction.
		if sum&1 == 0 {
			v[idx]++
		} else {
			v[idx]--
		}
	}

	return Normalize(v)
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashEmbedder) ModelName() string {
	return "hash"
}
