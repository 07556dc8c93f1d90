package port

// Chunker splits raw text into bounded, slightly overlapping segments
// suitable for embedding. An empty result means nothing indexable.
type Chunker interface {
	Chunk(text string) []string
}
