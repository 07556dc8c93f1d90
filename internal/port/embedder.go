package port

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Encode generates embeddings for the given texts, one vector
	// per input text.
	Encode(texts []string) ([][]float32, error)

	// EncodeSingle generates the embedding for a single text.
	EncodeSingle(text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
