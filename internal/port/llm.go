package port

// GenerateOptions tune a single generation call. Zero values fall back
// to the model defaults.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// LLM represents a causal language model for text generation.
type LLM interface {
	// Generate produces text for the prompt. Failures propagate; the
	// caller decides whether they are fatal.
	Generate(prompt string, opts GenerateOptions) (string, error)

	// GenerateWithContext formats retrieved context and a question
	// into the question-answering prompt and delegates to Generate.
	GenerateWithContext(context, question string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
