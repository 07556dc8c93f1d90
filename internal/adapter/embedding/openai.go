package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config wires an OpenAI-compatible embedding endpoint. The API key is
// resolved by the caller; this package never reads the environment.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	Dimension int
	BatchSize int
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	batchSize int
	client    *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAIEmbedder validates the config and builds the embedder.
// A missing key or unknown endpoint is a startup error; there is no
// per-request retry.
func NewOpenAIEmbedder(cfg Config) (*OpenAIEmbedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch cfg.Provider {
		case "", "openai":
			baseURL = "https://api.openai.com/v1"
		case "jina":
			baseURL = "https://api.jina.ai/v1"
		case "ollama":
			baseURL = "http://localhost:11434/v1"
		default:
			return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
		}
	}

	if cfg.APIKey == "" && cfg.Provider != "ollama" {
		return nil, fmt.Errorf("embedding API key not configured")
	}

	dimension := cfg.Dimension
	if dimension == 0 {
		switch cfg.Model {
		case "text-embedding-3-small", "text-embedding-ada-002":
			dimension = 1536
		case "text-embedding-3-large":
			dimension = 3072
		case "all-minilm", "all-MiniLM-L6-v2":
			dimension = 384
		case "nomic-embed-text":
			dimension = 768
		default:
			return nil, fmt.Errorf("embedding dimension not configured for model %s", cfg.Model)
		}
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &OpenAIEmbedder{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		baseURL:   baseURL,
		dimension: dimension,
		batchSize: batchSize,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (e *OpenAIEmbedder) Encode(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := e.encodeBatch(texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, embeddings...)
	}

	return all, nil
}

func (e *OpenAIEmbedder) EncodeSingle(text string) ([]float32, error) {
	embeddings, err := e.Encode([]string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}
	return embeddings[0], nil
}

func (e *OpenAIEmbedder) encodeBatch(texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Input: texts,
		Model: e.model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", e.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("failed to parse response (body: %s): %w", preview, err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", embResp.Error.Message)
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index < len(embeddings) {
			embeddings[data.Index] = data.Embedding
		}
	}

	return embeddings, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}
