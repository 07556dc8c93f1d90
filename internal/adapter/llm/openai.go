package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ragqa/internal/port"
)

// qaTemplate is the fixed question-answering prompt shape. Retrieval
// context always precedes the question.
const qaTemplate = "Context: %s\n\nQuestion: %s\n\nAnswer:"

// Config wires an OpenAI-compatible completions endpoint. The API key
// is resolved by the caller; this package never reads the environment.
type Config struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string
	MaxTokens    int
	Temperature  float64
	TopP         float64
	SystemPrompt string
}

// OpenAILLM calls an OpenAI-compatible /chat/completions endpoint.
type OpenAILLM struct {
	apiKey       string
	model        string
	baseURL      string
	maxTokens    int
	temperature  float64
	topP         float64
	systemPrompt string
	client       *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAILLM validates the config and builds the model client. A
// missing key is a startup error, not a per-request one.
func NewOpenAILLM(cfg Config) (*OpenAILLM, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch cfg.Provider {
		case "", "openai":
			baseURL = "https://api.openai.com/v1"
		case "deepseek":
			baseURL = "https://api.deepseek.com/v1"
		case "ollama":
			baseURL = "http://localhost:11434/v1"
		default:
			return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
		}
	}

	if cfg.APIKey == "" && cfg.Provider != "ollama" {
		return nil, fmt.Errorf("llm API key not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model not configured")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	topP := cfg.TopP
	if topP == 0 {
		topP = 0.9
	}

	return &OpenAILLM{
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		baseURL:      baseURL,
		maxTokens:    maxTokens,
		temperature:  temperature,
		topP:         topP,
		systemPrompt: cfg.SystemPrompt,
		client: &http.Client{
			Timeout: 180 * time.Second,
		},
	}, nil
}

func (m *OpenAILLM) Generate(prompt string, opts port.GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.maxTokens
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = m.temperature
	}

	var messages []chatMessage
	if m.systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: m.systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	reqBody := chatRequest{
		Model:       m.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        m.topP,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", m.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	return StripPromptEcho(chatResp.Choices[0].Message.Content, prompt), nil
}

func (m *OpenAILLM) GenerateWithContext(context, question string, opts port.GenerateOptions) (string, error) {
	return m.Generate(fmt.Sprintf(qaTemplate, context, question), opts)
}

func (m *OpenAILLM) ModelName() string {
	return m.model
}

// StripPromptEcho removes the input prompt when a causal model echoes
// it verbatim at the start of its output.
func StripPromptEcho(output, prompt string) string {
	if prompt != "" && strings.HasPrefix(output, prompt) {
		return strings.TrimSpace(output[len(prompt):])
	}
	return strings.TrimSpace(output)
}

// QAPrompt renders the question-answering template. Exposed so fakes
// and tests render the exact prompt the client sends.
func QAPrompt(context, question string) string {
	return fmt.Sprintf(qaTemplate, context, question)
}
