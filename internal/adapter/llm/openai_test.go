package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ragqa/internal/port"
)

func TestStripPromptEcho(t *testing.T) {
	prompt := "Context: c\n\nQuestion: q\n\nAnswer:"

	got := StripPromptEcho(prompt+" The answer is 42.", prompt)
	if got != "The answer is 42." {
		t.Errorf("echoed prompt not stripped: %q", got)
	}

	got = StripPromptEcho("  No echo here.  ", prompt)
	if got != "No echo here." {
		t.Errorf("non-echoed output mangled: %q", got)
	}
}

func TestQAPromptShape(t *testing.T) {
	p := QAPrompt("some context", "some question")
	if !strings.HasPrefix(p, "Context: some context") {
		t.Errorf("prompt missing context prefix: %q", p)
	}
	if !strings.Contains(p, "Question: some question") {
		t.Errorf("prompt missing question: %q", p)
	}
	if !strings.HasSuffix(p, "Answer:") {
		t.Errorf("prompt missing answer cue: %q", p)
	}
}

func TestOpenAILLMGenerate(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "Go is a language."}}},
		})
	}))
	defer srv.Close()

	m, err := NewOpenAILLM(Config{Model: "test-model", APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	out, err := m.GenerateWithContext("docs about Go", "What is Go?", port.GenerateOptions{MaxTokens: 64})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Go is a language." {
		t.Errorf("unexpected output %q", out)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.MaxTokens != 64 {
		t.Errorf("max_tokens = %d, want 64", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 1 || !strings.Contains(gotReq.Messages[0].Content, "What is Go?") {
		t.Errorf("prompt not forwarded: %+v", gotReq.Messages)
	}
}

func TestOpenAILLMSystemPrompt(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "ok"}}},
		})
	}))
	defer srv.Close()

	m, err := NewOpenAILLM(Config{
		Model: "test-model", APIKey: "k", BaseURL: srv.URL,
		SystemPrompt: "answer from context only",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Generate("question", port.GenerateOptions{}); err != nil {
		t.Fatal(err)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "answer from context only" {
		t.Errorf("system message = %+v", gotReq.Messages[0])
	}
	if gotReq.Messages[1].Role != "user" {
		t.Errorf("user message = %+v", gotReq.Messages[1])
	}
}

func TestOpenAILLMAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	m, err := NewOpenAILLM(Config{Model: "test-model", APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Generate("prompt", port.GenerateOptions{}); err == nil {
		t.Fatal("expected error from non-200 response")
	}
}

func TestNewOpenAILLMRequiresKey(t *testing.T) {
	if _, err := NewOpenAILLM(Config{Model: "m"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewOpenAILLMRequiresModel(t *testing.T) {
	if _, err := NewOpenAILLM(Config{APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing model")
	}
}
