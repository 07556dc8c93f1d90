package usecase

import (
	"fmt"
	"time"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

const (
	msgNoResults = "I couldn't find any relevant information to answer your question."
	msgError     = "I encountered an error while processing your question. Please try again."
)

// AnswerCache memoizes answers keyed by (question, k) and index
// generation. Implemented by adapter/cache.
type AnswerCache interface {
	Get(question string, k int, indexGen uint64) (domain.Answer, bool)
	Put(question string, k int, indexGen uint64, answer domain.Answer)
}

// Answerer coordinates retrieval and generation. Every question yields
// a well-formed Answer; failures degrade into the Error field instead
// of propagating.
type Answerer struct {
	retriever        *Ingest
	llm              port.LLM
	maxContextLength int
	cache            AnswerCache
}

func NewAnswerer(retriever *Ingest, llm port.LLM, maxContextLength int) *Answerer {
	if maxContextLength <= 0 {
		maxContextLength = 4000
	}
	return &Answerer{
		retriever:        retriever,
		llm:              llm,
		maxContextLength: maxContextLength,
	}
}

// SetCache enables answer caching. Pass nil to disable.
func (a *Answerer) SetCache(c AnswerCache) { a.cache = c }

// AnswerQuestion retrieves the top-k context for the question and asks
// the language model. With no results above the similarity threshold
// the model is not called at all.
func (a *Answerer) AnswerQuestion(question string, k int, opts port.GenerateOptions) domain.Answer {
	start := time.Now()

	gen := a.retriever.IndexGeneration()
	if a.cache != nil {
		if cached, ok := a.cache.Get(question, k, gen); ok {
			return cached
		}
	}

	results, err := a.retriever.Search(question, k)
	if err != nil {
		return a.degraded(question, start, fmt.Errorf("retrieval failed: %w", err))
	}

	if len(results) == 0 {
		return domain.Answer{
			Answer:         msgNoResults,
			Sources:        []domain.Source{},
			Confidence:     0,
			ProcessingTime: time.Since(start).Seconds(),
			Question:       question,
			Timestamp:      time.Now(),
		}
	}

	context := FormatContext(results, a.maxContextLength)

	response, err := a.llm.GenerateWithContext(context, question, opts)
	if err != nil {
		return a.degraded(question, start, fmt.Errorf("generation failed: %w", err))
	}

	answer := domain.Answer{
		Answer:             response,
		Sources:            collectSources(results),
		Confidence:         meanSimilarity(results),
		RetrievedDocuments: len(results),
		ProcessingTime:     time.Since(start).Seconds(),
		Question:           question,
		ContextLength:      len(context),
		Timestamp:          time.Now(),
	}

	if a.cache != nil {
		a.cache.Put(question, k, gen, answer)
	}
	return answer
}

// BatchAnswerQuestions answers each question independently. One
// question failing never aborts the rest.
func (a *Answerer) BatchAnswerQuestions(questions []string, k int, opts port.GenerateOptions) []domain.Answer {
	answers := make([]domain.Answer, len(questions))
	for i, q := range questions {
		answers[i] = a.AnswerQuestion(q, k, opts)
	}
	return answers
}

// Summarize asks the model for a summary of the given text, truncating
// oversized input.
func (a *Answerer) Summarize(text string, maxLength int, opts port.GenerateOptions) (string, error) {
	prompt := SummaryPrompt(text, maxLength)
	summary, err := a.llm.Generate(prompt, opts)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return summary, nil
}

func (a *Answerer) degraded(question string, start time.Time, err error) domain.Answer {
	return domain.Answer{
		Answer:         msgError,
		Sources:        []domain.Source{},
		Confidence:     0,
		ProcessingTime: time.Since(start).Seconds(),
		Question:       question,
		Timestamp:      time.Now(),
		Error:          err.Error(),
	}
}

func collectSources(results []domain.SearchResult) []domain.Source {
	sources := make([]domain.Source, 0, len(results))
	for _, r := range results {
		source := r.Metadata.Source
		if source == "" {
			source = "unknown"
		}
		title := r.Metadata.Title
		if title == "" {
			title = "Unknown"
		}
		sources = append(sources, domain.Source{
			Source:     source,
			Title:      title,
			URL:        r.Metadata.URL,
			Similarity: r.Similarity,
		})
	}
	return sources
}

func meanSimilarity(results []domain.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Similarity
	}
	return sum / float64(len(results))
}
