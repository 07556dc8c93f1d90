package usecase

import (
	"fmt"
	"strings"

	"ragqa/internal/domain"
)

// FormatContext renders ranked search results into one bounded context
// block. Results are taken in rank order and appended whole; the first
// result that would overflow maxLength stops the loop. Under a tight
// budget lower-ranked results are dropped silently, never cut mid-text.
func FormatContext(results []domain.SearchResult, maxLength int) string {
	var parts []string
	currentLength := 0

	for i, result := range results {
		source := result.Metadata.Source
		if source == "" {
			source = "unknown"
		}
		title := result.Metadata.Title
		if title == "" {
			title = fmt.Sprintf("Document %d", i+1)
		}

		formatted := fmt.Sprintf("[Source: %s, Title: %s, Similarity: %.2f]\n%s\n",
			source, title, result.Similarity, result.Text)

		if currentLength+len(formatted) > maxLength {
			break
		}

		parts = append(parts, formatted)
		currentLength += len(formatted)
	}

	return strings.Join(parts, "\n")
}

// SummaryPrompt renders the summarization prompt, truncating oversized
// input at maxLength.
func SummaryPrompt(text string, maxLength int) string {
	if maxLength > 0 && len(text) > maxLength {
		text = text[:maxLength] + "..."
	}
	return fmt.Sprintf("Please provide a concise summary of the following text:\n\n%s\n\nSummary:", text)
}
