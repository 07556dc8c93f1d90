package chunker

import (
	"regexp"
	"strings"

	"ragqa/internal/adapter/textproc"
)

var sentenceRe = regexp.MustCompile(`[.!?]+`)

// SentenceChunker splits text on sentence boundaries, packing whole
// sentences into chunks bounded by [MinChunkSize, MaxChunkSize]. When
// sentence packing collapses to a single chunk it falls back to a
// word-based splitter with an approximate word-count overlap.
type SentenceChunker struct {
	chunkSize    int
	chunkOverlap int
	minChunkSize int
	maxChunkSize int
}

func NewSentenceChunker(chunkSize, chunkOverlap, minChunkSize, maxChunkSize int) *SentenceChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 200
	}
	if minChunkSize <= 0 {
		minChunkSize = 100
	}
	if maxChunkSize <= 0 {
		maxChunkSize = 2000
	}
	return &SentenceChunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		minChunkSize: minChunkSize,
		maxChunkSize: maxChunkSize,
	}
}

// Chunk returns the segments of text to embed. Nil means nothing
// indexable: empty input, or text entirely below MinChunkSize.
func (c *SentenceChunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	text = textproc.CleanDefault(text)
	if text == "" {
		return nil
	}

	chunks := c.chunkBySentence(text)

	// One giant sentence, or text shorter than the chunk size: the
	// sentence strategy degenerates, so split by words instead.
	if len(chunks) <= 1 {
		chunks = c.chunkByWord(text)
	}

	return chunks
}

func (c *SentenceChunker) chunkBySentence(text string) []string {
	var sentences []string
	for _, s := range sentenceRe.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	var chunks []string
	current := ""

	for _, sentence := range sentences {
		if len(current)+len(sentence) > c.maxChunkSize && current != "" {
			if len(current) >= c.minChunkSize {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = sentence
		} else if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}

	if current != "" && len(current) >= c.minChunkSize {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}

func (c *SentenceChunker) chunkByWord(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	// Word-count overlap, approximated from the character overlap.
	overlapWords := c.chunkOverlap / 10

	var chunks []string
	current := ""

	for _, word := range words {
		if len(current)+len(word)+1 > c.chunkSize && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			tail := strings.Fields(current)
			if overlapWords > 0 && len(tail) > overlapWords {
				tail = tail[len(tail)-overlapWords:]
			} else if overlapWords == 0 {
				tail = nil
			}
			if len(tail) > 0 {
				current = strings.Join(tail, " ") + " " + word
			} else {
				current = word
			}
		} else if current == "" {
			current = word
		} else {
			current += " " + word
		}
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	// A single undersized fallback chunk is still nothing indexable.
	if len(chunks) == 1 && len(chunks[0]) < c.minChunkSize {
		return nil
	}

	return chunks
}
