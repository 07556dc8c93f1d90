package textproc

import (
	"crypto/md5"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
	"time"

	"ragqa/internal/domain"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	urlRe        = regexp.MustCompile(`http[s]?://[^\s]+`)
	emailRe      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanOptions selects which normalizations Clean applies.
type CleanOptions struct {
	KeepHTML       bool
	KeepURLs       bool
	KeepEmails     bool
	KeepWhitespace bool
}

// Clean normalizes raw text: strips HTML tags, URLs and e-mail
// addresses, and collapses whitespace.
func Clean(text string, opts CleanOptions) string {
	if text == "" {
		return ""
	}

	if !opts.KeepHTML {
		text = htmlTagRe.ReplaceAllString(text, "")
		text = html.UnescapeString(text)
	}
	if !opts.KeepURLs {
		text = urlRe.ReplaceAllString(text, "")
	}
	if !opts.KeepEmails {
		text = emailRe.ReplaceAllString(text, "")
	}
	if !opts.KeepWhitespace {
		text = whitespaceRe.ReplaceAllString(text, " ")
		text = strings.TrimSpace(text)
	}

	return text
}

// CleanDefault applies every normalization.
func CleanDefault(text string) string {
	return Clean(text, CleanOptions{})
}

// BuildMetadata fills the common document metadata fields from the
// text and the provided source information.
func BuildMetadata(text, source, url, title, category string) domain.Metadata {
	return domain.Metadata{
		Source:      source,
		URL:         url,
		Title:       title,
		Category:    category,
		TextLength:  len(text),
		WordCount:   len(strings.Fields(text)),
		ExtractedAt: time.Now().Format(time.RFC3339),
		ContentHash: ContentHash(text),
	}
}

// ContentHash returns the md5 hex digest used to deduplicate content.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {},
	"could": {}, "should": {}, "may": {}, "might": {}, "can": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

var wordRe = regexp.MustCompile(`\b[a-zA-Z]+\b`)

// Keywords extracts up to max keywords by word frequency, skipping
// stop words and words shorter than three characters.
func Keywords(text string, max int) []string {
	text = CleanDefault(strings.ToLower(text))
	freq := make(map[string]int)
	var order []string

	for _, w := range wordRe.FindAllString(text, -1) {
		if _, stop := stopWords[w]; stop || len(w) <= 2 {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	// Stable ranking: frequency desc, first occurrence breaks ties.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && freq[order[j]] > freq[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	if len(order) > max {
		order = order[:max]
	}
	return order
}

// JaccardSimilarity computes word-set overlap between two texts, in
// [0,1]. Two empty texts are considered identical.
func JaccardSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(CleanDefault(strings.ToLower(text))) {
		set[w] = struct{}{}
	}
	return set
}
