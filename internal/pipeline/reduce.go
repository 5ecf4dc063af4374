package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/marktron/app-gaps/internal/config"
	"github.com/marktron/app-gaps/pkg/appstore"
)

// charsPerToken is the deliberate cheap heuristic for sizing the corpus:
// one estimated token per four characters. Changing it changes truncation
// points, so it stays fixed for reproducibility.
const charsPerToken = 4

// truncationMarker is appended to a review cut at the per-review cap.
const truncationMarker = "..."

// estimateTokens approximates the token count of s.
func estimateTokens(s string) int {
	return (len(s) + charsPerToken - 1) / charsPerToken
}

// flatten renders one review into the fixed textual shape embedded in the
// prompt. Reviews with neither title nor body flatten to "".
func flatten(r appstore.Review) string {
	title := strings.TrimSpace(r.Title)
	body := strings.TrimSpace(r.Body)
	if title == "" && body == "" {
		return ""
	}
	return fmt.Sprintf("[%s/5] %s: %s", r.Rating, title, body)
}

// Reduce flattens reviews into prompt-ready text blocks under a two-level
// token budget: each block is truncated to the per-review cap, then whole
// blocks are dropped from the tail until the aggregate cap is met. Order
// is fetch order (most recent first) and is preserved. An empty result is
// a valid outcome, not an error.
func Reduce(reviews []appstore.Review, cfg config.ReducerConfig) []string {
	blocks := make([]string, 0, min(len(reviews), cfg.MaxReviews))
	for _, r := range reviews {
		if len(blocks) == cfg.MaxReviews {
			break
		}
		text := flatten(r)
		if text == "" {
			continue
		}
		blocks = append(blocks, truncate(text, cfg.MaxReviewTokens))
	}

	total := 0
	for _, b := range blocks {
		total += estimateTokens(b)
	}
	for total > cfg.MaxTotalTokens && len(blocks) > 0 {
		total -= estimateTokens(blocks[len(blocks)-1])
		blocks = blocks[:len(blocks)-1]
	}

	return blocks
}

// truncate cuts text to maxTokens estimated tokens, appending the
// truncation marker when anything was removed. The cut never splits a
// UTF-8 sequence.
func truncate(text string, maxTokens int) string {
	maxChars := maxTokens * charsPerToken
	if len(text) <= maxChars {
		return text
	}
	cut := text[:maxChars]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + truncationMarker
}
