package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/marktron/app-gaps/internal/apperr"
	"github.com/marktron/app-gaps/internal/model"
	"github.com/marktron/app-gaps/pkg/anthropic"
)

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// rawAnalysis defers field decoding so a missing or malformed array can
// degrade to empty instead of failing the whole parse.
type rawAnalysis struct {
	Themes            json.RawMessage `json:"themes"`
	PrioritizedThemes json.RawMessage `json:"prioritizedThemes"`
}

// ParseAnalysis coerces the model's raw completion text into the themes
// schema. Unparsable content is a terminal validation failure; absent or
// non-array fields normalize to empty slices. Individual themes get no
// deeper per-field validation and pass through unchanged.
func ParseAnalysis(raw string) (*model.AnalysisResult, error) {
	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &parsed); err != nil {
		return nil, apperr.ValidationWrap(err, "failed to parse analysis response")
	}

	result := &model.AnalysisResult{
		Themes:            []model.Theme{},
		PrioritizedThemes: []model.PrioritizedTheme{},
	}

	if len(parsed.Themes) > 0 {
		var themes []model.Theme
		if err := json.Unmarshal(parsed.Themes, &themes); err == nil && themes != nil {
			result.Themes = themes
		}
	}
	if len(parsed.PrioritizedThemes) > 0 {
		var prioritized []model.PrioritizedTheme
		if err := json.Unmarshal(parsed.PrioritizedThemes, &prioritized); err == nil && prioritized != nil {
			result.PrioritizedThemes = prioritized
		}
	}

	return result, nil
}
