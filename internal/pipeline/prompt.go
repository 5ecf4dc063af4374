package pipeline

import "strings"

// systemPrompt fixes the model's role and output-format contract.
const systemPrompt = `You are a product strategist who finds unmet user needs in app store reviews. You respond with valid JSON only: no markdown, no commentary, no code fences.`

// userPromptHeader is the fixed instruction template placed ahead of the
// review corpus.
const userPromptHeader = `Analyze the app store reviews below and identify the most important unmet user needs.

Return a JSON object with exactly this structure:
{
  "themes": [
    {
      "title": "short name for the unmet need",
      "summary": "2-3 sentence explanation of the need and why users feel it",
      "quote": "a verbatim quote from one of the reviews supporting it",
      "impact": "High" | "Medium" | "Low",
      "feature": "a concrete feature suggestion that would address it"
    }
  ],
  "prioritizedThemes": [
    { "title": "theme title", "impact": "High" | "Medium" | "Low" }
  ]
}

Rules:
- Identify 3 to 5 themes.
- impact must be exactly "High", "Medium", or "Low".
- quote must be copied verbatim from the reviews, never paraphrased.
- prioritizedThemes lists every theme ordered High to Low.
- Respond ONLY with the JSON object.

Reviews (most recent first):`

// BuildPrompt assembles the system and user messages for the completion
// call. It is pure: identical blocks always yield identical strings.
func BuildPrompt(blocks []string) (system, user string) {
	var b strings.Builder
	b.WriteString(userPromptHeader)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	return systemPrompt, b.String()
}
