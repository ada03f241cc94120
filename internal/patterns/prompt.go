package patterns

import (
	"fmt"
	"strings"

	"github.com/kairosjournal/kairos-backend/internal/entries"
)

const analysisSystemPrompt = `You are an expert psychologist and data scientist specializing in personal growth and behavioral analysis.

Your task is to analyze journal entries and identify deep, non-obvious patterns. Look beyond surface-level observations to find meaningful connections between:
- Emotional states and their triggers
- Temporal patterns (day of week, time-based cycles)
- Behavioral loops and habits
- Cognitive patterns (recurring thoughts, beliefs, mental models)

Focus on insights that would genuinely help the person understand themselves better. Avoid generic or obvious observations.

You must return 3 to 5 patterns in strict JSON format. Each pattern must have:
- title: A clear, specific title (max 60 characters)
- description: A detailed explanation of the pattern and its significance (2-3 sentences)
- confidence: 'high', 'medium', or 'low' based on how clear the pattern is
- category: 'emotional', 'temporal', 'behavioral', or 'cognitive'`

// BuildPrompt renders the user prompt for a batch of entries. Input is
// newest-first (as fetched); output lists them oldest to newest for
// chronological coherence. Rendering is deterministic for a given batch.
func BuildPrompt(recent []entries.Entry) string {
	blocks := make([]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		date := e.CreatedAt.UTC().Format("Mon, Jan 2, 2006")
		block := fmt.Sprintf("Entry %d (%s):\n%s", len(recent)-i, date, e.EntryText)
		if e.GuidedResponse != "" {
			block += "\n\nReflection: " + e.GuidedResponse
		}
		blocks = append(blocks, block)
	}

	return fmt.Sprintf(`Analyze these journal entries and identify distinct patterns:

%s

Return your analysis as a JSON object with this exact structure:
{
  "patterns": [
    {
      "title": "Pattern title here",
      "description": "Detailed description here",
      "confidence": "high",
      "category": "emotional"
    }
  ]
}

Here is the JSON:`, strings.Join(blocks, "\n\n---\n\n"))
}
