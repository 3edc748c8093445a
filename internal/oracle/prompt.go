package oracle

import (
	"fmt"
	"strings"
)

// The response contract. The validator enforces exactly this shape; swapping
// oracle vendors means reimplementing this package against the same keys.
const analysisSystemPrompt = `You are a customer feedback analysis engine.
Analyze the feedback text and respond with ONLY a JSON object, no prose and no
markdown, using exactly these keys:

{
  "overall_sentiment": {"score": -1.0 to 1.0, "label": "very_negative|negative|neutral|positive|very_positive", "confidence": 0.0 to 1.0},
  "aspect_sentiments": {"<aspect>": {"score": -1.0 to 1.0, "mention_count": int}},
  "emotions": {"<emotion>": 0.0 to 1.0},
  "intent": {"type": "complaint|compliment|suggestion|question|request|unknown", "confidence": 0.0 to 1.0},
  "urgency": {"level": "low|medium|high|critical", "indicators": ["..."]},
  "key_phrases": ["3-5 short phrases"],
  "entities": {"products": [], "features": [], "issues": []}
}`

func buildAnalysisPrompt(text, language string, flags RequestFlags) string {
	var b strings.Builder

	if language != "" {
		fmt.Fprintf(&b, "The feedback is written in language %q.\n", language)
	}

	var skip []string
	if !flags.DetectAspects {
		skip = append(skip, "aspect_sentiments")
	}
	if !flags.DetectEmotions {
		skip = append(skip, "emotions")
	}
	if !flags.DetectIntent {
		skip = append(skip, "intent")
	}
	if !flags.ExtractKeyPhrases {
		skip = append(skip, "key_phrases")
	}
	if len(skip) > 0 {
		fmt.Fprintf(&b, "You may leave these keys empty: %s.\n", strings.Join(skip, ", "))
	}

	b.WriteString("\nFeedback:\n")
	b.WriteString(text)

	return b.String()
}
