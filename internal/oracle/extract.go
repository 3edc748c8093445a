package oracle

import (
	"encoding/json"
	"strings"
)

// ExtractJSON locates the JSON object inside a free-form oracle reply. Models
// routinely wrap JSON in markdown fences or prefix it with a bare "json"
// token; both are stripped before taking the span from the first '{' to the
// last '}' inclusive.
func ExtractJSON(reply string) (RawResult, error) {
	cleaned := strings.ReplaceAll(reply, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if rest, ok := strings.CutPrefix(cleaned, "json"); ok {
		cleaned = strings.TrimSpace(rest)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrMalformedResponse
	}

	var result RawResult
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &result); err != nil {
		return nil, ErrMalformedResponse
	}

	return result, nil
}
