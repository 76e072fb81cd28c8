package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// unmarshalResponse parses a JSON object out of a model response. Models
// asked for JSON still wrap it in markdown fences or prose often enough that
// the parser locates the outermost object instead of trusting the raw text.
func unmarshalResponse(raw string, v any) error {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if i := strings.LastIndex(cleaned, "```"); i >= 0 {
			cleaned = cleaned[:i]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
