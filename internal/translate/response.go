package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// parseModelResponse extracts translation results from raw LLM output and
// verifies the count matches the request.
func parseModelResponse(text string, expected int) ([]Result, error) {
	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}

	text = cleanJSONResponse(text)
	results, err := extractResults(text)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse response: %w (response: %s)",
			err, truncate(text, 200),
		)
	}

	if len(results) != expected {
		return nil, fmt.Errorf("expected %d results, got %d", expected, len(results))
	}
	return results, nil
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixInvalidEscapes escapes sequences like \N that are valid in subtitle
// text but not in JSON, so the decoder can keep the literal backslash.
func fixInvalidEscapes(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			switch next := s[i+1]; next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				out.WriteByte(s[i])
				out.WriteByte(next)
			default:
				out.WriteString("\\\\")
				out.WriteByte(next)
			}
			i += 2
			continue
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String()
}

// extractResults scans for the first decodable JSON value that yields a
// non-empty result set, either as a bare array or under a wrapper key.
func extractResults(text string) ([]Result, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if results, ok := tryExtract(raw); ok && len(results) > 0 {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

func tryExtract(raw json.RawMessage) ([]Result, bool) {
	var results []Result
	if err := json.Unmarshal(raw, &results); err == nil && anyText(results) {
		return results, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range []string{"results", "translations", "data", "items"} {
		if field, ok := wrapper[key]; ok {
			var fieldResults []Result
			if err := json.Unmarshal(field, &fieldResults); err == nil && anyText(fieldResults) {
				return fieldResults, true
			}
		}
	}

	for _, field := range wrapper {
		var fieldResults []Result
		if err := json.Unmarshal(field, &fieldResults); err == nil && anyText(fieldResults) {
			return fieldResults, true
		}
	}
	return nil, false
}

func anyText(results []Result) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
