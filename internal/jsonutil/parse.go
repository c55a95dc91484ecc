// Package jsonutil extracts JSON payloads from model completions that may be
// wrapped in markdown code fences or surrounded by prose, despite the prompt
// asking for JSON only.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripMarkdownFences removes a leading ``` or ```json fence line and the
// matching trailing ``` line. The fence is matched as a whole-line token, so
// payloads that merely contain backtick characters are left intact. Calling
// it on already-unwrapped text is a no-op.
func StripMarkdownFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 3 {
		return text
	}

	end := -1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	if end <= 0 {
		return text
	}

	return strings.Join(lines[1:end], "\n")
}

// ExtractJSON isolates the outermost JSON object or array from text that may
// carry surrounding non-JSON content.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON content found")
	}

	start := objIdx
	closer := "}"
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start = arrIdx
		closer = "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("no closing %s found", closer)
	}

	return text[:end+1], nil
}

// Parse strips fences, isolates the JSON content and unmarshals it into v.
func Parse(raw string, v interface{}) error {
	text := StripMarkdownFences(raw)

	jsonStr, err := ExtractJSON(text)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		preview := jsonStr
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return nil
}
