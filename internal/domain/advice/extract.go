package advice

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/yanqian/wearcast/pkg/errors"
)

var (
	openingFence = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	closingFence = regexp.MustCompile("\\s*```$")
)

// extractJSON trims Markdown fences and any prose around the outermost {...} block.
func extractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	text = openingFence.ReplaceAllString(text, "")
	text = closingFence.ReplaceAllString(text, "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", errors.New("no json object found")
	}
	return text[start : end+1], nil
}

// parseAdvice validates provider output against the three-field schema.
func parseAdvice(raw string) (Advice, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return Advice{}, apperrors.Wrap(apperrors.CodeMalformedOutput, "extract advice", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Advice{}, apperrors.Wrap(apperrors.CodeMalformedOutput, "decode advice", err)
	}
	for name, value := range fields {
		trimmed := strings.TrimSpace(string(value))
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			return Advice{}, apperrors.Wrap(apperrors.CodeMalformedOutput, fmt.Sprintf("field %q must not be nested", name), nil)
		}
	}

	var out Advice
	for name, target := range map[string]*string{"summary": &out.Summary, "outfit": &out.Outfit, "safety": &out.Safety} {
		value, ok := fields[name]
		if !ok {
			return Advice{}, apperrors.Wrap(apperrors.CodeMalformedOutput, fmt.Sprintf("field %q missing", name), nil)
		}
		if err := json.Unmarshal(value, target); err != nil {
			return Advice{}, apperrors.Wrap(apperrors.CodeMalformedOutput, fmt.Sprintf("field %q must be a string", name), err)
		}
		*target = strings.TrimSpace(*target)
		if *target == "" {
			return Advice{}, apperrors.Wrap(apperrors.CodeMalformedOutput, fmt.Sprintf("field %q empty", name), nil)
		}
	}
	return out, nil
}
