package advice

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/wearcast/pkg/errors"
)

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"fenced":       "```json\n{\"summary\":\"a\"}\n```",
		"bare fence":   "```\n{\"summary\":\"a\"}\n```",
		"prose around": "Here you go: {\"summary\":\"a\"} hope it helps!",
		"plain":        "  {\"summary\":\"a\"}  ",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := extractJSON(input)
			require.NoError(t, err)
			require.Equal(t, `{"summary":"a"}`, out)
		})
	}

	_, err := extractJSON("no braces here")
	require.Error(t, err)
	_, err = extractJSON("} backwards {")
	require.Error(t, err)
}

func TestParseAdvice(t *testing.T) {
	advice, err := parseAdvice("```json\n{\"summary\":\" Hot \",\"outfit\":\"Linen\",\"safety\":\"Shade\",\"extra\":\"ignored\"}\n```")
	require.NoError(t, err)
	require.Equal(t, Advice{Summary: "Hot", Outfit: "Linen", Safety: "Shade"}, advice)

	invalid := []string{
		`{"summary":"a","outfit":"b"}`,
		`{"summary":"a","outfit":"b","safety":3}`,
		`{"summary":"a","outfit":"b","safety":""}`,
		`{"summary":"a","outfit":["b"],"safety":"c"}`,
		`{"summary":"a","outfit":"b","safety":"c","meta":{"x":1}}`,
		`{"summary":"a",}`,
	}
	for _, input := range invalid {
		_, err := parseAdvice(input)
		require.Error(t, err, input)
		require.True(t, apperrors.IsCode(err, apperrors.CodeMalformedOutput), input)
	}
}
