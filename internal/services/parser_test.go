package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimensionResult_PlainJSON(t *testing.T) {
	result, err := ParseDimensionResult(`{"score": 0.75, "justification": "three of four skills match"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.75, result.Score)
	assert.Equal(t, "three of four skills match", result.Justification)
}

func TestParseDimensionResult_TolerantGrammar(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		score float64
	}{
		{
			name:  "markdown fence",
			raw:   "```json\n{\"score\": 0.5, \"justification\": \"partial\"}\n```",
			score: 0.5,
		},
		{
			name:  "bare fence",
			raw:   "```\n{\"score\": 1, \"justification\": \"full\"}\n```",
			score: 1,
		},
		{
			name:  "leading json label",
			raw:   "json\n{\"score\": 0.3, \"justification\": \"weak\"}",
			score: 0.3,
		},
		{
			name:  "numeric string score",
			raw:   `{"score": "0.42", "justification": "as string"}`,
			score: 0.42,
		},
		{
			name:  "legacy justification key",
			raw:   `{"score": 0.9, "short_justification": "close match"}`,
			score: 0.9,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseDimensionResult(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.score, result.Score)
			assert.NotEmpty(t, result.Justification)
		})
	}
}

func TestParseDimensionResult_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "prose", raw: "the candidate looks fine to me"},
		{name: "missing score", raw: `{"justification": "no score"}`},
		{name: "null score", raw: `{"score": null, "justification": "x"}`},
		{name: "non-numeric string score", raw: `{"score": "high", "justification": "x"}`},
		{name: "truncated json", raw: `{"score": 0.5,`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDimensionResult(tc.raw)
			require.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestParseDimensionResult_ClampsOutOfRange(t *testing.T) {
	result, err := ParseDimensionResult(`{"score": 1.7, "justification": "overshoot"}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Score)

	result, err = ParseDimensionResult(`{"score": -0.2, "justification": "undershoot"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
}
