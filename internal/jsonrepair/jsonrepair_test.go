package jsonrepair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		strategy string
		title    string
	}{
		{
			name:     "plain object",
			text:     `  {"title": "Reading Labels"}  `,
			strategy: "direct",
			title:    "Reading Labels",
		},
		{
			name:     "double encoded",
			text:     `"{\"title\": \"Budgeting\"}"`,
			strategy: "direct",
			title:    "Budgeting",
		},
		{
			name:     "json fence",
			text:     "Here you go:\n```json\n{\"title\": \"Food Safety\"}\n```\nEnjoy!",
			strategy: "fenced",
			title:    "Food Safety",
		},
		{
			name:     "bare fence",
			text:     "```\n{\"title\": \"Serving Sizes\"}\n```",
			strategy: "fenced",
			title:    "Serving Sizes",
		},
		{
			name:     "object in prose",
			text:     `Sure! {"title": "Sugar {and} Sweeteners", "n": {"x": 1}} Hope this helps.`,
			strategy: "balanced_braces",
			title:    "Sugar {and} Sweeteners",
		},
		{
			name:     "skips invalid first block",
			text:     `{not json} then {"title": "Labeling Rules"}`,
			strategy: "balanced_braces",
			title:    "Labeling Rules",
		},
		{
			name:     "smart quotes",
			text:     "{“title”: “Misleading Claims”}",
			strategy: "quote_repair",
			title:    "Misleading Claims",
		},
		{
			name:     "single quotes and trailing comma",
			text:     `{'title': 'Nutrition Basics', 'notes': ['it's fine',],}`,
			strategy: "quote_repair",
			title:    "Nutrition Basics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, strategy, ok := Parse(tt.text)
			require.True(t, ok, "expected %q to parse", tt.text)
			assert.Equal(t, tt.strategy, strategy)
			assert.Equal(t, tt.title, obj["title"])
		})
	}
}

func TestParseBalanced_SkipsEmptyObjectInProse(t *testing.T) {
	text := `Use {} as a placeholder. Lesson: {"title": "Fibre", "sections": []}`
	obj, name, ok := ParseWith(text, []Strategy{BalancedBraces})
	require.True(t, ok)
	assert.Equal(t, "balanced_braces", name)
	assert.Equal(t, "Fibre", obj["title"])

	only, _, ok := ParseWith("Nothing to add: {}", []Strategy{BalancedBraces})
	require.True(t, ok, "a lone empty object still parses")
	assert.Empty(t, only)
}

func TestParse_Failure(t *testing.T) {
	for _, text := range []string{
		"",
		"no json here at all",
		`[1, 2, 3]`,
		`{"unterminated": `,
	} {
		_, _, ok := Parse(text)
		assert.False(t, ok, "expected %q to fail", text)
	}
}

func TestRepair_LeavesApostrophesInDoubleQuotes(t *testing.T) {
	in := `{"note": "don't panic", 'k': 'v'}`
	assert.Equal(t, `{"note": "don't panic", "k": "v"}`, Repair(in))
}

func TestRepair_ApostropheInsideSingleQuotes(t *testing.T) {
	obj, _, ok := Parse(`{'tip': 'it's okay to snack'}`)
	require.True(t, ok)
	assert.Equal(t, "it's okay to snack", obj["tip"])
}

func TestParseWith_Order(t *testing.T) {
	text := "```json\n{\"a\": 1}\n```"
	_, name, ok := ParseWith(text, []Strategy{BalancedBraces, Fenced})
	require.True(t, ok)
	assert.Equal(t, "balanced_braces", name)
}

func TestMatchBrace(t *testing.T) {
	s := `{"a": "}", "b": {"c": "\"}"}}`
	assert.Equal(t, len(s)-1, matchBrace(s, 0))
	assert.Equal(t, -1, matchBrace(`{"a": 1`, 0))
}
