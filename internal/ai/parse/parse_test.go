package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracketedJSON_ValidList(t *testing.T) {
	raw := BracketedJSON(`Here you go:
` + "```json" + `
["Migraine w/o Aura", "Tension Headache"]
` + "```")
	require.NotNil(t, raw)
	assert.JSONEq(t, `["Migraine w/o Aura","Tension Headache"]`, string(raw))
}

func TestBracketedJSON_ObjectWithSurroundingText(t *testing.T) {
	raw := BracketedJSON(`Sure! {"match_pct": 82, "reasoning": "fits"} hope that helps`)
	require.NotNil(t, raw)
	assert.JSONEq(t, `{"match_pct":82,"reasoning":"fits"}`, string(raw))
}

func TestBracketedJSON_NoBalancedSpan(t *testing.T) {
	assert.Nil(t, BracketedJSON("no json here at all"))
	assert.Nil(t, BracketedJSON("unclosed [bracket"))
	assert.Nil(t, BracketedJSON(""))
}

func TestBracketedJSON_InvalidSpan(t *testing.T) {
	assert.Nil(t, BracketedJSON(`[not, valid, json`))
	assert.Nil(t, BracketedJSON(`{"truncated": `))
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain list", `["a", "b"]`, []string{"a", "b"}},
		{"fenced list", "```json\n[\"x\"]\n```", []string{"x"}},
		{"empty list", `[]`, []string{}},
		{"garbage", `the patient has a headache`, []string{}},
		{"empty input", ``, []string{}},
		{"mixed types", `[1, "two"]`, []string{"1", "two"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StringList(tt.text))
		})
	}
}

func TestObject(t *testing.T) {
	var payload struct {
		MatchPct  int    `json:"match_pct"`
		Reasoning string `json:"reasoning"`
	}
	ok := Object("```json\n{\"match_pct\": 73, \"reasoning\": \"classic pattern\"}\n```", &payload)
	require.True(t, ok)
	assert.Equal(t, 73, payload.MatchPct)
	assert.Equal(t, "classic pattern", payload.Reasoning)

	assert.False(t, Object("no object", &payload))
	assert.False(t, Object(`["a list, not an object"]`, &payload))
}

func TestLabeledSection(t *testing.T) {
	doc := `=== CHIEF COMPLAINT ===
Recurring migraines

=== ONSET ===
3 weeks ago

=== SEVERITY ===
6/10`

	assert.Equal(t, "Recurring migraines", LabeledSection(doc, "CHIEF COMPLAINT"))
	assert.Equal(t, "3 weeks ago", LabeledSection(doc, "ONSET"))
	assert.Equal(t, "6/10", LabeledSection(doc, "SEVERITY"))
	assert.Equal(t, "", LabeledSection(doc, "MISSING"))
}

func TestBulletLines(t *testing.T) {
	text := `Findings:
- BP 140/90
• Photosensitive
not a bullet
  - indented bullet`

	assert.Equal(t, []string{"BP 140/90", "Photosensitive", "indented bullet"}, BulletLines(text))
	assert.Empty(t, BulletLines("no bullets"))
}

func TestPercentage(t *testing.T) {
	n, ok := Percentage("match_pct: 73")
	require.True(t, ok)
	assert.Equal(t, 73, n)

	n, ok = Percentage(`broken json with "Match_Pct": 82,`)
	require.True(t, ok)
	assert.Equal(t, 82, n)

	n, ok = Percentage("match pct: 45 given the history")
	require.True(t, ok)
	assert.Equal(t, 45, n)

	_, ok = Percentage("no percentage here")
	assert.False(t, ok)
}

func TestQuotedReasoning(t *testing.T) {
	got := QuotedReasoning(`reasoning: "Stress and sleep deprivation are triggers."`)
	assert.Equal(t, "Stress and sleep deprivation are triggers.", got)
	assert.Equal(t, "", QuotedReasoning("nothing quoted"))
}

func TestQuotedStrings(t *testing.T) {
	got := QuotedStrings(`Candidates: "Migraine without Aura" and "Tension Headache".`)
	assert.Equal(t, []string{"Migraine without Aura", "Tension Headache"}, got)

	// Too short and too long spans are skipped.
	assert.Empty(t, QuotedStrings(`"ab"`))
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "Moderate", StripQuotes(`  "Moderate"  `))
	assert.Equal(t, "3 days ago", StripQuotes(`'3 days ago'`))
	assert.Equal(t, "plain", StripQuotes("plain"))
	assert.Equal(t, "", StripQuotes(`""`))
}

func TestStripNumbering(t *testing.T) {
	assert.Equal(t, "Any drug interactions?", StripNumbering("1. Any drug interactions?"))
	assert.Equal(t, "Is BP concerning?", StripNumbering("2) Is BP concerning?"))
	assert.Equal(t, "Safe antibiotics?", StripNumbering("3- Safe antibiotics?"))
	assert.Equal(t, "No numbering", StripNumbering("No numbering"))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "plain", StripCodeFences("```\nplain\n```"))
}
