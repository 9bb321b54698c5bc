package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldMatch_ExactMatch(t *testing.T) {
	assert.Equal(t, 1.0, FieldMatch("Persistent headaches", "Persistent headaches"))
}

func TestFieldMatch_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, FieldMatch("Chest Pain", "chest pain"))
}

func TestFieldMatch_PartialOverlap(t *testing.T) {
	// "severe chest pain" vs "chest pain": intersection 2, union 3.
	score := FieldMatch("severe chest pain", "chest pain")
	assert.InDelta(t, 2.0/3.0, score, 0.001)
}

func TestFieldMatch_StripsPunctuation(t *testing.T) {
	assert.Equal(t, 1.0, FieldMatch("Three days ago.", "three days ago"))
}

func TestFieldMatch_NoOverlap(t *testing.T) {
	assert.Equal(t, 0.0, FieldMatch("migraine", "fractured wrist"))
}

func TestFieldMatch_EmptyExpectedEmptyGot(t *testing.T) {
	assert.Equal(t, 1.0, FieldMatch("", ""))
}

func TestFieldMatch_EmptyMismatch(t *testing.T) {
	assert.Equal(t, 0.0, FieldMatch("fever", ""))
	assert.Equal(t, 0.0, FieldMatch("", "fever"))
}

func TestFindingsF1_BothEmpty(t *testing.T) {
	assert.Equal(t, 1.0, FindingsF1(nil, nil))
}

func TestFindingsF1_OneEmpty(t *testing.T) {
	assert.Equal(t, 0.0, FindingsF1([]string{"BP 150/95"}, nil))
	assert.Equal(t, 0.0, FindingsF1(nil, []string{"BP 150/95"}))
}

func TestFindingsF1_PerfectMatch(t *testing.T) {
	expected := []string{"Elevated BP 150/95", "Productive cough"}
	got := []string{"elevated bp 150/95", "productive cough"}
	assert.Equal(t, 1.0, FindingsF1(expected, got))
}

func TestFindingsF1_PartialMatch(t *testing.T) {
	expected := []string{"Elevated blood pressure", "Productive cough"}
	got := []string{"elevated blood pressure", "unrelated finding here"}
	// precision 1/2, recall 1/2, F1 = 0.5
	assert.InDelta(t, 0.5, FindingsF1(expected, got), 0.001)
}

func TestFindingsF1_BelowThresholdDoesNotMatch(t *testing.T) {
	// Single shared word out of many keeps the overlap under 0.5.
	expected := []string{"mild intermittent wheezing on exertion"}
	got := []string{"wheezing"}
	assert.Equal(t, 0.0, FindingsF1(expected, got))
}
