package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateShortStringUnchanged(t *testing.T) {
	assert.Equal(t, "BP 150/95", truncate("BP 150/95", 300))
}

func TestTruncateClipsLongString(t *testing.T) {
	long := strings.Repeat("a", 400)
	assert.Equal(t, strings.Repeat("a", 300), truncate(long, 300))
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	// "⚠" is 3 bytes; cutting inside it must back up to the boundary.
	s := "ab⚠cd"
	for max := 0; max <= len(s); max++ {
		got := truncate(s, max)
		assert.True(t, utf8.ValidString(got), "truncate(%q, %d) = %q splits a rune", s, max, got)
		assert.LessOrEqual(t, len(got), max)
	}
	assert.Equal(t, "ab", truncate(s, 3))
	assert.Equal(t, "ab", truncate(s, 4))
	assert.Equal(t, "ab⚠", truncate(s, 5))
}

func TestTruncateMultibyteDump(t *testing.T) {
	dump := strings.Repeat("⚠", 120)
	got := truncate(dump, 300)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("⚠", 100), got)
}
