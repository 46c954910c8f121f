package alerts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ab…", truncate("abcdef", 2))
}

func TestTruncate_SpanishInputStaysValidUTF8(t *testing.T) {
	// Cut point lands inside the two-byte "ó" when slicing by bytes.
	msg := strings.Repeat("x", 4) + "detención mañana"
	for max := 1; max < utf8.RuneCountInString(msg); max++ {
		out := truncate(msg, max)
		assert.True(t, utf8.ValidString(out), "max=%d produced invalid UTF-8: %q", max, out)
		assert.Equal(t, max, utf8.RuneCountInString(strings.TrimSuffix(out, "…")))
	}
}
