package lang

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdverbListSorted(t *testing.T) {
	require.True(t, sort.StringsAreSorted(Adverbs), "adverb table must stay sorted for binary search")
}

func TestAdverbsByPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   []string
	}{
		{"confu", []string{"confusedly"}},
		{"zzz", nil},
		{"zeal", []string{"zealously"}},
	}
	for _, tt := range tests {
		got := AdverbsByPrefix(tt.prefix)
		if tt.want == nil {
			assert.Empty(t, got, "prefix %q", tt.prefix)
			continue
		}
		assert.Equal(t, tt.want, got, "prefix %q", tt.prefix)
	}

	// Ambiguous prefixes return every match, in order and contiguous.
	co := AdverbsByPrefix("co")
	assert.Contains(t, co, "confusedly")
	assert.Contains(t, co, "coldly")
	assert.True(t, sort.StringsAreSorted(co))
	for i := 1; i < len(co); i++ {
		assert.True(t, co[i-1] < co[i])
	}
}

func TestIsAdverb(t *testing.T) {
	assert.True(t, IsAdverb("angrily"))
	assert.True(t, IsAdverb("miserably"))
	assert.False(t, IsAdverb("angril"))
	assert.False(t, IsAdverb("bird"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "", Join(nil))
	assert.Equal(t, "philip", Join([]string{"philip"}))
	assert.Equal(t, "philip and Kate", Join([]string{"philip", "Kate"}))
	assert.Equal(t, "philip, Kate, and the hairy cat",
		Join([]string{"philip", "Kate", "the hairy cat"}))
}

func TestPossessive(t *testing.T) {
	assert.Equal(t, "max's", Possessive("max"))
	assert.Equal(t, "Jones'", Possessive("Jones"))
}

func TestArticle(t *testing.T) {
	assert.Equal(t, "an apple", WithArticle("apple"))
	assert.Equal(t, "a sword", WithArticle("sword"))
}

func TestPluralize(t *testing.T) {
	tests := map[string]string{
		"sword": "swords",
		"box":   "boxes",
		"key":   "keys",
		"fairy": "fairies",
		"knife": "knives",
		"torch": "torches",
	}
	for in, want := range tests {
		assert.Equal(t, want, Pluralize(in), in)
	}
}

func TestParseGender(t *testing.T) {
	g, err := ParseGender("F")
	require.NoError(t, err)
	assert.Equal(t, Female, g)
	assert.Equal(t, "she", g.Subjective())
	assert.Equal(t, "her", g.Objective())
	assert.Equal(t, "her", g.Possessive())
	assert.Equal(t, "herself", g.Reflexive())

	_, err = ParseGender("zebra")
	assert.Error(t, err)
}

func TestParseYesNo(t *testing.T) {
	v, err := ParseYesNo("Yes")
	require.NoError(t, err)
	assert.True(t, v)
	v, err = ParseYesNo("nope")
	require.NoError(t, err)
	assert.False(t, v)
	_, err = ParseYesNo("maybe")
	assert.Error(t, err)
}

func TestStripStyles(t *testing.T) {
	assert.Equal(t, "Town square", StripStyles("<location>Town square</>"))
	assert.Equal(t, "a plain line", StripStyles("a plain line"))
	assert.Equal(t, "tabular", StripStyles("<monospaced>tabular</monospaced>"))
	// A lone < that is not a tag survives.
	assert.Equal(t, "2 < 3", StripStyles("2 < 3"))
}

func TestApplyAnsiStyles(t *testing.T) {
	assert.Equal(t, "\x1b[1mTown square\x1b[0m", ApplyAnsiStyles("<location>Town square</>"))
	assert.Equal(t, "tabular", ApplyAnsiStyles("<monospaced>tabular</monospaced>"))
	// Unknown open tags are dropped; the closer still resets.
	assert.Equal(t, "plain\x1b[0m", ApplyAnsiStyles("<wibble>plain</>"))
}
