package directive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSearchImageQuery(t *testing.T) {
	content := `Nasi Lemak is a must-try! [SEARCH_IMAGE: "Nasi Lemak with fried chicken and sambal"] You will love it.`

	res := Extract(content)

	require.Len(t, res.ImageQueries, 1)
	assert.Equal(t, "Nasi Lemak with fried chicken and sambal", res.ImageQueries[0])
	assert.True(t, res.ContainsImages())
	assert.NotContains(t, res.CleanedText, "SEARCH_IMAGE")
	assert.Equal(t, "Nasi Lemak is a must-try! You will love it.", res.CleanedText)
}

func TestExtractSingleQuotedQuery(t *testing.T) {
	res := Extract(`[SEARCH_IMAGE: 'Petronas Towers at night']`)

	require.Len(t, res.ImageQueries, 1)
	assert.Equal(t, "Petronas Towers at night", res.ImageQueries[0])
	assert.Empty(t, res.CleanedText)
}

func TestExtractAction(t *testing.T) {
	res := Extract(`Ready to book? [ACTION: Hotel, Grand Hyatt Kuala Lumpur]`)

	require.Len(t, res.Actions, 1)
	assert.Equal(t, "Hotel", res.Actions[0].Type)
	assert.Equal(t, "Grand Hyatt Kuala Lumpur", res.Actions[0].Name)
	assert.True(t, res.ContainsActions())
	assert.Equal(t, "Ready to book?", res.CleanedText)
}

func TestExtractPreservesDocumentOrder(t *testing.T) {
	content := `[SEARCH_IMAGE: "first"] middle [SEARCH_IMAGE: "second"]`

	res := Extract(content)

	assert.Equal(t, []string{"first", "second"}, res.ImageQueries)
}

func TestExtractLegacyRetrieveAppendedAfterSearch(t *testing.T) {
	content := `[IMAGE: RETRIEVE: "old style"] and [SEARCH_IMAGE: "new style"]`

	res := Extract(content)

	// SEARCH_IMAGE queries come first even when the legacy form appears earlier.
	assert.Equal(t, []string{"new style", "old style"}, res.ImageQueries)
	assert.Empty(t, res.LegacyImageRefs)
}

func TestExtractBareImageRef(t *testing.T) {
	res := Extract(`Look at this [IMAGE: https://example.com/pic.jpg] nice right?`)

	assert.Empty(t, res.ImageQueries)
	require.Len(t, res.LegacyImageRefs, 1)
	assert.Equal(t, "https://example.com/pic.jpg", res.LegacyImageRefs[0])
	assert.True(t, res.ContainsImages())
	assert.Equal(t, "Look at this nice right?", res.CleanedText)
}

func TestExtractKeepsDuplicates(t *testing.T) {
	content := `[SEARCH_IMAGE: "penang laksa"] or [SEARCH_IMAGE: "penang laksa"]`

	res := Extract(content)

	assert.Equal(t, []string{"penang laksa", "penang laksa"}, res.ImageQueries)
}

func TestExtractMalformedDirectivesLeftVerbatim(t *testing.T) {
	cases := []string{
		`[SEARCH_IMAGE: no quotes here]`,
		`[SEARCH_IMAGE: "unterminated]`,
		`[ACTION: OnlyOneField]`,
	}
	for _, content := range cases {
		res := Extract(content)
		assert.Empty(t, res.ImageQueries, content)
		assert.Empty(t, res.Actions, content)
		assert.Equal(t, content, res.CleanedText, content)
	}
}

func TestExtractNoDirectivesEqualsNormalize(t *testing.T) {
	content := "Hello   there!\n\n\n\nWelcome to   Malaysia."

	res := Extract(content)

	assert.Equal(t, Normalize(content), res.CleanedText)
	assert.False(t, res.ContainsImages())
	assert.False(t, res.ContainsActions())
}

func TestExtractIsIdempotentOnCleanedText(t *testing.T) {
	content := `Plan: [SEARCH_IMAGE: "batu caves"] then [ACTION: Itinerary, KL Day Trip] done.`

	first := Extract(content)
	second := Extract(first.CleanedText)

	assert.Equal(t, first.CleanedText, second.CleanedText)
	assert.Empty(t, second.ImageQueries)
	assert.Empty(t, second.Actions)
}

func TestExtractMixedDirectives(t *testing.T) {
	content := "Day 1: Petronas Towers [SEARCH_IMAGE: \"Petronas Towers Kuala Lumpur\"]\n" +
		"Stay at [ACTION: Hotel, Traders Hotel]\n\n" +
		"Day 2: Street food [SEARCH_IMAGE: \"Jalan Alor street food\"]"

	res := Extract(content)

	assert.Equal(t, []string{"Petronas Towers Kuala Lumpur", "Jalan Alor street food"}, res.ImageQueries)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, "Hotel", res.Actions[0].Type)
	assert.True(t, res.ContainsImages())
	assert.True(t, res.ContainsActions())
	assert.NotContains(t, res.CleanedText, "[")
}

func TestExtractEmptyContent(t *testing.T) {
	res := Extract("")

	assert.Empty(t, res.CleanedText)
	assert.NotNil(t, res.ImageQueries)
	assert.NotNil(t, res.Actions)
	assert.False(t, res.ContainsImages())
	assert.False(t, res.ContainsActions())
}

func TestExtractOversizedContentTruncated(t *testing.T) {
	directiveText := ` [SEARCH_IMAGE: "langkawi beach"]`
	content := strings.Repeat("a", maxContentLen) + directiveText

	res := Extract(content)

	// The directive sits past the size cap and is dropped with the tail.
	assert.Empty(t, res.ImageQueries)
	assert.Len(t, res.CleanedText, maxContentLen)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a b", Normalize("a \t b"))
	assert.Equal(t, "a\n\nb", Normalize("a\n\n\n\n\nb"))
	assert.Equal(t, "trimmed", Normalize("   trimmed   "))
}
