package images

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackImagesLocationMatch(t *testing.T) {
	results := FallbackImages("street food in Kuala Lumpur")

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "Curated Collection", r.Source)
		assert.Contains(t, r.Title, "street food in Kuala Lumpur")
		assert.True(t, strings.HasPrefix(r.URL, "https://images.unsplash.com/"))
	}
	assert.Equal(t, curatedImages["kuala lumpur"][0], results[0].URL)
}

func TestFallbackImagesDefaultSet(t *testing.T) {
	results := FallbackImages("something with no location")

	require.Len(t, results, 2)
	assert.Equal(t, curatedImages["malaysia"][0], results[0].URL)
	assert.Equal(t, curatedImages["malaysia"][1], results[1].URL)
}

func TestFallbackImagesCappedAtThree(t *testing.T) {
	// Query matching every curated location still yields at most 3 images.
	results := FallbackImages("kuala lumpur penang malaysia trip")

	assert.Len(t, results, 3)
}

func TestEnhanceQueryAddsRegionAndTourism(t *testing.T) {
	assert.Equal(t, "street food Malaysia tourism", EnhanceQuery("Street Food"))
}

func TestEnhanceQueryKeepsExistingRegion(t *testing.T) {
	enhanced := EnhanceQuery("Penang beaches")

	assert.Equal(t, "penang beaches tourism", enhanced)
}

func TestEnhanceQueryKeepsExistingTourismContext(t *testing.T) {
	enhanced := EnhanceQuery("kuala lumpur travel guide")

	assert.Equal(t, "kuala lumpur travel guide", enhanced)
}
