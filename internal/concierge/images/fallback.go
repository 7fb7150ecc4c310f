package images

import (
	"fmt"
	"strings"

	"github.com/malaysia-ai/concierge-server/internal/metrics"
	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

// curatedImages maps location keywords to known-good destination photos so
// the chat flow keeps working when the live provider is unreachable.
var curatedImages = map[string][]string{
	"kuala lumpur": {
		"https://images.unsplash.com/photo-1596422846543-75c6fc197f07?ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D&auto=format&fit=crop&w=1000&q=80",
		"https://images.unsplash.com/photo-1549055141-4670d75ba8a9?ixlib=rb-4.0.3&auto=format&fit=crop&w=1000&q=80",
	},
	"penang": {
		"https://images.unsplash.com/photo-1570633514586-e0bcc8c062b3?ixlib=rb-4.0.3&auto=format&fit=crop&w=1000&q=80",
		"https://images.unsplash.com/photo-1572279863518-9ede28527d93?ixlib=rb-4.0.3&auto=format&fit=crop&w=1000&q=80",
	},
	"malaysia": {
		"https://images.unsplash.com/photo-1549055141-4670d75ba8a9?ixlib=rb-4.0.3&auto=format&fit=crop&w=1000&q=80",
		"https://images.unsplash.com/photo-1596422846543-75c6fc197f07?ixlib=rb-4.0.3&auto=format&fit=crop&w=1000&q=80",
	},
}

// curatedOrder keeps map iteration deterministic.
var curatedOrder = []string{"kuala lumpur", "penang", "malaysia"}

// FallbackImages returns curated destination images matched against the
// query; used whenever the live image provider is unavailable.
func FallbackImages(query string) []ImageResult {
	queryLower := strings.ToLower(query)
	var selected []string

	for _, location := range curatedOrder {
		if strings.Contains(queryLower, location) {
			selected = append(selected, curatedImages[location][:2]...)
		}
	}

	// Default to general Malaysia images if no specific match
	if len(selected) == 0 {
		selected = curatedImages["malaysia"][:2]
	}

	if len(selected) > 3 {
		selected = selected[:3]
	}

	results := make([]ImageResult, 0, len(selected))
	for _, url := range selected {
		results = append(results, ImageResult{
			URL:         url,
			Title:       fmt.Sprintf("Malaysia Tourism - %s", query),
			Description: "Beautiful destination in Malaysia",
			Source:      "Curated Collection",
		})
	}

	metrics.RecordImageFallback()
	logx.Info().
		Int("count", len(results)).
		Str("query", query).
		Msg("using curated fallback images")
	return results
}
