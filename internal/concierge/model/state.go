package model

import (
	"github.com/cloudwego/eino/schema"

	"github.com/malaysia-ai/concierge-server/internal/concierge/phase"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
type AppState struct {
	ConversationID string
	Stateless      bool              // history came with the request; skip persistence
	History        []*schema.Message // mutated only inside Eino state handlers
	Phase          phase.Phase       // classified before the current turn is appended

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}
