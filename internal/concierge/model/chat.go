package model

import (
	"github.com/cloudwego/eino/schema"

	"github.com/malaysia-ai/concierge-server/internal/concierge/directive"
	"github.com/malaysia-ai/concierge-server/internal/concierge/phase"
)

// ChatInput represents one user turn entering the response graph.
// History is optional: when the caller supplies its own transcript it is
// used as-is (stateless mode); otherwise the persisted conversation for
// ConversationID is loaded instead.
type ChatInput struct {
	ConversationID string            `json:"conversation_id"`
	Message        string            `json:"message"`
	History        []*schema.Message `json:"history,omitempty"`
}

// ChatResult is the structured outcome of one exchange: the cleaned reply
// plus everything the extractor and classifier derived from it.
type ChatResult struct {
	Response        string             `json:"response"`
	Phase           phase.Phase        `json:"phase"`
	ImageQueries    []string           `json:"image_queries"`
	Actions         []directive.Action `json:"actions"`
	ContainsImages  bool               `json:"contains_images"`
	ContainsActions bool               `json:"contains_actions"`
	ModelUsed       string             `json:"model_used"`
}
