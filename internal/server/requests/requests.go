package requests

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// HistoryMessage is one prior turn as the frontend stores it.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToSchemaMessages converts the frontend transcript to model messages,
// dropping empty turns and roles the model context cannot replay.
func ToSchemaMessages(history []HistoryMessage) []*schema.Message {
	if len(history) == 0 {
		return nil
	}
	msgs := make([]*schema.Message, 0, len(history))
	for _, h := range history {
		content := strings.TrimSpace(h.Content)
		if content == "" {
			continue
		}
		switch h.Role {
		case "user":
			msgs = append(msgs, schema.UserMessage(content))
		case "assistant", "model":
			msgs = append(msgs, schema.AssistantMessage(content, nil))
		}
	}
	return msgs
}

// ChatRequest is the payload for /chat and /chat-stream.
type ChatRequest struct {
	Message             string           `json:"message" binding:"required"`
	Temperature         *float32         `json:"temperature,omitempty"`
	MaxTokens           *int             `json:"max_tokens,omitempty"`
	ConversationHistory []HistoryMessage `json:"conversation_history,omitempty"`
	UserSessionID       string           `json:"user_session_id,omitempty"`
}

// ImageSearchRequest is the payload for /image-search.
type ImageSearchRequest struct {
	Query      string `json:"query" binding:"required"`
	MaxResults int    `json:"max_results,omitempty"`
}

// TrackDownloadRequest is the payload for /track-image-download.
type TrackDownloadRequest struct {
	DownloadURL string `json:"download_url"`
}

// ChatWithImageRequest is the payload for /chat-with-image. ImageData is a
// base64-encoded JPEG.
type ChatWithImageRequest struct {
	Message             string           `json:"message" binding:"required"`
	ImageData           string           `json:"image_data,omitempty"`
	ImageID             string           `json:"image_id,omitempty"`
	Temperature         *float32         `json:"temperature,omitempty"`
	MaxTokens           *int             `json:"max_tokens,omitempty"`
	ConversationHistory []HistoryMessage `json:"conversation_history,omitempty"`
	UserSessionID       string           `json:"user_session_id,omitempty"`
}
