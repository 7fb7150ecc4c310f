package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/malaysia-ai/concierge-server/internal/concierge/model"
)

// MessagesManager mediates between the response graph and the conversation
// store. A conversation is "stateless" when the caller ships its own
// transcript or no conversation ID is present; nothing is persisted then.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	contextMaxTurns  int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		contextMaxTurns:  config.Context.MaxTurns,
	}
}

// ResolveHistory returns the prior turns for this exchange. Caller-supplied
// history always wins; otherwise the persisted transcript is loaded. The
// second return value reports stateless mode.
func (cm *MessagesManager) ResolveHistory(ctx context.Context, conversationID string, supplied []*schema.Message) ([]*schema.Message, bool, error) {
	if len(supplied) > 0 {
		return supplied, true, nil
	}
	if strings.TrimSpace(conversationID) == "" {
		return []*schema.Message{}, true, nil
	}
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, false, err
	}
	return history.Messages, false, nil
}

// SaveUserMessage persists the current user turn.
func (cm *MessagesManager) SaveUserMessage(ctx context.Context, conversationID string, content string) error {
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(content))
}

// SaveResponse persists the cleaned assistant reply.
func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, conversationID, assistantMsg)
}

// BuildModelContext assembles the message list sent to the response model:
// persona system prompt, a short priming exchange so the model settles into
// character, the trailing window of the history, and the current message.
func (cm *MessagesManager) BuildModelContext(systemPrompt, primerAck string, history []*schema.Message, currentMessage string) []*schema.Message {
	recent := trimTail(history, cm.contextMaxTurns)

	messages := make([]*schema.Message, 0, len(recent)+3)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	if primerAck != "" {
		messages = append(messages, schema.AssistantMessage(primerAck, nil))
	}
	for _, msg := range recent {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case schema.User, schema.Assistant:
			messages = append(messages, msg)
		}
	}
	messages = append(messages, schema.UserMessage(currentMessage))
	return messages
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
