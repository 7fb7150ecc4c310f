package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/malaysia-ai/concierge-server/internal/concierge/directive"
	"github.com/malaysia-ai/concierge-server/internal/concierge/graph/conversations"
	"github.com/malaysia-ai/concierge-server/internal/concierge/graph/prompts"
	"github.com/malaysia-ai/concierge-server/internal/concierge/model"
	"github.com/malaysia-ai/concierge-server/internal/concierge/phase"
	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

// Graph node names.
const (
	NodeInputConverter    = "InputConverter"
	NodeResponseChatModel = "ResponseChatModel"
	NodeDirectiveParser   = "DirectiveParser"
)

// NewInputConverterPreHandler creates the pre-handler for InputConverter node
func NewInputConverterPreHandler() func(context.Context, model.ChatInput, *model.AppState) (model.ChatInput, error) {
	return func(ctx context.Context, in model.ChatInput, s *model.AppState) (model.ChatInput, error) {
		if s.ConversationID == "" {
			s.ConversationID = in.ConversationID
		}
		// Reset accumulated total cost for each new query
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputConverterNode creates the InputConverter node. It resolves the
// conversation history, classifies the phase against the prior turns only,
// persists the user turn, and assembles the model context.
func NewInputConverterNode(
	mm *conversations.MessagesManager,
	promptCfg model.PersonaPromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.ChatInput) ([]*schema.Message, error) {
		history, stateless, err := mm.ResolveHistory(ctx, input.ConversationID, input.History)
		if err != nil {
			return nil, fmt.Errorf("resolve conversation history: %w", err)
		}

		// Phase is derived before the current message joins the history.
		currentPhase := phase.Classify(history, input.Message)

		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			state.Stateless = stateless
			state.History = history
			state.Phase = currentPhase
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().
			Str("conversation_id", input.ConversationID).
			Str("phase", string(currentPhase)).
			Int("history_turns", len(history)).
			Bool("stateless", stateless).
			Msg("conversation phase classified")

		if !stateless {
			if err := mm.SaveUserMessage(ctx, input.ConversationID, input.Message); err != nil {
				return nil, fmt.Errorf("save user message: %w", err)
			}
		}

		systemPrompt, err := prompts.RenderPersonaSystem(ctx, promptCfg)
		if err != nil {
			return nil, fmt.Errorf("render persona system prompt: %w", err)
		}

		return mm.BuildModelContext(systemPrompt, prompts.PrimerAck(promptCfg), history, input.Message), nil
	})
}

// NewResponseChatModelPostHandler computes and logs usage cost for the
// response model invocation.
func NewResponseChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if model.CostEnabled() && out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra["usage_cost"] = map[string]any{
				"currency":          "USD",
				"model":             modelName,
				"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
				"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
				"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
				"input_cost":        inC,
				"output_cost":       outC,
				"total_cost":        totalC,
			}
			logx.Debug().
				Str("conversation_id", state.ConversationID).
				Str("node", NodeResponseChatModel).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")

			// Accumulate only total cost into state
			state.TotalCostUSD += totalC
			out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
		}
		return out, nil
	}
}

// NewDirectiveParserNode creates the DirectiveParser node. It separates the
// machine-facing directives from the prose and pairs the result with the
// phase stored in state.
func NewDirectiveParserNode(modelName string) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (*model.ChatResult, error) {
		if resp == nil {
			return nil, fmt.Errorf("response message is nil")
		}

		extraction := directive.Extract(resp.Content)

		result := &model.ChatResult{
			Response:        extraction.CleanedText,
			ImageQueries:    extraction.ImageQueries,
			Actions:         extraction.Actions,
			ContainsImages:  extraction.ContainsImages(),
			ContainsActions: extraction.ContainsActions(),
			ModelUsed:       modelName,
		}

		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			result.Phase = state.Phase
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().
			Str("phase", string(result.Phase)).
			Int("image_queries", len(result.ImageQueries)).
			Int("actions", len(result.Actions)).
			Msg("directives extracted from model response")

		return result, nil
	})
}

// NewDirectiveParserPostHandler persists the cleaned assistant reply for
// stateful conversations.
func NewDirectiveParserPostHandler(
	mm *conversations.MessagesManager,
) func(context.Context, *model.ChatResult, *model.AppState) (*model.ChatResult, error) {
	return func(ctx context.Context, out *model.ChatResult, state *model.AppState) (*model.ChatResult, error) {
		if out == nil {
			return out, nil
		}
		if !state.Stateless && state.ConversationID != "" && strings.TrimSpace(out.Response) != "" {
			if err := mm.SaveResponse(ctx, state.ConversationID, out.Response); err != nil {
				logx.Error().
					Str("conversation_id", state.ConversationID).
					Err(err).
					Msg("Error saving assistant response")
			} else {
				logx.Debug().
					Str("conversation_id", state.ConversationID).
					Msg("Successfully saved assistant response to Redis")
			}
		}
		return out, nil
	}
}
