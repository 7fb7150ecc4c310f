package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/gin-gonic/gin"

	"github.com/malaysia-ai/concierge-server/internal/concierge/directive"
	"github.com/malaysia-ai/concierge-server/internal/concierge/graph"
	"github.com/malaysia-ai/concierge-server/internal/concierge/graph/prompts"
	conciergemodel "github.com/malaysia-ai/concierge-server/internal/concierge/model"
	"github.com/malaysia-ai/concierge-server/internal/concierge/phase"
	"github.com/malaysia-ai/concierge-server/internal/concierge/vision"
	errx "github.com/malaysia-ai/concierge-server/internal/core/error"
	"github.com/malaysia-ai/concierge-server/internal/metrics"
	"github.com/malaysia-ai/concierge-server/internal/server/requests"
	"github.com/malaysia-ai/concierge-server/internal/server/responses"
	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

// ChatHandler serves the conversational endpoints. The structured /chat path
// runs through the compiled graph; /chat-stream drives the response model
// directly so chunks can be flushed as they arrive.
type ChatHandler struct {
	concierge *graph.Concierge
	analyzer  *vision.Analyzer
	promptCfg conciergemodel.PersonaPromptConfig
}

func NewChatHandler(concierge *graph.Concierge, analyzer *vision.Analyzer, promptCfg conciergemodel.PersonaPromptConfig) *ChatHandler {
	return &ChatHandler{
		concierge: concierge,
		analyzer:  analyzer,
		promptCfg: promptCfg,
	}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req requests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Detail: err.Error()})
		return
	}

	input := conciergemodel.ChatInput{
		ConversationID: req.UserSessionID,
		Message:        req.Message,
		History:        requests.ToSchemaMessages(req.ConversationHistory),
	}

	opts := generationOverrides(req.Temperature, req.MaxTokens)

	start := time.Now()
	result, err := h.concierge.Runner.Invoke(c.Request.Context(), input, opts...)
	metrics.RecordChatDuration("invoke", time.Since(start).Seconds())
	if err != nil {
		status := errx.StatusOf(err, http.StatusInternalServerError)
		logx.Error().Err(err).Msg("chat pipeline failed")
		c.JSON(status, responses.ErrorResponse{Detail: fmt.Sprintf("Failed to generate response: %v", err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ChatStream handles POST /chat-stream as server-sent events: one
// {"response": ...} event per model chunk, then a final event carrying
// {"done": true} plus the derived phase and directives.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req requests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Detail: err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	mm := h.concierge.MessagesManager

	history, stateless, err := mm.ResolveHistory(ctx, req.UserSessionID, requests.ToSchemaMessages(req.ConversationHistory))
	if err != nil {
		writeSSE(c, gin.H{"error": fmt.Sprintf("Streaming error: %v", err)})
		return
	}
	currentPhase := phase.Classify(history, req.Message)

	systemPrompt, err := prompts.RenderPersonaSystem(ctx, h.promptCfg)
	if err != nil {
		writeSSE(c, gin.H{"error": fmt.Sprintf("Streaming error: %v", err)})
		return
	}
	msgs := mm.BuildModelContext(systemPrompt, prompts.PrimerAck(h.promptCfg), history, req.Message)

	if !stateless {
		if err := mm.SaveUserMessage(ctx, req.UserSessionID, req.Message); err != nil {
			logx.Error().Err(err).Msg("failed to persist user message before streaming")
		}
	}

	start := time.Now()
	reader, err := h.concierge.ChatModels.Response.Stream(ctx, msgs, modelOverrides(req.Temperature, req.MaxTokens)...)
	if err != nil {
		logx.Error().Err(err).Msg("stream start failed")
		writeSSE(c, gin.H{"error": fmt.Sprintf("Streaming error: %v", err)})
		return
	}
	defer reader.Close()

	var full string
	for {
		chunk, err := reader.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			logx.Error().Err(err).Msg("stream receive failed")
			writeSSE(c, gin.H{"error": fmt.Sprintf("Streaming error: %v", err)})
			return
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}
		full += chunk.Content
		writeSSE(c, gin.H{"response": chunk.Content})
	}
	metrics.RecordChatDuration("stream", time.Since(start).Seconds())

	extraction := directive.Extract(full)

	if !stateless && extraction.CleanedText != "" {
		if err := mm.SaveResponse(ctx, req.UserSessionID, extraction.CleanedText); err != nil {
			logx.Error().Err(err).Msg("failed to persist assistant response after streaming")
		}
	}

	writeSSE(c, gin.H{
		"done":             true,
		"phase":            currentPhase,
		"image_queries":    extraction.ImageQueries,
		"actions":          extraction.Actions,
		"contains_images":  extraction.ContainsImages(),
		"contains_actions": extraction.ContainsActions(),
	})
}

// ChatWithImage handles POST /chat-with-image.
func (h *ChatHandler) ChatWithImage(c *gin.Context) {
	var req requests.ChatWithImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Detail: err.Error()})
		return
	}

	var imageData []byte
	if req.ImageData != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.ErrorResponse{Detail: "image_data is not valid base64"})
			return
		}
		imageData = decoded
	}

	start := time.Now()
	result, err := h.analyzer.ChatWithImage(
		c.Request.Context(),
		req.Message,
		imageData,
		requests.ToSchemaMessages(req.ConversationHistory),
		req.Temperature,
		req.MaxTokens,
	)
	metrics.RecordChatDuration("image_chat", time.Since(start).Seconds())
	if err != nil {
		status := errx.StatusOf(err, http.StatusInternalServerError)
		logx.Error().Err(err).Msg("image chat failed")
		c.JSON(status, responses.ErrorResponse{Detail: fmt.Sprintf("Failed to generate response: %v", err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// generationOverrides maps optional request knobs onto graph options.
func generationOverrides(temperature *float32, maxTokens *int) []compose.Option {
	modelOpts := modelOverrides(temperature, maxTokens)
	if len(modelOpts) == 0 {
		return nil
	}
	return []compose.Option{compose.WithChatModelOption(modelOpts...)}
}

func modelOverrides(temperature *float32, maxTokens *int) []model.Option {
	var opts []model.Option
	if temperature != nil {
		opts = append(opts, model.WithTemperature(*temperature))
	}
	if maxTokens != nil && *maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(*maxTokens))
	}
	return opts
}

func writeSSE(c *gin.Context, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", b)
	c.Writer.Flush()
}
