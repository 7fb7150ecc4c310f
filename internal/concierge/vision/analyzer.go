package vision

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/malaysia-ai/concierge-server/internal/concierge/directive"
	"github.com/malaysia-ai/concierge-server/internal/concierge/graph/prompts"
	"github.com/malaysia-ai/concierge-server/internal/concierge/model"
	"github.com/malaysia-ai/concierge-server/internal/concierge/phase"
	errx "github.com/malaysia-ai/concierge-server/internal/core/error"
	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

// maxImageSize limits uploads to 10MB.
const maxImageSize = 10 * 1024 * 1024

const analysisFallbackMessage = "I'm sorry, I'm having trouble analyzing the image right now. " +
	"Could you describe what's in the picture? I'd be happy to provide Malaysia travel " +
	"recommendations based on your description! 🇲🇾"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateImage checks the declared content type and size of an upload
// before any bytes are sent to the vision model.
func ValidateImage(contentType string, size int64) error {
	if !allowedImageTypes[contentType] {
		return errx.New(
			fmt.Errorf("unsupported content type %q", contentType),
			http.StatusBadRequest,
			fmt.Sprintf("Unsupported file type '%s'. Please upload a JPEG, PNG, or WebP image.", contentType),
		)
	}
	if size > maxImageSize {
		sizeMB := float64(size) / (1024 * 1024)
		return errx.New(
			fmt.Errorf("image size %d exceeds limit", size),
			http.StatusBadRequest,
			fmt.Sprintf("Image too large (%.1fMB). Please upload an image smaller than 10MB.", sizeMB),
		)
	}
	return nil
}

// Analyzer runs multimodal calls against the GenAI client directly; the chat
// graph stays text-only and image turns take this side path instead.
type Analyzer struct {
	client          *genai.Client
	visionCfg       model.VisionModelConfig
	respCfg         model.ResponseModelConfig
	promptCfg       model.PersonaPromptConfig
	contextMaxTurns int
}

// NewAnalyzer creates an Analyzer sharing the chat models' GenAI client.
func NewAnalyzer(
	client *genai.Client,
	visionCfg model.VisionModelConfig,
	respCfg model.ResponseModelConfig,
	promptCfg model.PersonaPromptConfig,
	conversationCfg model.ConversationConfig,
) *Analyzer {
	return &Analyzer{
		client:          client,
		visionCfg:       visionCfg,
		respCfg:         respCfg,
		promptCfg:       promptCfg,
		contextMaxTurns: conversationCfg.Context.MaxTurns,
	}
}

// ProcessUpload assigns an image ID and resolves the MIME type for an upload.
func (a *Analyzer) ProcessUpload(data []byte, contentType string) (imageID, mimeType string) {
	imageID = uuid.NewString()
	mimeType = contentType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	logx.Info().
		Str("image_id", imageID).
		Str("mime_type", mimeType).
		Int("size_bytes", len(data)).
		Msg("processed image upload")
	return imageID, mimeType
}

// Analyze sends the image with the persona-framed analysis prompt to the
// vision model. On any failure it returns an in-character apology instead of
// an error so the conversation keeps flowing.
func (a *Analyzer) Analyze(ctx context.Context, imageData []byte, mimeType, userMessage string) string {
	prompt, err := prompts.RenderVisionPrompt(ctx, a.promptCfg, userMessage)
	if err != nil {
		logx.Error().Err(err).Msg("vision prompt render failed")
		return analysisFallbackMessage
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
		}, genai.RoleUser),
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.visionCfg.Model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(a.visionCfg.Temperature),
		TopP:            genai.Ptr(a.visionCfg.TopP),
		MaxOutputTokens: int32(a.visionCfg.MaxTokens),
		SafetySettings:  visionSafetySettings(),
	})
	if err != nil {
		logx.Error().Err(err).Str("model", a.visionCfg.Model).Msg("image analysis failed")
		return analysisFallbackMessage
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "I analyzed the image but couldn't generate a response. Please try uploading the image again."
	}

	logx.Info().
		Str("model", a.visionCfg.Model).
		Int("chars", len(text)).
		Msg("generated image analysis")
	return text
}

// Suggestions derives follow-up topics from the analysis text.
func (a *Analyzer) Suggestions(analysis string) []string {
	lower := strings.ToLower(analysis)

	var suggestions []string
	if strings.Contains(lower, "kuala lumpur") {
		suggestions = append(suggestions, "Kuala Lumpur attractions")
	}
	if strings.Contains(lower, "penang") {
		suggestions = append(suggestions, "Penang food and heritage")
	}
	if strings.Contains(lower, "food") || strings.Contains(lower, "dish") {
		suggestions = append(suggestions, "Malaysian cuisine experiences")
	}
	if strings.Contains(lower, "beach") || strings.Contains(lower, "island") {
		suggestions = append(suggestions, "Malaysian beach destinations")
	}

	if len(suggestions) == 0 {
		suggestions = []string{"Malaysia travel recommendations", "Local experiences", "Similar attractions"}
	}
	return suggestions
}

// ChatWithImage runs one conversational turn that may carry an inline image.
// The caller supplies the transcript, so this path is always stateless.
func (a *Analyzer) ChatWithImage(
	ctx context.Context,
	message string,
	imageData []byte,
	history []*schema.Message,
	temperature *float32,
	maxTokens *int,
) (*model.ChatResult, error) {
	currentPhase := phase.Classify(history, message)

	persona, err := prompts.RenderPersonaSystem(ctx, a.promptCfg)
	if err != nil {
		return nil, fmt.Errorf("render persona prompt: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(
			persona+"\n\nIMPORTANT: The user has uploaded an image. Use it as context for your travel recommendations.",
			genai.RoleUser,
		),
		genai.NewContentFromText(prompts.PrimerAck(a.promptCfg), genai.RoleModel),
	}

	turns := history
	if len(turns) > a.contextMaxTurns {
		turns = turns[len(turns)-a.contextMaxTurns:]
	}
	for _, msg := range turns {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			contents = append(contents, genai.NewContentFromText(strings.TrimSpace(msg.Content), genai.RoleUser))
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(strings.TrimSpace(msg.Content), genai.RoleModel))
		}
	}

	parts := []*genai.Part{genai.NewPartFromText(message)}
	if len(imageData) > 0 {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: imageData}})
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	temp := a.respCfg.Temperature
	if temperature != nil {
		temp = *temperature
	}
	tokens := a.respCfg.MaxTokens
	if maxTokens != nil && *maxTokens > 0 {
		tokens = *maxTokens
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.respCfg.Model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temp),
		TopP:            genai.Ptr(a.respCfg.TopP),
		MaxOutputTokens: int32(tokens),
		SafetySettings:  visionSafetySettings(),
	})
	if err != nil {
		return nil, errx.New(err, http.StatusBadGateway, errx.UpstreamErrorMessage)
	}

	extraction := directive.Extract(resp.Text())

	logx.Info().
		Str("phase", string(currentPhase)).
		Bool("has_image", len(imageData) > 0).
		Int("response_chars", len(extraction.CleanedText)).
		Msg("image chat turn completed")

	return &model.ChatResult{
		Response:        extraction.CleanedText,
		Phase:           currentPhase,
		ImageQueries:    extraction.ImageQueries,
		Actions:         extraction.Actions,
		ContainsImages:  extraction.ContainsImages(),
		ContainsActions: extraction.ContainsActions(),
		ModelUsed:       a.respCfg.Model,
	}, nil
}

// visionSafetySettings mirrors the chat model's disabled harm filters.
func visionSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
	}
}
