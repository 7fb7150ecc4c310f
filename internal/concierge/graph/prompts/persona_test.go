package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malaysia-ai/concierge-server/internal/concierge/model"
)

func testPromptConfig() model.PersonaPromptConfig {
	return model.PersonaPromptConfig{
		ConciergeName: "Aiman",
		Region:        "Malaysia",
		Greeting:      "Selamat Datang!",
	}
}

func TestRenderPersonaSystem(t *testing.T) {
	rendered, err := RenderPersonaSystem(context.Background(), testPromptConfig())

	require.NoError(t, err)
	assert.Contains(t, rendered, "Aiman")
	assert.Contains(t, rendered, "Malaysia")
	assert.Contains(t, rendered, "Selamat Datang!")
	assert.NotContains(t, rendered, "{{")
}

func TestPrimerAckMentionsPersona(t *testing.T) {
	ack := PrimerAck(testPromptConfig())

	assert.Contains(t, ack, "I am Aiman")
	assert.Contains(t, ack, "Malaysia travel concierge")
}

func TestRenderVisionPromptIncludesUserMessage(t *testing.T) {
	rendered, err := RenderVisionPrompt(context.Background(), testPromptConfig(), "What dish is this?")

	require.NoError(t, err)
	assert.Contains(t, rendered, "What dish is this?")
	assert.Contains(t, rendered, "Aiman")
	assert.NotContains(t, rendered, "{USER_MESSAGE}")
}

func TestRenderVisionPromptDefaultsMessage(t *testing.T) {
	rendered, err := RenderVisionPrompt(context.Background(), testPromptConfig(), "")

	require.NoError(t, err)
	assert.Contains(t, rendered, "Please analyze this image")
}

func TestRenderVisionPromptSurvivesTemplateSyntaxInMessage(t *testing.T) {
	rendered, err := RenderVisionPrompt(context.Background(), testPromptConfig(), "what is {{.This}}?")

	require.NoError(t, err)
	assert.Contains(t, rendered, "what is {{.This}}?")
}
