package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/malaysia-ai/concierge-server/internal/concierge/model"
)

//go:embed template/persona_prompt.txt
var personaSystemPrompt string

//go:embed template/vision_prompt.txt
var visionPrompt string

// RenderPersonaSystem renders the concierge persona system prompt via the
// Eino prompt component (Go template) to both format and emit callbacks.
func RenderPersonaSystem(ctx context.Context, config model.PersonaPromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(personaSystemPrompt),
	)
	vars := map[string]any{
		"ConciergeName": config.ConciergeName,
		"Region":        config.Region,
		"Greeting":      config.Greeting,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("persona prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("persona prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// PrimerAck returns the fixed in-character acknowledgement inserted right
// after the system prompt so the model settles into the persona before the
// history replays.
func PrimerAck(config model.PersonaPromptConfig) string {
	return fmt.Sprintf(
		"I understand. I am %s, your personal %s travel concierge. "+
			"I will follow the phased interaction model exactly as described, using the proper greetings, "+
			"emojis, and directives. I will guide users through greeting & scoping, ideation & recommendation, "+
			"and consolidation & action phases appropriately.",
		config.ConciergeName, config.Region,
	)
}

// RenderVisionPrompt renders the instruction block that accompanies an
// uploaded image, appended to the persona system prompt.
func RenderVisionPrompt(ctx context.Context, config model.PersonaPromptConfig, userMessage string) (string, error) {
	if userMessage == "" {
		userMessage = "Please analyze this image"
	}
	persona, err := RenderPersonaSystem(ctx, config)
	if err != nil {
		return "", err
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.UserMessage(visionPrompt),
	)
	vars := map[string]any{
		"ConciergeName": config.ConciergeName,
		"Region":        config.Region,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("vision prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("vision prompt render: empty result")
	}

	// The user message is free text and may contain template syntax, so it
	// is substituted after the template engine has run.
	content := strings.NewReplacer(
		"{USER_MESSAGE}", userMessage,
	).Replace(msgs[0].Content)

	return persona + "\n\n" + content, nil
}
