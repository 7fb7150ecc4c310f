package model

// ================ Config ================
type ConversationConfig struct {
	TTL     string `envconfig:"CONVERSATION_TTL" default:"24h"`
	Context struct {
		MaxTurns int `envconfig:"CONVERSATION_CONTEXT_MAX_TURNS" default:"10"`
	}
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"8192"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.7"`
	TopP        float32 `envconfig:"RESPONSE_TOP_P" default:"0.95"`
}

type VisionModelConfig struct {
	Model       string  `envconfig:"VISION_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"VISION_MAX_TOKENS" default:"1500"`
	Temperature float32 `envconfig:"VISION_TEMPERATURE" default:"0.4"`
	TopP        float32 `envconfig:"VISION_TOP_P" default:"0.9"`
}

type PersonaPromptConfig struct {
	ConciergeName string `envconfig:"PROMPT_CONCIERGE_NAME" default:"Aiman"`
	Region        string `envconfig:"PROMPT_REGION" default:"Malaysia"`
	Greeting      string `envconfig:"PROMPT_GREETING" default:"Selamat Datang!"`
}
