package model

import "time"

// ================ Config ================
type ServerConfig struct {
	Port            int           `envconfig:"PORT" default:"5001"`
	AllowedOrigin   string        `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:3000"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type ReasoningConfig struct {
	Provider     string        `envconfig:"REASONING_PROVIDER" default:"openai"`
	OpenAIAPIKey string        `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY"`
	GeminiURL    string        `envconfig:"GEMINI_BASE_URL"`
	BaseURL      string        `envconfig:"REASONING_BASE_URL" default:"https://api.openai.com/v1"`
	Model        string        `envconfig:"REASONING_MODEL" default:"gpt-4o"`
	MaxTokens    int           `envconfig:"REASONING_MAX_TOKENS" default:"1500"`
	Temperature  float32       `envconfig:"REASONING_TEMPERATURE" default:"0.7"`
	Timeout      time.Duration `envconfig:"REASONING_TIMEOUT" default:"60s"`
}

// APIKey returns the bearer credential of the configured provider.
func (c ReasoningConfig) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// Params returns the fixed generation parameters sent on every call.
func (c ReasoningConfig) Params() ReasoningParams {
	return ReasoningParams{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}

type ConversationConfig struct {
	Subject string        `envconfig:"CONVERSATION_SUBJECT" default:"stock charts"`
	Persist bool          `envconfig:"CONVERSATION_PERSIST" default:"true"`
	TTL     time.Duration `envconfig:"CONVERSATION_TTL" default:"24h"`
}

type SessionConfig struct {
	CookieName    string        `envconfig:"SESSION_COOKIE_NAME" default:"sid"`
	CookieSecure  bool          `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	TTL           time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"5m"`
}
