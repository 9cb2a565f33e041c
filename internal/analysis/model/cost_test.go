package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestResolvePricing(t *testing.T) {
	assert.Equal(t, defaultPricing["gpt-4o"], ResolvePricing("gpt-4o"))
	assert.Equal(t, defaultPricing["gpt-4o"], ResolvePricing("gpt-4o-2024-08-06"))
	assert.Equal(t, defaultPricing["gpt-4o-mini"], ResolvePricing("gpt-4o-mini-2024-07-18"))
	assert.Equal(t, Pricing{}, ResolvePricing("mystery-model"))
}

func TestComputeCost(t *testing.T) {
	usage := &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 500_000}
	in, out, total := ComputeCost(usage, Pricing{InputPerM: 2.5, OutputPerM: 10})
	assert.InDelta(t, 2.5, in, 1e-9)
	assert.InDelta(t, 5.0, out, 1e-9)
	assert.InDelta(t, 7.5, total, 1e-9)

	in, out, total = ComputeCost(nil, Pricing{InputPerM: 1})
	assert.Zero(t, in)
	assert.Zero(t, out)
	assert.Zero(t, total)
}

func TestReasoningConfigAPIKey(t *testing.T) {
	cfg := ReasoningConfig{Provider: ProviderOpenAI, OpenAIAPIKey: "sk-open", GeminiAPIKey: "g-key"}
	assert.Equal(t, "sk-open", cfg.APIKey())
	cfg.Provider = ProviderGemini
	assert.Equal(t, "g-key", cfg.APIKey())

	params := ReasoningConfig{Model: "gpt-4o", MaxTokens: 1500, Temperature: 0.7}.Params()
	assert.Equal(t, ReasoningParams{Model: "gpt-4o", MaxTokens: 1500, Temperature: 0.7}, params)
}
