package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	analysismodel "github.com/OnePunchManz/sumi-backend/internal/analysis/model"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/observers"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/request"
	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

const nodeReasoning = "reasoning"

// ChatModel sends payloads through an eino chat model compiled into a chain,
// so that model callbacks fire on every call.
type ChatModel struct {
	runnable compose.Runnable[[]*schema.Message, *schema.Message]
	timeout  time.Duration
}

// NewChatModel compiles cm into a single-node chain.
func NewChatModel(ctx context.Context, cm model.BaseChatModel, timeout time.Duration) (*ChatModel, error) {
	if cm == nil {
		return nil, fmt.Errorf("chat model is nil")
	}

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(cm, compose.WithNodeName(nodeReasoning))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling reasoning chain")
		return nil, fmt.Errorf("error compiling reasoning chain: %w", err)
	}
	return &ChatModel{runnable: runnable, timeout: timeout}, nil
}

// NewGemini creates a Gemini-backed gateway.
func NewGemini(ctx context.Context, cfg analysismodel.ReasoningConfig) (*ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.GeminiURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini chat model")
		return nil, fmt.Errorf("error creating Gemini chat model: %w", err)
	}

	return NewChatModel(ctx, cm, cfg.Timeout)
}

// Send invokes the chain with the payload's history and generation parameters.
func (g *ChatModel) Send(ctx context.Context, payload request.Payload) (*schema.Message, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.runnable.Invoke(ctx, payload.Messages,
		compose.WithCallbacks(observers.NewModelCallbacks()),
		compose.WithChatModelOption(
			model.WithTemperature(payload.Temperature),
			model.WithMaxTokens(payload.MaxTokens),
		),
	)
	if err != nil {
		return nil, errx.NewUpstreamError(0, nil, err)
	}
	if out == nil {
		return nil, errx.ErrEmptyUpstreamResponse
	}

	msg := schema.AssistantMessage(out.Content, nil)
	msg.ResponseMeta = out.ResponseMeta
	return msg, nil
}

var _ Gateway = (*ChatModel)(nil)
