package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/OnePunchManz/sumi-backend/internal/analysis/model"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/observers"
	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

//go:embed template/system_prompt.txt
var systemPrompt string

// DefaultSubject is used when the configured subject is blank.
const DefaultSubject = "stock charts"

const nodeSystemDirective = "system_directive"

// RenderSystemDirective renders the fixed system directive that opens every
// conversation. It is rendered once at startup.
func RenderSystemDirective(ctx context.Context, cfg model.ConversationConfig) (string, error) {
	subject := strings.TrimSpace(cfg.Subject)
	if subject == "" {
		subject = DefaultSubject
	}

	tpl := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(strings.TrimSpace(systemPrompt)),
	)

	chain := compose.NewChain[map[string]any, []*schema.Message]()
	chain.AppendChatTemplate(tpl, compose.WithNodeName(nodeSystemDirective))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling system prompt chain")
		return "", fmt.Errorf("system prompt compile: %w", err)
	}

	msgs, err := runnable.Invoke(ctx, map[string]any{
		"subject": subject,
	}, compose.WithCallbacks(observers.NewPromptCallbacks()))
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
