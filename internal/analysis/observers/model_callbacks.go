package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

// newModelHandler builds a typed ModelCallbackHandler that logs reasoning calls.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ev := logx.Ctx(ctx).Debug().Str("component", string(info.Component)).Str("name", info.Name)
			if input != nil {
				ev = ev.Int("messages", len(input.Messages)).Int("user_turns", countRole(input.Messages, schema.User))
			}
			ev.Msg("reasoning call start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			ev := logx.Ctx(ctx).Debug().Str("name", info.Name)
			if output != nil && output.Message != nil {
				ev = ev.Int("content_len", len(output.Message.Content))
				if meta := output.Message.ResponseMeta; meta != nil && meta.Usage != nil {
					ev = ev.Int("prompt_tokens", meta.Usage.PromptTokens).
						Int("completion_tokens", meta.Usage.CompletionTokens)
				}
			}
			ev.Msg("reasoning call end")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Ctx(ctx).Warn().Err(err).Str("name", info.Name).Msg("reasoning call failed")
			return ctx
		},
	}
}

func countRole(msgs []*schema.Message, role schema.RoleType) int {
	n := 0
	for _, m := range msgs {
		if m != nil && m.Role == role {
			n++
		}
	}
	return n
}
