// Package analysis runs one chart-analysis exchange per request: it binds the
// request to its session's conversation, calls the reasoning gateway and
// records the outcome.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/OnePunchManz/sumi-backend/internal/analysis/conversations"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/gateway"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/model"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/request"
	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

type Config struct {
	Binding *conversations.Binding
	Gateway gateway.Gateway
	Manager *conversations.MessagesManager // optional
	Params  model.ReasoningParams
}

type Analyzer struct {
	binding *conversations.Binding
	gateway gateway.Gateway
	manager *conversations.MessagesManager
	params  model.ReasoningParams
}

func New(cfg Config) (*Analyzer, error) {
	if cfg.Binding == nil {
		return nil, fmt.Errorf("analyzer: binding is nil")
	}
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("analyzer: gateway is nil")
	}
	return &Analyzer{
		binding: cfg.Binding,
		gateway: cfg.Gateway,
		manager: cfg.Manager,
		params:  cfg.Params,
	}, nil
}

// Analyze appends the user's chart to the session's conversation, asks the
// reasoning service about the whole history and returns its answer.
//
// A failed call keeps the user turn, so the next request resends it. A call
// abandoned through ctx leaves the conversation as it was before the request.
func (a *Analyzer) Analyze(ctx context.Context, in model.AnalyzeInput) (string, error) {
	if strings.TrimSpace(in.ImageURL) == "" {
		return "", errx.ErrMissingImageReference
	}
	log := logx.Ctx(ctx).With().Str("session_id", in.SessionID).Logger()

	acc := a.binding.Resolve(in.SessionID)
	release, err := acc.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	if restored, err := a.manager.Hydrate(ctx, in.SessionID, acc); err != nil {
		log.Warn().Err(err).Msg("failed to hydrate conversation, starting fresh")
	} else if restored {
		log.Info().Int("messages", acc.Len()).Msg("hydrated conversation from transcript")
	}

	mark := acc.Len()
	acc.EnsureInitialized()
	acc.AppendUserTurn(in.UserInput, in.ImageURL)
	log.Debug().Str("image_url", in.ImageURL).Str("user_input", in.UserInput).Msg("appended user turn")

	snapshot := acc.Snapshot()
	payload := request.Build(a.params, snapshot)

	reply, err := a.gateway.Send(ctx, payload)
	if err == nil && reply == nil {
		err = errx.ErrEmptyUpstreamResponse
	}
	if err != nil {
		if isContextErr(ctx, err) {
			acc.Rollback(mark)
			log.Info().Err(err).Msg("analysis abandoned, conversation rolled back")
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", err
		}
		log.Error().Err(err).Int("messages", len(snapshot)).Msg("reasoning call failed")
		a.persist(ctx, in.SessionID, acc, mark)
		return "", err
	}

	acc.AppendAssistantTurn(reply)
	a.logUsage(ctx, reply)
	a.persist(ctx, in.SessionID, acc, mark)

	return reply.Content, nil
}

// History returns the session's conversation without creating one.
func (a *Analyzer) History(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	if acc, ok := a.binding.Peek(sessionID); ok {
		return acc.Snapshot(), nil
	}
	if !a.manager.Enabled() {
		return nil, nil
	}

	tmp := conversations.NewAccumulator("")
	if _, err := a.manager.Hydrate(ctx, sessionID, tmp); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return tmp.Snapshot(), nil
}

// EndSession drops the session's conversation after any in-flight exchange
// has finished, together with its stored transcript.
func (a *Analyzer) EndSession(ctx context.Context, sessionID string) error {
	if acc, ok := a.binding.Peek(sessionID); ok {
		release, err := acc.Acquire(ctx)
		if err != nil {
			return err
		}
		a.binding.Remove(sessionID)
		release()
	}

	if err := a.manager.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}
	logx.Ctx(ctx).Info().Str("session_id", sessionID).Msg("conversation ended")
	return nil
}

// persist stores what this exchange appended after mark. Failures are logged
// only; the in-memory conversation stays authoritative.
func (a *Analyzer) persist(ctx context.Context, sessionID string, acc *conversations.Accumulator, mark int) {
	if !a.manager.Enabled() {
		return
	}
	snapshot := acc.Snapshot()
	if mark >= len(snapshot) {
		return
	}
	if err := a.manager.Persist(context.WithoutCancel(ctx), sessionID, snapshot[mark:]); err != nil {
		logx.Ctx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("failed to persist conversation")
	}
}

func (a *Analyzer) logUsage(ctx context.Context, reply *schema.Message) {
	if reply.ResponseMeta == nil || reply.ResponseMeta.Usage == nil {
		return
	}
	usage := reply.ResponseMeta.Usage
	in, out, total := model.ComputeCost(usage, model.ResolvePricing(a.params.Model))
	logx.Ctx(ctx).Info().
		Str("model", a.params.Model).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Float64("input_cost_usd", in).
		Float64("output_cost_usd", out).
		Float64("total_cost_usd", total).
		Str("finish_reason", reply.ResponseMeta.FinishReason).
		Msg("analysis completed")
}

func isContextErr(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
