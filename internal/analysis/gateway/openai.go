package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/OnePunchManz/sumi-backend/internal/analysis/request"
	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

const maxResponseBytes = 10 << 20

// OpenAI talks to an OpenAI-compatible chat-completions endpoint.
type OpenAI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAI creates a gateway for baseURL (e.g. https://api.openai.com/v1).
func NewOpenAI(baseURL, apiKey string, timeout time.Duration) *OpenAI {
	return &OpenAI{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Send posts the payload and returns the first choice as an assistant message.
func (g *OpenAI) Send(ctx context.Context, payload request.Payload) (*schema.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	logx.Ctx(ctx).Debug().
		Str("model", payload.Model).
		Int("messages", len(payload.Messages)).
		Msg("sending request to reasoning API")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errx.NewUpstreamError(0, nil, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errx.NewUpstreamError(resp.StatusCode, nil, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logx.Ctx(ctx).Error().
			Int("status", resp.StatusCode).
			Str("body", truncate(string(data), 512)).
			Msg("reasoning API returned an error status")
		return nil, errx.NewUpstreamError(resp.StatusCode, data, nil)
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errx.NewUpstreamError(resp.StatusCode, data, fmt.Errorf("decode response: %w", err))
	}
	if len(out.Choices) == 0 {
		return nil, errx.ErrEmptyUpstreamResponse
	}

	first := out.Choices[0]
	content, err := decodeContent(first.Message.Content)
	if err != nil {
		return nil, errx.NewUpstreamError(resp.StatusCode, data, fmt.Errorf("decode message content: %w", err))
	}

	msg := schema.AssistantMessage(content, nil)
	msg.ResponseMeta = &schema.ResponseMeta{FinishReason: first.FinishReason}
	if out.Usage != nil {
		msg.ResponseMeta.Usage = &schema.TokenUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		}
	}
	return msg, nil
}

// decodeContent accepts a string, null, or a list of text parts.
func decodeContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, p := range parts {
		if p.Type == "text" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ Gateway = (*OpenAI)(nil)
