package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnePunchManz/sumi-backend/internal/analysis/gateway"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/model"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/request"
	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
)

func testPayload() request.Payload {
	return request.Build(model.ReasoningParams{Model: "gpt-4o", MaxTokens: 1500, Temperature: 0.7}, []*schema.Message{
		schema.SystemMessage("You are an assistant specializing in analyzing stock charts."),
		{Role: schema.User, MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: "what's the trend?"},
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: "img://chart1"}},
		}},
	})
}

func TestOpenAISendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Model       string            `json:"model"`
			Messages    []json.RawMessage `json:"messages"`
			MaxTokens   int               `json:"max_tokens"`
			Temperature float64           `json:"temperature"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body.Model)
		assert.Len(t, body.Messages, 2)
		assert.Equal(t, 1500, body.MaxTokens)
		assert.InDelta(t, 0.7, body.Temperature, 1e-6)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"choices": [
				{"message": {"role": "assistant", "content": "Uptrend."}, "finish_reason": "stop"},
				{"message": {"role": "assistant", "content": "ignored"}}
			],
			"usage": {"prompt_tokens": 120, "completion_tokens": 3, "total_tokens": 123}
		}`)
	}))
	defer srv.Close()

	gw := gateway.NewOpenAI(srv.URL+"/v1/", "sk-test", 5*time.Second)
	msg, err := gw.Send(context.Background(), testPayload())
	require.NoError(t, err)

	assert.Equal(t, schema.Assistant, msg.Role)
	assert.Equal(t, "Uptrend.", msg.Content)
	require.NotNil(t, msg.ResponseMeta)
	assert.Equal(t, "stop", msg.ResponseMeta.FinishReason)
	require.NotNil(t, msg.ResponseMeta.Usage)
	assert.Equal(t, 120, msg.ResponseMeta.Usage.PromptTokens)
	assert.Equal(t, 123, msg.ResponseMeta.Usage.TotalTokens)
}

func TestOpenAISendContentParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":[{"type":"text","text":"Up"},{"type":"text","text":"trend."}]}}]}`)
	}))
	defer srv.Close()

	msg, err := gateway.NewOpenAI(srv.URL, "k", time.Second).Send(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "Uptrend.", msg.Content)
}

func TestOpenAISendEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"choices": []}`)
	}))
	defer srv.Close()

	_, err := gateway.NewOpenAI(srv.URL, "k", time.Second).Send(context.Background(), testPayload())
	assert.ErrorIs(t, err, errx.ErrEmptyUpstreamResponse)
	assert.NotErrorIs(t, err, errx.ErrUpstreamCallFailed)
}

func TestOpenAISendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided"}}`)
	}))
	defer srv.Close()

	_, err := gateway.NewOpenAI(srv.URL, "bad", time.Second).Send(context.Background(), testPayload())
	require.ErrorIs(t, err, errx.ErrUpstreamCallFailed)

	var upstream *errx.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "Incorrect API key")
}

func TestOpenAISendMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>gateway timeout</html>`)
	}))
	defer srv.Close()

	_, err := gateway.NewOpenAI(srv.URL, "k", time.Second).Send(context.Background(), testPayload())
	require.ErrorIs(t, err, errx.ErrUpstreamCallFailed)

	var upstream *errx.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusOK, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "gateway timeout")
}

func TestOpenAISendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := gateway.NewOpenAI(url, "k", time.Second).Send(context.Background(), testPayload())
	require.ErrorIs(t, err, errx.ErrUpstreamCallFailed)

	var upstream *errx.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Zero(t, upstream.StatusCode)
}

func TestOpenAISendCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := gateway.NewOpenAI(srv.URL, "k", 5*time.Second).Send(ctx, testPayload())
	assert.ErrorIs(t, err, errx.ErrUpstreamCallFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
