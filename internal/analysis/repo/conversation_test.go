package repo

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
)

func newTestRepo(t *testing.T, ttl time.Duration) (*RedisConversationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisConversationRepository(rdb, ttl), mr
}

func transcript() []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage("You are an assistant specializing in analyzing stock charts."),
		{Role: schema.User, MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: "what's the trend?"},
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: "img://chart1"}},
		}},
		schema.AssistantMessage("Uptrend.", nil),
	}
}

func TestAddAndLoadHistory(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRepo(t, time.Hour)

	msgs := transcript()
	require.NoError(t, r.AddMessages(ctx, "s1", msgs[:2]...))
	require.NoError(t, r.AddMessages(ctx, "s1", msgs[2]))
	require.NoError(t, r.AddMessages(ctx, "s1"))

	history, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", history.SessionID)
	require.Len(t, history.Messages, 3)
	assert.Equal(t, schema.System, history.Messages[0].Role)
	require.Len(t, history.Messages[1].MultiContent, 2)
	assert.Equal(t, "img://chart1", history.Messages[1].MultiContent[1].ImageURL.URL)
	assert.Equal(t, "Uptrend.", history.Messages[2].Content)

	n, err := r.GetMessageCount(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, time.Hour, mr.TTL("conversation:s1:messages"))
}

func TestLoadHistoryMissing(t *testing.T) {
	r, _ := newTestRepo(t, 0)
	history, err := r.LoadHistory(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)

	n, err := r.GetMessageCount(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRepo(t, 0)
	require.NoError(t, r.AddMessages(ctx, "s1", transcript()...))
	assert.Zero(t, mr.TTL("conversation:s1:messages"), "no ttl configured")

	require.NoError(t, r.ClearHistory(ctx, "s1"))
	assert.False(t, mr.Exists("conversation:s1:messages"))
}

func TestLoadHistoryCorrupt(t *testing.T) {
	r, mr := newTestRepo(t, 0)
	_, err := mr.Push("conversation:s1:messages", "{not json")
	require.NoError(t, err)

	_, err = r.LoadHistory(context.Background(), "s1")
	assert.ErrorContains(t, err, "index 0")
}

func TestRedisFailuresAreWrapped(t *testing.T) {
	r, mr := newTestRepo(t, 0)
	mr.SetError("ERR simulated failure")

	err := r.AddMessages(context.Background(), "s1", transcript()...)
	var appErr *errx.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}
