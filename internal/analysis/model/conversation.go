package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type ConversationRepository interface {
	// AddMessages appends messages, in order, to the transcript of a session.
	AddMessages(ctx context.Context, sessionID string, messages ...*schema.Message) error

	// LoadHistory retrieves the stored transcript of a session.
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// ClearHistory removes the transcript of a session.
	ClearHistory(ctx context.Context, sessionID string) error

	// GetMessageCount returns the number of stored messages.
	GetMessageCount(ctx context.Context, sessionID string) (int, error)
}

// ConversationHistory represents a loaded transcript.
type ConversationHistory struct {
	SessionID string
	Messages  []*schema.Message
}
