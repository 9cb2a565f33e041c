package conversations

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/OnePunchManz/sumi-backend/internal/analysis/model"
)

// MessagesManager mirrors accumulators into a durable transcript. A manager
// without a repository does nothing.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
}

func NewMessagesManager(conversationRepo model.ConversationRepository) *MessagesManager {
	return &MessagesManager{conversationRepo: conversationRepo}
}

// Enabled reports whether a repository is attached.
func (m *MessagesManager) Enabled() bool {
	return m != nil && m.conversationRepo != nil
}

// Hydrate restores a stored transcript into an empty accumulator, e.g. after a
// process restart. It reports whether anything was restored.
func (m *MessagesManager) Hydrate(ctx context.Context, sessionID string, acc *Accumulator) (bool, error) {
	if !m.Enabled() || acc.Len() > 0 {
		return false, nil
	}

	history, err := m.conversationRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("load history: %w", err)
	}
	if len(history.Messages) == 0 {
		return false, nil
	}
	if err := acc.Restore(history.Messages); err != nil {
		return false, err
	}
	return true, nil
}

// Persist appends messages to the stored transcript.
func (m *MessagesManager) Persist(ctx context.Context, sessionID string, messages []*schema.Message) error {
	if !m.Enabled() || len(messages) == 0 {
		return nil
	}
	return m.conversationRepo.AddMessages(ctx, sessionID, messages...)
}

// Clear drops the stored transcript.
func (m *MessagesManager) Clear(ctx context.Context, sessionID string) error {
	if !m.Enabled() {
		return nil
	}
	return m.conversationRepo.ClearHistory(ctx, sessionID)
}
