package conversations

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/semaphore"
)

// DefaultUserPrompt replaces a missing or blank user text so that every user
// turn carries a text part next to its image.
const DefaultUserPrompt = "Here is the stock chart, please analyze it and provide recommendations."

// Accumulator is the ordered, append-only message history of one session.
//
// Data access is guarded by mu. The exchange lock (turn) is separate: callers
// hold it across append-user, the reasoning call and append-assistant so that
// concurrent requests on the same session queue behind each other.
type Accumulator struct {
	directive string
	turn      *semaphore.Weighted

	mu       sync.RWMutex
	messages []*schema.Message
}

// NewAccumulator returns an empty accumulator that will open with the given
// system directive.
func NewAccumulator(directive string) *Accumulator {
	return &Accumulator{
		directive: directive,
		turn:      semaphore.NewWeighted(1),
	}
}

// Acquire enters the session's critical section, waiting in FIFO order behind
// an in-flight exchange. The returned release func must be called exactly once.
func (a *Accumulator) Acquire(ctx context.Context) (func(), error) {
	if err := a.turn.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire session turn: %w", err)
	}
	var once sync.Once
	return func() { once.Do(func() { a.turn.Release(1) }) }, nil
}

func (a *Accumulator) tryAcquire() bool {
	return a.turn.TryAcquire(1)
}

func (a *Accumulator) release() {
	a.turn.Release(1)
}

// EnsureInitialized appends the system directive when the history is empty and
// reports whether it did so. Safe to call on every request.
func (a *Accumulator) EnsureInitialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.messages) > 0 {
		return false
	}
	a.messages = append(a.messages, schema.SystemMessage(a.directive))
	return true
}

// AppendUserTurn appends a user turn made of a text part and an image part.
// Blank text is replaced by DefaultUserPrompt. A copy of the stored turn is returned.
func (a *Accumulator) AppendUserTurn(text, imageURL string) *schema.Message {
	if strings.TrimSpace(text) == "" {
		text = DefaultUserPrompt
	}
	msg := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: text},
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: imageURL}},
		},
	}

	a.mu.Lock()
	a.messages = append(a.messages, msg)
	a.mu.Unlock()

	return cloneMessage(msg)
}

// AppendAssistantTurn appends the reply of a successful reasoning call. Only
// the text is kept and the role is always assistant.
func (a *Accumulator) AppendAssistantTurn(msg *schema.Message) {
	turn := schema.AssistantMessage("", nil)
	if msg != nil {
		turn.Content = msg.Content
	}

	a.mu.Lock()
	a.messages = append(a.messages, turn)
	a.mu.Unlock()
}

// Snapshot returns a deep copy of the history. Mutating the result never
// affects the accumulator.
func (a *Accumulator) Snapshot() []*schema.Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneMessages(a.messages)
}

// Len returns the number of messages in the history.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.messages)
}

// Rollback discards every message appended after mark. It exists to abandon a
// cancelled exchange and must only be called while holding the exchange lock.
func (a *Accumulator) Rollback(mark int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if mark < 0 || mark >= len(a.messages) {
		return
	}
	for i := mark; i < len(a.messages); i++ {
		a.messages[i] = nil
	}
	a.messages = a.messages[:mark]
}

// Restore seeds an empty accumulator with a previously persisted history,
// which has to open with a system message.
func (a *Accumulator) Restore(history []*schema.Message) error {
	if len(history) == 0 {
		return nil
	}
	if history[0] == nil || history[0].Role != schema.System {
		return fmt.Errorf("restore history: first message must be %q", schema.System)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.messages) > 0 {
		return fmt.Errorf("restore history: accumulator already holds %d messages", len(a.messages))
	}
	a.messages = cloneMessages(history)
	return nil
}
