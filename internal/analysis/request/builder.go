// Package request turns a conversation snapshot into the payload of the
// reasoning API. Nothing here performs I/O.
package request

import (
	"encoding/json"

	"github.com/cloudwego/eino/schema"

	"github.com/OnePunchManz/sumi-backend/internal/analysis/model"
)

// Payload is one reasoning call: the full history plus fixed generation parameters.
type Payload struct {
	Model       string
	Messages    []*schema.Message
	MaxTokens   int
	Temperature float32
}

// Build assembles the payload for a snapshot. The history is forwarded
// verbatim, without truncation or summarization.
func Build(params model.ReasoningParams, snapshot []*schema.Message) Payload {
	return Payload{
		Model:       params.Model,
		Messages:    snapshot,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}
}

type wirePayload struct {
	Model       string        `json:"model"`
	Messages    []WireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

// WireMessage is a chat-completions message. Content is a string, or a list of
// WirePart for multimodal user turns.
type WireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type WirePart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *WireImageURL `json:"image_url,omitempty"`
}

type WireImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// MarshalJSON encodes the payload in the chat-completions request format.
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePayload{
		Model:       p.Model,
		Messages:    ToWireMessages(p.Messages),
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})
}

func ToWireMessages(msgs []*schema.Message) []WireMessage {
	out := make([]WireMessage, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		out = append(out, ToWire(m))
	}
	return out
}

func ToWire(m *schema.Message) WireMessage {
	if len(m.MultiContent) == 0 {
		return WireMessage{Role: string(m.Role), Content: m.Content}
	}

	parts := make([]WirePart, 0, len(m.MultiContent))
	for _, part := range m.MultiContent {
		switch part.Type {
		case schema.ChatMessagePartTypeText:
			parts = append(parts, WirePart{Type: "text", Text: part.Text})
		case schema.ChatMessagePartTypeImageURL:
			if part.ImageURL == nil {
				continue
			}
			parts = append(parts, WirePart{
				Type:     "image_url",
				ImageURL: &WireImageURL{URL: part.ImageURL.URL, Detail: string(part.ImageURL.Detail)},
			})
		}
	}
	return WireMessage{Role: string(m.Role), Content: parts}
}
