package conversations

import (
	"maps"
	"slices"

	"github.com/cloudwego/eino/schema"
)

func cloneMessages(msgs []*schema.Message) []*schema.Message {
	out := make([]*schema.Message, len(msgs))
	for i, m := range msgs {
		out[i] = cloneMessage(m)
	}
	return out
}

func cloneMessage(m *schema.Message) *schema.Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.MultiContent != nil {
		c.MultiContent = make([]schema.ChatMessagePart, len(m.MultiContent))
		for i, part := range m.MultiContent {
			c.MultiContent[i] = part
			if part.ImageURL != nil {
				img := *part.ImageURL
				c.MultiContent[i].ImageURL = &img
			}
		}
	}
	c.ToolCalls = slices.Clone(m.ToolCalls)
	c.Extra = maps.Clone(m.Extra)
	if m.ResponseMeta != nil {
		meta := *m.ResponseMeta
		if meta.Usage != nil {
			usage := *meta.Usage
			meta.Usage = &usage
		}
		c.ResponseMeta = &meta
	}
	return &c
}

// UserText returns the text part of a user turn.
func UserText(m *schema.Message) string {
	if m == nil {
		return ""
	}
	for _, part := range m.MultiContent {
		if part.Type == schema.ChatMessagePartTypeText {
			return part.Text
		}
	}
	return m.Content
}

// ImageURL returns the image reference of a user turn, if any.
func ImageURL(m *schema.Message) string {
	if m == nil {
		return ""
	}
	for _, part := range m.MultiContent {
		if part.Type == schema.ChatMessagePartTypeImageURL && part.ImageURL != nil {
			return part.ImageURL.URL
		}
	}
	return ""
}
