// internal/common/oracle/conversation.go
package oracle

import (
	"context"
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the running repair dialogue for one resource. It is a
// value: With returns a new conversation and never mutates the receiver's
// backing array.
type Conversation struct {
	System   string    `json:"system"`
	Messages []Message `json:"messages"`
}

// NewConversation seeds a conversation with a system prompt.
func NewConversation(system string) Conversation {
	return Conversation{System: system, Messages: []Message{}}
}

func (c Conversation) IsZero() bool {
	return c.System == "" && len(c.Messages) == 0
}

// With appends one turn.
func (c Conversation) With(role Role, content string) Conversation {
	msgs := make([]Message, len(c.Messages), len(c.Messages)+1)
	copy(msgs, c.Messages)
	c.Messages = append(msgs, Message{Role: role, Content: content})
	return c
}

// Turns counts the assistant replies so far.
func (c Conversation) Turns() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleAssistant {
			n++
		}
	}
	return n
}

// Model is a chat-style language model.
type Model interface {
	Converse(ctx context.Context, system string, messages []Message) (string, error)
}

// extractJSONObject returns the first balanced JSON object in s that parses,
// ignoring prose and code fences around it.
func extractJSONObject(s string) json.RawMessage {
	for start := strings.Index(s, "{"); start >= 0; {
		if end := matchBrace(s[start:]); end > 0 {
			candidate := s[start : start+end]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate)
			}
		}
		next := strings.Index(s[start+1:], "{")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil
}

// matchBrace returns the length of the balanced {...} prefix of s, or 0.
func matchBrace(s string) int {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return 0
}
