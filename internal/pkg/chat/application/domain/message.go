package chat

import (
	"errors"
	"strings"
	"time"
)

var ErrEmptyMessage = errors.New("chat: message body is empty")

// Receipt records that a reader saw a message.
type Receipt struct {
	UserID string    `db:"user_id"`
	ReadAt time.Time `db:"read_at"`
}

// Message is an immutable log entry in a conversation. After creation only
// the read flag flips and receipts are appended; messages are never deleted.
type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	Body           string    `db:"body"`
	CreatedAt      time.Time `db:"created_at"`
	Read           bool      `db:"is_read"`
	ReadBy         []Receipt `db:"-"`
}

// NewMessage validates and normalizes a message before persistence.
// The body is trimmed and must be non-empty.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.SenderID == "" {
		return nil, errors.New("chat: conversation_id and sender_id are required")
	}

	m.Body = strings.TrimSpace(m.Body)
	if m.Body == "" {
		return nil, ErrEmptyMessage
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}
