package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_NewMessage_Trims_Body(t *testing.T) {
	req := require.New(t)

	msg, err := NewMessage(Message{ConversationID: "c1", SenderID: "u1", Body: "  hello  "})
	req.NoError(err)
	req.Equal("hello", msg.Body)
	req.False(msg.Read)
	req.False(msg.CreatedAt.IsZero())
}

func Test_NewMessage_Rejects_Empty_Body(t *testing.T) {
	req := require.New(t)

	_, err := NewMessage(Message{ConversationID: "c1", SenderID: "u1", Body: "   "})
	req.ErrorIs(err, ErrEmptyMessage)

	_, err = NewMessage(Message{ConversationID: "c1", SenderID: "u1"})
	req.ErrorIs(err, ErrEmptyMessage)
}

func Test_NewMessage_Requires_Identity(t *testing.T) {
	req := require.New(t)

	_, err := NewMessage(Message{SenderID: "u1", Body: "hi"})
	req.Error(err)

	_, err = NewMessage(Message{ConversationID: "c1", Body: "hi"})
	req.Error(err)
}

func Test_NewMessage_Keeps_Explicit_Timestamp(t *testing.T) {
	req := require.New(t)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg, err := NewMessage(Message{ConversationID: "c1", SenderID: "u1", Body: "hi", CreatedAt: at})
	req.NoError(err)
	req.Equal(at, msg.CreatedAt)
}
