package repository

import (
	"context"
	"errors"
	"time"

	chat "subdesk/internal/pkg/chat/application/domain"
)

// ErrConversationNotFound signals a lookup for a conversation id that does
// not exist. Adapters translate their store's not-found condition to this.
var ErrConversationNotFound = errors.New("chat repository: conversation not found")

// ChatRepository defines persistence operations for the chat domain.
type ChatRepository interface {
	// FindOrCreateConversation resolves the single conversation between the
	// two members, creating it atomically when absent. Implementations must
	// guarantee at most one conversation per unordered pair.
	FindOrCreateConversation(ctx context.Context, a, b chat.Member) (chat.Conversation, error)

	// GetConversation loads a conversation with its members.
	// Returns ErrConversationNotFound when the id does not exist.
	GetConversation(ctx context.Context, conversationID string) (chat.Conversation, error)

	// ListConversationsByMember returns every conversation the user belongs
	// to, most recently created first, members populated.
	ListConversationsByMember(ctx context.Context, userID string) ([]chat.Conversation, error)

	// SaveMessage persists a message letting the store generate the id.
	SaveMessage(ctx context.Context, m chat.Message) (string, error)

	// ListMessages returns messages of a conversation in ascending
	// created_at order, receipts populated.
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error)

	// MarkConversationRead flips read on every unread message in the
	// conversation not sent by readerID and appends a receipt per message.
	// Idempotent: already-read messages are untouched and receipts are not
	// duplicated. Returns the number of newly read messages.
	MarkConversationRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error)

	// CountUnread counts messages in the conversation not sent by userID
	// that are still unread.
	CountUnread(ctx context.Context, conversationID, userID string) (int64, error)
}
