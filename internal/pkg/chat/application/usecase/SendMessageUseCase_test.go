package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	chat "subdesk/internal/pkg/chat/application/domain"
)

func Test_SendMessage_Creates_Conversation_And_Message(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane Doe"), school("u2", "Northside Elementary"))
	uc := NewSendMessageUseCase(repo, dir, nil)

	msg, err := uc.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "hello"})
	req.NoError(err)
	req.NotEmpty(msg.ID)
	req.Equal("u1", msg.SenderID)
	req.Equal("hello", msg.Body)
	req.False(msg.Read)

	conv, err := repo.GetConversation(context.Background(), msg.ConversationID)
	req.NoError(err)
	req.Len(conv.Members, 2)
	req.True(conv.HasMember("u1"))
	req.True(conv.HasMember("u2"))

	msgs, err := repo.ListMessages(context.Background(), conv.ID, 0, 0)
	req.NoError(err)
	req.Len(msgs, 1)
}

func Test_SendMessage_Reuses_Existing_Conversation(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane"), school("u2", "Northside"))
	uc := NewSendMessageUseCase(repo, dir, nil)

	first, err := uc.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "hello"})
	req.NoError(err)

	// second message, opposite direction
	second, err := uc.Execute(context.Background(), SendMessageInput{SenderID: "u2", ReceiverID: "u1", Content: "hi back"})
	req.NoError(err)

	req.Equal(first.ConversationID, second.ConversationID)
	req.Equal(1, repo.conversationCount())

	msgs, err := repo.ListMessages(context.Background(), first.ConversationID, 0, 0)
	req.NoError(err)
	req.Len(msgs, 2)
}

func Test_SendMessage_Rejects_Empty_Content(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane"), school("u2", "Northside"))
	uc := NewSendMessageUseCase(repo, dir, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "   "})
	req.ErrorIs(err, chat.ErrEmptyMessage)
}

func Test_SendMessage_Rejects_Unknown_Participant(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane"))
	uc := NewSendMessageUseCase(repo, dir, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "ghost", Content: "hello"})
	req.ErrorIs(err, chat.ErrUnknownParticipant)
	req.Equal(0, repo.conversationCount())
}

func Test_SendMessage_Rejects_Self_Conversation(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane"))
	uc := NewSendMessageUseCase(repo, dir, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "u1", Content: "hello"})
	req.ErrorIs(err, chat.ErrSelfConversation)
}

func Test_SendMessage_Wraps_Persistence_Errors(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	repo.failWith = errors.New("connection refused")
	dir := newFakeDirectory(candidate("u1", "Jane"), school("u2", "Northside"))
	uc := NewSendMessageUseCase(repo, dir, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "hello"})
	req.ErrorIs(err, ErrPersistence)
}

func Test_SendMessage_Invalidates_Receiver_Unread_Counter(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane"), school("u2", "Northside"))
	cache := newFakeCache()
	uc := NewSendMessageUseCase(repo, dir, cache)

	first, err := uc.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "hello"})
	req.NoError(err)

	// stale counter for the receiver
	key := UnreadCacheKey(first.ConversationID, "u2")
	req.NoError(cache.Set(context.Background(), key, "1", 0))

	_, err = uc.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "again"})
	req.NoError(err)

	_, err = cache.Get(context.Background(), key)
	req.Error(err) // miss: counter was invalidated
}
