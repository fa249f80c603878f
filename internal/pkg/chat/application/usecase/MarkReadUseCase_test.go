package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedConversation(t *testing.T, repo *fakeChatRepo, dir *fakeDirectory) string {
	t.Helper()
	req := require.New(t)
	send := NewSendMessageUseCase(repo, dir, nil)

	msg, err := send.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "hello"})
	req.NoError(err)
	_, err = send.Execute(context.Background(), SendMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "are you there?"})
	req.NoError(err)
	return msg.ConversationID
}

func Test_MarkRead_Flips_Peer_Messages_And_Appends_Receipts(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane"), school("u2", "Northside"))
	convID := seedConversation(t, repo, dir)

	uc := NewMarkReadUseCase(repo, nil)
	n, err := uc.Execute(context.Background(), MarkReadInput{ConversationID: convID, UserID: "u2"})
	req.NoError(err)
	req.EqualValues(2, n)

	msgs, err := repo.ListMessages(context.Background(), convID, 0, 0)
	req.NoError(err)
	for _, m := range msgs {
		req.True(m.Read)
		req.Len(m.ReadBy, 1)
		req.Equal("u2", m.ReadBy[0].UserID)
	}
}

func Test_MarkRead_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane"), school("u2", "Northside"))
	convID := seedConversation(t, repo, dir)

	uc := NewMarkReadUseCase(repo, nil)
	n, err := uc.Execute(context.Background(), MarkReadInput{ConversationID: convID, UserID: "u2"})
	req.NoError(err)
	req.EqualValues(2, n)

	// repeat: nothing left unread, no duplicate receipts
	n, err = uc.Execute(context.Background(), MarkReadInput{ConversationID: convID, UserID: "u2"})
	req.NoError(err)
	req.EqualValues(0, n)

	unread, err := repo.CountUnread(context.Background(), convID, "u2")
	req.NoError(err)
	req.EqualValues(0, unread)

	msgs, err := repo.ListMessages(context.Background(), convID, 0, 0)
	req.NoError(err)
	for _, m := range msgs {
		req.Len(m.ReadBy, 1)
	}
}

func Test_MarkRead_Does_Not_Touch_Own_Messages(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane"), school("u2", "Northside"))
	convID := seedConversation(t, repo, dir)

	// the sender marking read changes nothing: every message is theirs
	uc := NewMarkReadUseCase(repo, nil)
	n, err := uc.Execute(context.Background(), MarkReadInput{ConversationID: convID, UserID: "u1"})
	req.NoError(err)
	req.EqualValues(0, n)

	unread, err := repo.CountUnread(context.Background(), convID, "u2")
	req.NoError(err)
	req.EqualValues(2, unread)
}

func Test_MarkRead_Invalidates_Cached_Counter(t *testing.T) {
	req := require.New(t)
	repo := newFakeChatRepo()
	dir := newFakeDirectory(candidate("u1", "Jane"), school("u2", "Northside"))
	convID := seedConversation(t, repo, dir)

	cache := newFakeCache()
	key := UnreadCacheKey(convID, "u2")
	req.NoError(cache.Set(context.Background(), key, "2", 0))

	uc := NewMarkReadUseCase(repo, cache)
	_, err := uc.Execute(context.Background(), MarkReadInput{ConversationID: convID, UserID: "u2"})
	req.NoError(err)

	_, err = cache.Get(context.Background(), key)
	req.Error(err)
}
