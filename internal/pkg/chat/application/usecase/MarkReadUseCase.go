package usecase

import (
	"context"
	"fmt"
	"time"

	cacheport "subdesk/internal/infrastructure/cache/port"
	repository "subdesk/internal/pkg/chat/persistence/repository/port"
)

// MarkReadInput identifies the conversation and the reader.
type MarkReadInput struct {
	ConversationID string
	UserID         string
}

// MarkReadUseCase flips every unread peer message in the conversation and
// records a receipt per message. Safe to repeat: the second call finds
// nothing left unread.
type MarkReadUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional
}

func NewMarkReadUseCase(repo repository.ChatRepository, cache cacheport.Cache) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo, Cache: cache}
}

// Execute returns the number of messages newly marked read.
func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (int64, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return 0, fmt.Errorf("chatId and userId are required")
	}

	n, err := uc.Repo.MarkConversationRead(ctx, in.ConversationID, in.UserID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		_, _ = uc.Cache.Del(ctx, UnreadCacheKey(in.ConversationID, in.UserID))
	}
	return n, nil
}
