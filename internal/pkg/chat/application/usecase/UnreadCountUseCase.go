package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	cacheport "subdesk/internal/infrastructure/cache/port"
	repository "subdesk/internal/pkg/chat/persistence/repository/port"
)

// unread counters are cheap to recompute; a short TTL keeps badge polling
// off the database without holding stale counts for long.
const unreadCacheTTL = 30 * time.Second

// UnreadCacheKey is the cache key for a (conversation, reader) counter.
func UnreadCacheKey(conversationID, userID string) string {
	return "chat:unread:" + conversationID + ":" + userID
}

// UnreadCountInput identifies the conversation and the reader.
type UnreadCountInput struct {
	ConversationID string
	UserID         string
}

// UnreadCountUseCase counts messages not sent by the user that are still
// unread, read-through cached.
type UnreadCountUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional
}

func NewUnreadCountUseCase(repo repository.ChatRepository, cache cacheport.Cache) *UnreadCountUseCase {
	return &UnreadCountUseCase{Repo: repo, Cache: cache}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, in UnreadCountInput) (int64, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return 0, fmt.Errorf("chatId and userId are required")
	}

	key := UnreadCacheKey(in.ConversationID, in.UserID)
	if uc.Cache != nil {
		if v, err := uc.Cache.Get(ctx, key); err == nil {
			if n, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				return n, nil
			}
		}
	}

	n, err := uc.Repo.CountUnread(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		_ = uc.Cache.Set(ctx, key, strconv.FormatInt(n, 10), unreadCacheTTL)
	}
	return n, nil
}
