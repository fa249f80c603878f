package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "subdesk/internal/pkg/chat/application/domain"
	repository "subdesk/internal/pkg/chat/persistence/repository/port"
)

// GetMessageInput carries parameters to fetch messages of a conversation
type GetMessageInput struct {
	ConversationID string
	Limit          int
	Offset         int
}

// GetMessageUseCase fetches messages for a given conversation in ascending
// created_at order.
// Hexagonal: depends only on repository port
type GetMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessageUseCase(repo repository.ChatRepository) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo}
}

// Execute returns messages for the conversation honoring limit/offset
func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("chatId is required")
	}

	if _, err := uc.Repo.GetConversation(ctx, in.ConversationID); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
