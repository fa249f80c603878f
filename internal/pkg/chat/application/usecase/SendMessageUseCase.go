package usecase

import (
	"context"
	"errors"
	"fmt"

	cacheport "subdesk/internal/infrastructure/cache/port"
	chat "subdesk/internal/pkg/chat/application/domain"
	repository "subdesk/internal/pkg/chat/persistence/repository/port"
	directory "subdesk/internal/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
// SenderID is the authenticated caller; it is never taken from an
// unauthenticated payload on the realtime path.
type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	Content    string
}

// SendMessageUseCase resolves (or creates) the conversation between the two
// parties and persists the message against it.
// Hexagonal: depends on repository/directory ports, returns domain entities.
type SendMessageUseCase struct {
	Repo  repository.ChatRepository
	Dir   directory.Directory
	Cache cacheport.Cache // optional; unread counters invalidated on send
}

func NewSendMessageUseCase(repo repository.ChatRepository, dir directory.Directory, cache cacheport.Cache) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Dir: dir, Cache: cache}
}

// Execute sends a message, creating the pair's conversation when absent.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.SenderID == "" || in.ReceiverID == "" {
		return nil, fmt.Errorf("senderId and receiverId are required")
	}
	if in.SenderID == in.ReceiverID {
		return nil, chat.ErrSelfConversation
	}

	sender, err := uc.lookup(ctx, in.SenderID)
	if err != nil {
		return nil, err
	}
	receiver, err := uc.lookup(ctx, in.ReceiverID)
	if err != nil {
		return nil, err
	}

	conv, err := uc.Repo.FindOrCreateConversation(ctx,
		chat.Member{ID: sender.ID, Kind: sender.Kind},
		chat.Member{ID: receiver.ID, Kind: receiver.Kind},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msg, err := chat.NewMessage(chat.Message{
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		Body:           in.Content,
	})
	if err != nil {
		return nil, err
	}

	// Persist letting the store generate the ID
	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	if uc.Cache != nil {
		_, _ = uc.Cache.Del(ctx, UnreadCacheKey(conv.ID, in.ReceiverID))
	}

	return msg, nil
}

func (uc *SendMessageUseCase) lookup(ctx context.Context, id string) (directory.Participant, error) {
	p, err := uc.Dir.FindParticipant(ctx, id)
	if errors.Is(err, directory.ErrParticipantNotFound) {
		return directory.Participant{}, chat.ErrUnknownParticipant
	}
	if err != nil {
		return directory.Participant{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return p, nil
}
