package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	chat "subdesk/internal/pkg/chat/application/domain"
	repository "subdesk/internal/pkg/chat/persistence/repository/port"
	directory "subdesk/internal/repository/port"
)

// ListConversationsInput wraps the member whose conversations are listed.
type ListConversationsInput struct {
	UserID string
}

// ConversationSummary pairs a conversation with the other party's directory
// record so the client can label the thread.
type ConversationSummary struct {
	Conversation chat.Conversation
	Peer         directory.Participant
}

// ListConversationsUseCase returns the user's conversations enriched with
// the peer's display name.
type ListConversationsUseCase struct {
	Repo repository.ChatRepository
	Dir  directory.Directory
}

func NewListConversationsUseCase(repo repository.ChatRepository, dir directory.Directory) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Dir: dir}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]ConversationSummary, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("userId is required")
	}

	convs, err := uc.Repo.ListConversationsByMember(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		peer, ok := lo.Find(conv.Members, func(m chat.Member) bool { return m.ID != in.UserID })
		if !ok {
			// membership row without a counterpart; skip rather than fail the list
			continue
		}

		p, err := uc.Dir.FindParticipant(ctx, peer.ID)
		if errors.Is(err, directory.ErrParticipantNotFound) {
			// deleted account; keep the thread with the raw id as its label
			p = directory.Participant{ID: peer.ID, Kind: peer.Kind, DisplayName: peer.ID}
		} else if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}

		summaries = append(summaries, ConversationSummary{Conversation: conv, Peer: p})
	}
	return summaries, nil
}
