package repository

import (
	"context"
	"errors"

	chat "subdesk/internal/pkg/chat/application/domain"
)

// ErrParticipantNotFound signals a lookup for an account id that does not
// exist in the marketplace directory.
var ErrParticipantNotFound = errors.New("directory: participant not found")

// Participant is a chat-capable account as seen by the marketplace
// directory: either a substitute-teacher candidate or a school.
type Participant struct {
	ID          string
	Kind        chat.MemberKind
	DisplayName string
}

// Directory resolves account ids to display data. The chat service does not
// own accounts; it reads the tables the marketplace application maintains.
type Directory interface {
	FindParticipant(ctx context.Context, id string) (Participant, error)
}
