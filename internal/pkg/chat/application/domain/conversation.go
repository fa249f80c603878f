package chat

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Domain-level errors for chat behaviors
var (
	ErrNotMember          = errors.New("chat: user is not a member of the conversation")
	ErrSelfConversation   = errors.New("chat: sender and receiver are the same account")
	ErrUnknownParticipant = errors.New("chat: participant does not exist")
)

// MemberKind tags a conversation member as an individual account or a school.
type MemberKind string

const (
	MemberKindUser   MemberKind = "user"
	MemberKindSchool MemberKind = "school"
)

// Member is one of the two parties of a conversation.
type Member struct {
	ID   string     `db:"user_id"`
	Kind MemberKind `db:"kind"`
}

// Conversation is a 1:1 thread between a candidate and a school.
// Members always has exactly two entries once persisted; order carries no meaning.
type Conversation struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	Members   []Member  `db:"-"`
}

// HasMember tells whether userID is part of this conversation.
func (c Conversation) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// Peer returns the member that is not userID. ok is false for a
// conversation the user does not belong to.
func (c Conversation) Peer(userID string) (Member, bool) {
	if !c.HasMember(userID) {
		return Member{}, false
	}
	for _, m := range c.Members {
		if m.ID != userID {
			return m, true
		}
	}
	return Member{}, false
}

// PairKey derives the unique key for the unordered participant pair.
// Creation races between the same two users collapse onto this key, so at
// most one conversation can exist per pair.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}
