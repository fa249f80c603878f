package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_PairKey_Is_Order_Insensitive(t *testing.T) {
	req := require.New(t)

	req.Equal(PairKey("u1", "s9"), PairKey("s9", "u1"))
	req.Equal("s9:u1", PairKey("u1", "s9"))
}

func Test_Conversation_Membership(t *testing.T) {
	req := require.New(t)

	conv := Conversation{
		ID: "c1",
		Members: []Member{
			{ID: "u1", Kind: MemberKindUser},
			{ID: "s1", Kind: MemberKindSchool},
		},
	}

	req.True(conv.HasMember("u1"))
	req.True(conv.HasMember("s1"))
	req.False(conv.HasMember("u2"))

	peer, ok := conv.Peer("u1")
	req.True(ok)
	req.Equal("s1", peer.ID)
	req.Equal(MemberKindSchool, peer.Kind)

	_, ok = conv.Peer("stranger")
	req.False(ok)
}
