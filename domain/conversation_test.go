package domain

import (
	"chat-hub/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveConversationKey_IsOrderIndependent(t *testing.T) {
	req := require.New(t)
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"Zoé", "zoe"},
		{"a:b", "c"},
		{"same", "same"},
	}
	for _, p := range pairs {
		ab, err := DeriveConversationKey(p[0], p[1])
		req.NoError(err)
		ba, err := DeriveConversationKey(p[1], p[0])
		req.NoError(err)
		req.Equal(ab, ba, "pair %v", p)
	}
}

func TestDeriveConversationKey_DistinctPairsDoNotCollide(t *testing.T) {
	req := require.New(t)
	names := []string{"alice", "bob", "carol", "a", "a:b", "b", "b:c", "c", "a:", ":b", "dm:1:a"}
	seen := make(map[ConversationKey][2]string)
	for i := range names {
		for j := i; j < len(names); j++ {
			key, err := DeriveConversationKey(names[i], names[j])
			req.NoError(err)
			if prev, ok := seen[key]; ok {
				req.Failf("collision", "%v and %v share %q", prev, [2]string{names[i], names[j]}, key)
			}
			seen[key] = [2]string{names[i], names[j]}
		}
	}
}

func TestDeriveConversationKey_RejectsEmptyNames(t *testing.T) {
	req := require.New(t)
	_, err := DeriveConversationKey("alice", "  ")
	req.ErrorIs(err, errors.ErrEmptyName)
	_, err = DeriveConversationKey("", "bob")
	req.ErrorIs(err, errors.ErrEmptyName)
}

func TestParticipants_AreSorted(t *testing.T) {
	req := require.New(t)
	pair, err := Participants("bob", " alice ")
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, pair)
}

func TestMessage_Target(t *testing.T) {
	req := require.New(t)
	key, err := DeriveConversationKey("alice", "bob")
	req.NoError(err)

	req.Equal(RoomTarget("general"), Message{Room: "general"}.Target())
	req.Equal(PrivateTarget(key), Message{IsPrivate: true, Participants: []string{"alice", "bob"}}.Target())
	req.True(Message{IsPrivate: true}.Target().IsZero())
}

func TestTarget_GroupIsNamespacedByKind(t *testing.T) {
	req := require.New(t)
	req.NotEqual(RoomTarget("x").Group(), PrivateTarget("x").Group())
}
