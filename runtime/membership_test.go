package runtime

import (
	"chat-hub/domain"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMembership_Join_One_Room_Multiple_Participants(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	general := domain.RoomTarget("general")

	// When participants join a room
	first := membership.Join(general, "c1", "alice")
	second := membership.Join(general, "c2", "bob")

	// Then each join returns the snapshot after the join
	req.Equal([]string{"alice"}, first.Members)
	req.Nil(first.Left)
	req.Equal([]string{"alice", "bob"}, second.Members)
	req.Equal([]string{"alice", "bob"}, membership.Snapshot(general))
	req.Equal(1, membership.Targets())
}

func TestMembership_Join_Second_Target_Evicts_First(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	general := domain.RoomTarget("general")
	random := domain.RoomTarget("random")

	// Given alice and bob in general
	membership.Join(general, "c1", "alice")
	membership.Join(general, "c2", "bob")

	// When alice joins another room
	result := membership.Join(random, "c1", "alice")

	// Then she left general, which is told who remains
	req.NotNil(result.Left)
	req.Equal(general, result.Left.Target)
	req.Equal([]string{"bob"}, result.Left.Remaining)
	req.Equal([]string{"c2"}, result.Left.ConnIDs)

	// And she only appears in random
	req.Equal([]string{"bob"}, membership.Snapshot(general))
	req.Equal([]string{"alice"}, membership.Snapshot(random))
	current, ok := membership.Current("c1")
	req.True(ok)
	req.Equal(random, current)
}

func TestMembership_Join_Private_Evicts_Room(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	general := domain.RoomTarget("general")
	key, err := domain.DeriveConversationKey("alice", "bob")
	req.NoError(err)
	private := domain.PrivateTarget(key)

	// Given alice in general
	membership.Join(general, "c1", "alice")

	// When she opens a private conversation
	result := membership.Join(private, "c1", "alice")

	// Then she is no longer in the room
	req.NotNil(result.Left)
	req.Equal(general, result.Left.Target)
	req.Empty(membership.Snapshot(general))
	req.Equal([]string{"alice"}, membership.Snapshot(private))

	// And joining back the room evicts the private target
	result = membership.Join(general, "c1", "alice")
	req.Equal(private, result.Left.Target)
	req.Empty(membership.Snapshot(private))
}

func TestMembership_At_Most_One_Target_Per_Connection(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	key, err := domain.DeriveConversationKey("alice", "bob")
	req.NoError(err)
	targets := []domain.Target{
		domain.RoomTarget("general"),
		domain.RoomTarget("random"),
		domain.PrivateTarget(key),
		domain.RoomTarget("general"),
	}

	for _, target := range targets {
		membership.Join(target, "c1", "alice")

		// Then the connection is found in exactly one target
		found := 0
		for _, candidate := range targets[:3] {
			for _, member := range membership.Members(candidate) {
				if member.ConnID == "c1" {
					found++
				}
			}
		}
		req.Equal(1, found, "after joining %s", target)
	}
}

func TestMembership_LeaveCurrent(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	general := domain.RoomTarget("general")

	// Given a connection that never joined anything
	_, ok := membership.LeaveCurrent("c1")
	req.False(ok)

	// Given alice alone in general
	membership.Join(general, "c1", "alice")

	// When she leaves
	departure, ok := membership.LeaveCurrent("c1")

	// Then the room is empty and dropped
	req.True(ok)
	req.Equal(general, departure.Target)
	req.Empty(departure.Remaining)
	req.Equal(0, membership.Targets())
	_, ok = membership.Current("c1")
	req.False(ok)
}

func TestMembership_Concurrent_Leaves(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	general := domain.RoomTarget("general")

	for i := 0; i < 100; i++ {
		membership.Join(general, fmt.Sprintf("c%d", i), fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			membership.LeaveCurrent(fmt.Sprintf("c%d", i))
		}(i)
	}
	wg.Wait()

	req.Empty(membership.Snapshot(general))
	req.Equal(0, membership.Targets())
}

func TestMembership_Rejoin_Same_Target_Is_Not_A_Departure(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	general := domain.RoomTarget("general")
	membership.Join(general, "c1", "alice")
	membership.Join(general, "c2", "bob")

	// When alice joins general again under another name
	result := membership.Join(general, "c1", "alicia")

	// Then she never left and only her name changed
	req.Nil(result.Left)
	req.Equal([]string{"alicia", "bob"}, result.Members)
	current, ok := membership.Current("c1")
	req.True(ok)
	req.Equal(general, current)
}

func TestMembership_Rename(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	general := domain.RoomTarget("general")

	// Given a connection that is not joined, nothing is renamed
	_, ok := membership.Rename("c1", "alice")
	req.False(ok)

	// When a joined connection is renamed
	membership.Join(general, "c1", "alice")
	membership.Join(general, "c2", "bob")
	renamed, ok := membership.Rename("c1", "alicia")

	// Then the target and the previous name come back with the new members
	req.True(ok)
	req.Equal(Rename{Target: general, Previous: "alice", Members: []string{"alicia", "bob"}}, renamed)
	req.Equal([]string{"alicia", "bob"}, membership.Snapshot(general))
}
