package runtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresence_Register_And_Remove(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	// Given two connections, one anonymous
	presence.Connect("c1")
	presence.Connect("c2")
	presence.Register("c1", "alice")

	// Then only the registered name is listed
	req.Equal([]string{"alice"}, presence.Names())
	req.Equal(2, presence.Connections())
	_, ok := presence.Name("c2")
	req.False(ok)

	// When the registered connection leaves
	presence.Remove("c1")

	// Then the name is gone
	req.Empty(presence.Names())
	req.Equal(1, presence.Connections())
}

func TestPresence_Names_Are_Distinct(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	// Given two connections sharing a name
	presence.Register("c1", "alice")
	presence.Register("c2", "alice")
	presence.Register("c3", "bob")
	req.Equal([]string{"alice", "bob"}, presence.Names())

	// When one of them disconnects
	presence.Remove("c1")

	// Then the name is still listed thanks to the other connection
	req.Equal([]string{"alice", "bob"}, presence.Names())

	presence.Remove("c2")
	req.Equal([]string{"bob"}, presence.Names())
}

func TestPresence_Register_Overwrites(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	presence.Register("c1", "alice")
	presence.Register("c1", "alicia")

	name, ok := presence.Name("c1")
	req.True(ok)
	req.Equal("alicia", name)
	req.Equal([]string{"alicia"}, presence.Names())
}

func TestPresence_Remove_Unknown_Is_NoOp(t *testing.T) {
	presence := NewPresence()
	presence.Remove("nobody")
	require.Empty(t, presence.Names())
}

func TestPresence_Concurrent_Access(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("c%d", i)
			presence.Register(connID, fmt.Sprintf("user%d", i%5))
			_ = presence.Names()
			if i%2 == 0 {
				presence.Remove(connID)
			}
		}(i)
	}
	wg.Wait()

	req.Equal(25, presence.Connections())
	req.Len(presence.Names(), 5)
}
