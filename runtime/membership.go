package runtime

import (
	"chat-hub/domain"
	"sort"
	"sync"

	"github.com/samber/lo"
)

type memberSet map[string]string // connection id -> display name

// Membership tracks who is joined to which room or private conversation.
// A connection is joined to at most one target: current is updated under the
// same lock as the member sets, so joining a second target always evicts the first.
type Membership struct {
	mu      sync.RWMutex
	members map[domain.Target]memberSet
	current map[string]domain.Target // connection id -> joined target
}

// Departure describes the target a connection just left.
type Departure struct {
	Target    domain.Target
	Name      string   // name the connection was joined under
	Remaining []string // names still joined
	ConnIDs   []string // connections still joined
}

type Rename struct {
	Target   domain.Target
	Previous string
	Members  []string
}

type JoinResult struct {
	Members []string
	Left    *Departure
}

func NewMembership() *Membership {
	return &Membership{
		members: make(map[domain.Target]memberSet),
		current: make(map[string]domain.Target),
	}
}

// Join leaves whatever target the connection occupied, then adds it to target.
// Joining the current target again only refreshes the name: nobody leaves.
func (m *Membership) Join(target domain.Target, connID, name string) JoinResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result JoinResult
	if current, ok := m.current[connID]; !ok || current != target {
		if departure, ok := m.leaveLocked(connID); ok {
			result.Left = &departure
		}
	}

	set, ok := m.members[target]
	if !ok {
		set = make(memberSet)
		m.members[target] = set
	}
	set[connID] = name
	m.current[connID] = target

	result.Members = set.names()
	return result
}

// Rename changes the name the connection is joined under.
// It returns the target and its members, false when the connection is not joined.
func (m *Membership) Rename(connID, name string) (Rename, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.current[connID]
	if !ok {
		return Rename{}, false
	}
	set := m.members[target]
	previous := set[connID]
	set[connID] = name
	return Rename{Target: target, Previous: previous, Members: set.names()}, true
}

// LeaveCurrent removes the connection from its target, if it has one.
func (m *Membership) LeaveCurrent(connID string) (Departure, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(connID)
}

func (m *Membership) leaveLocked(connID string) (Departure, bool) {
	target, ok := m.current[connID]
	if !ok {
		return Departure{}, false
	}
	delete(m.current, connID)

	set := m.members[target]
	name := set[connID]
	delete(set, connID)
	if len(set) == 0 {
		// No one left: drop the entry so the map does not grow forever
		delete(m.members, target)
	}
	return Departure{Target: target, Name: name, Remaining: set.names(), ConnIDs: set.connIDs()}, true
}

// Snapshot returns the names joined to target, sorted. Duplicates are kept
// when several connections share a name.
func (m *Membership) Snapshot(target domain.Target) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.members[target].names()
}

func (m *Membership) Members(target domain.Target) []domain.Member {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := lo.MapToSlice(m.members[target], func(connID, name string) domain.Member {
		return domain.Member{ConnID: connID, Name: name}
	})
	sort.Slice(members, func(i, j int) bool { return members[i].ConnID < members[j].ConnID })
	return members
}

func (m *Membership) Current(connID string) (domain.Target, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	target, ok := m.current[connID]
	return target, ok
}

// Targets counts rooms and conversations with at least one member.
func (m *Membership) Targets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members)
}

func (s memberSet) names() []string {
	names := lo.Values(s)
	sort.Strings(names)
	return names
}

func (s memberSet) connIDs() []string {
	ids := lo.Keys(s)
	sort.Strings(ids)
	return ids
}
