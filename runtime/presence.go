package runtime

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Presence maps live connections to the display name they registered.
// Anonymous connections are tracked with an empty name.
type Presence struct {
	mu    sync.RWMutex
	names map[string]string // connection id -> display name
}

func NewPresence() *Presence {
	return &Presence{names: make(map[string]string)}
}

// Connect tracks a connection that has not registered a name yet.
func (p *Presence) Connect(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.names[connID]; !ok {
		p.names[connID] = ""
	}
}

// Register associates name with the connection, overwriting any previous one.
func (p *Presence) Register(connID, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[connID] = name
}

func (p *Presence) Name(connID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.names[connID]
	return name, ok && name != ""
}

// Names returns the distinct names currently held by any live connection, sorted.
func (p *Presence) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := lo.Uniq(lo.Filter(lo.Values(p.names), func(name string, _ int) bool {
		return name != ""
	}))
	sort.Strings(names)
	return names
}

func (p *Presence) Remove(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.names, connID)
}

// Connections counts live connections, registered or not.
func (p *Presence) Connections() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.names)
}
