package runtime

import (
	"chat-hub/domain"
	"sort"
	"sync"
	"time"
)

// DefaultTypingQuietPeriod is how long a typing signal lasts without renewal.
const DefaultTypingQuietPeriod = 700 * time.Millisecond

// TypingNotifier is told about every Idle->Typing and Typing->Idle transition.
// typists are the connections that were typing under name, so they can be left out.
// It is called with the coordinator lock held and must not call back into it.
type TypingNotifier func(target domain.Target, name string, active bool, typists []string)

type typingKey struct {
	target domain.Target
	name   string
}

type typingEntry struct {
	timer      *time.Timer
	generation uint64
	connIDs    map[string]struct{}
}

// Typing is the debounced typing state machine, one entry per (target, name).
// An entry exists exactly while the pair is in the Typing state. It remembers
// which connections typed under the name, so one of them leaving does not stop the others.
type Typing struct {
	mu          sync.Mutex
	quietPeriod time.Duration
	notify      TypingNotifier
	entries     map[typingKey]*typingEntry
	generation  uint64
}

func NewTyping(quietPeriod time.Duration, notify TypingNotifier) *Typing {
	if quietPeriod <= 0 {
		quietPeriod = DefaultTypingQuietPeriod
	}
	return &Typing{
		quietPeriod: quietPeriod,
		notify:      notify,
		entries:     make(map[typingKey]*typingEntry),
	}
}

// Start reports a keystroke from connID. The first one emits a start, every one
// re-arms the quiet timer.
func (t *Typing) Start(target domain.Target, name, connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := typingKey{target: target, name: name}
	t.generation++
	generation := t.generation

	entry, typing := t.entries[key]
	if typing {
		entry.timer.Stop()
	} else {
		entry = &typingEntry{connIDs: make(map[string]struct{})}
		t.entries[key] = entry
	}
	entry.connIDs[connID] = struct{}{}
	if !typing {
		t.notify(target, name, true, entry.typists())
	}
	entry.generation = generation
	entry.timer = time.AfterFunc(t.quietPeriod, func() {
		t.expire(key, generation)
	})
}

// Stop is an explicit stop signal from connID. The pair goes idle once no
// connection is typing under the name any more. It is a no-op for an idle pair.
func (t *Typing) Stop(target domain.Target, name, connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := typingKey{target: target, name: name}
	entry, ok := t.entries[key]
	if !ok {
		return
	}
	if _, known := entry.connIDs[connID]; !known {
		return
	}
	if len(entry.connIDs) > 1 {
		delete(entry.connIDs, connID)
		return
	}
	t.stopLocked(key)
}

// Clear drops the typing state connID holds under name on target, used when leaving.
func (t *Typing) Clear(target domain.Target, name, connID string) {
	t.Stop(target, name, connID)
}

func (t *Typing) IsTyping(target domain.Target, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[typingKey{target: target, name: name}]
	return ok
}

// Typists lists who is typing on target.
func (t *Typing) Typists(target domain.Target) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var names []string
	for key := range t.entries {
		if key.target == target {
			names = append(names, key.name)
		}
	}
	return names
}

// expire runs on the timer goroutine. A timer replaced by a fresher Start
// still fires if Stop lost the race, so it must match the current generation.
func (t *Typing) expire(key typingKey, generation uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[key]
	if !ok || entry.generation != generation {
		return
	}
	t.stopLocked(key)
}

func (t *Typing) stopLocked(key typingKey) {
	entry, ok := t.entries[key]
	if !ok {
		return
	}
	entry.timer.Stop()
	delete(t.entries, key)
	t.notify(key.target, key.name, false, entry.typists())
}

func (e *typingEntry) typists() []string {
	ids := make([]string, 0, len(e.connIDs))
	for id := range e.connIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
