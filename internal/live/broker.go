// Package live implements reactive read views: committed store mutations
// invalidate per-table topics, and live queries re-run and fan fresh
// snapshots out to every subscriber.
package live

import "sync"

// Broker routes table-level invalidation signals to watching queries. The
// storage layer calls Invalidate after each committed write.
type Broker struct {
	watchers map[string]map[int64]func()
	mu       sync.Mutex
	nextID   int64
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		watchers: make(map[string]map[int64]func()),
	}
}

// Invalidate signals every watcher registered for any of the given tables.
// Implements service.Notifier.
func (b *Broker) Invalidate(tables ...string) {
	b.mu.Lock()
	// A watcher registered for several touched tables fires once.
	seen := make(map[int64]struct{})
	var callbacks []func()
	for _, table := range tables {
		for id, fn := range b.watchers[table] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			callbacks = append(callbacks, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// watch registers fn against the given tables and returns its removal
// handle.
func (b *Broker) watch(tables []string, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	for _, table := range tables {
		if b.watchers[table] == nil {
			b.watchers[table] = make(map[int64]func())
		}
		b.watchers[table][id] = fn
	}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, table := range tables {
			delete(b.watchers[table], id)
		}
	}
}
