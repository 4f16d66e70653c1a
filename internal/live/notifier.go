// Package live provides table change notifications, self-refreshing query
// subscriptions and a switch-latest task runner.
package live

import "sync"

// Notifier fans out table change signals to subscribers.
// Signals are coalesced: a subscriber that has not yet consumed a pending
// signal will not receive a second one, only the fact that something changed.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]chan struct{}
}

// NewNotifier creates an empty notifier
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[uint64]chan struct{})}
}

// Notify signals every subscriber watching any of the given tables
func (n *Notifier) Notify(tables ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	signalled := make(map[uint64]bool)
	for _, table := range tables {
		for id, ch := range n.subs[table] {
			if signalled[id] {
				continue
			}
			signalled[id] = true
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// Subscribe returns a channel that receives a signal after any change to one
// of the tables, and a function that removes the subscription.
func (n *Notifier) Subscribe(tables ...string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	for _, table := range tables {
		if n.subs[table] == nil {
			n.subs[table] = make(map[uint64]chan struct{})
		}
		n.subs[table][id] = ch
	}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			for _, table := range tables {
				delete(n.subs[table], id)
				if len(n.subs[table]) == 0 {
					delete(n.subs, table)
				}
			}
		})
	}
}

// Subscribers reports how many subscriptions watch the table
func (n *Notifier) Subscribers(table string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[table])
}
