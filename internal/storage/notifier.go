package storage

import (
	"sync"
)

// Table identifies a notification scope. Observers re-run their query on
// every write to a table they watch, which is cheap at personal-finance
// data sizes.
type Table string

const (
	TableLedgers      Table = "ledgers"
	TableCategories   Table = "categories"
	TableTransactions Table = "transactions"
)

// Notifier fans out write notifications to query observers. Signals are
// coalesced: a subscriber that has not consumed the previous signal yet
// receives a single combined one.
type Notifier struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]*subscriber
}

type subscriber struct {
	tables map[Table]bool
	signal chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int64]*subscriber)}
}

// Subscribe registers interest in writes to the given tables. The returned
// channel carries coalesced signals; the cancel function unregisters the
// subscription and must be called exactly once.
func (n *Notifier) Subscribe(tables ...Table) (<-chan struct{}, func()) {
	sub := &subscriber{
		tables: make(map[Table]bool, len(tables)),
		signal: make(chan struct{}, 1),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[id] = sub
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
	return sub.signal, cancel
}

// Notify signals every subscriber watching the given table. Non-blocking:
// a full signal buffer means a notification is already pending.
func (n *Notifier) Notify(table Table) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sub := range n.subs {
		if !sub.tables[table] {
			continue
		}
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}
