package hooks

import "sync"

// subscription is one registered listener on a store entry.
type subscription struct {
	id int
	fn func(any)
}

// storeEntry holds one shared value and its listeners in registration
// order.
type storeEntry struct {
	value  any
	subs   []subscription
	nextID int
}

// Store holds state shared across component scopes. Entries are created
// on first reference and writes notify subscribers synchronously, in
// registration order.
type Store struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
}

// NewStore creates an empty shared-state store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*storeEntry)}
}

// defaultStore backs the package-level helpers.
var defaultStore = NewStore()

// DefaultStore returns the process-wide shared store.
func DefaultStore() *Store { return defaultStore }

// Get returns the value under key, creating the entry with initial if it
// does not exist yet. The initial value of the first caller wins.
func (st *Store) Get(key string, initial any) any {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.entry(key, initial).value
}

// Set overwrites the value under key and notifies subscribers in
// registration order. Notification is synchronous; Set returns after the
// last subscriber has run.
func (st *Store) Set(key string, value any) {
	st.mu.Lock()
	e := st.entry(key, value)
	e.value = value
	subs := make([]subscription, len(e.subs))
	copy(subs, e.subs)
	st.mu.Unlock()

	for _, sub := range subs {
		sub.fn(value)
	}
}

// Subscribe registers fn to run on every Set of key. The returned
// function removes the subscription; calling it more than once is a
// no-op.
func (st *Store) Subscribe(key string, initial any, fn func(any)) func() {
	st.mu.Lock()
	e := st.entry(key, initial)
	id := e.nextID
	e.nextID++
	e.subs = append(e.subs, subscription{id: id, fn: fn})
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		for i, sub := range e.subs {
			if sub.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Drop removes the entry and its subscribers for key.
func (st *Store) Drop(key string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.entries, key)
}

// entry returns the record for key, creating it with initial. Callers
// must hold st.mu.
func (st *Store) entry(key string, initial any) *storeEntry {
	if e, ok := st.entries[key]; ok {
		return e
	}
	e := &storeEntry{value: initial}
	st.entries[key] = e
	return e
}

// UseGlobal reads shared state from st under key, consuming one slot in
// the calling scope so that hook order validation covers it. The setter
// writes through to the store; every scope reading the same key observes
// the new value on its next render.
func UseGlobal[T any](sc *Scope, st *Store, key string, initial T) (T, func(T)) {
	idx, _, ok := sc.next(HookState)
	if !ok {
		sc.store(idx, key)
	}

	value := st.Get(key, initial).(T)
	set := func(v T) { st.Set(key, v) }
	return value, set
}
