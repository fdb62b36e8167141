package hooks

import (
	"fmt"
	"sync"
)

// HookType identifies the kind of hook call for debug order validation.
type HookType uint8

const (
	HookState HookType = iota + 1
	HookReducer
	HookEffect
	HookMemo
	HookCallback
	HookRef
)

// String returns a human-readable name for the hook type.
func (h HookType) String() string {
	switch h {
	case HookState:
		return "UseState"
	case HookReducer:
		return "UseReducer"
	case HookEffect:
		return "UseEffect"
	case HookMemo:
		return "UseMemo"
	case HookCallback:
		return "UseCallback"
	case HookRef:
		return "UseRef"
	default:
		return "Unknown"
	}
}

// Scope holds the ordered slot table for one component identity.
//
// Slot indices are assigned strictly by call order within one render
// pass; slot storage is never cleared between renders. A Scope is meant
// for single-threaded, cooperative render passes: concurrent renders of
// the same Scope corrupt each other's slot cursor.
type Scope struct {
	key string

	// slots stores one cell per hook call, indexed by call order.
	slots []any

	// idx is the cursor for the current render pass.
	idx int

	// renders counts completed render passes.
	renders int

	// debug order validation, recorded on the first render.
	debug bool
	order []HookType
}

// Key returns the component key this scope is stored under.
func (s *Scope) Key() string { return s.key }

// Renders returns the number of completed render passes.
func (s *Scope) Renders() int { return s.renders }

// Render executes fn as one render pass of this scope's component.
// The hook-call cursor is reset before fn runs and again after it
// returns, whether or not fn panicked. This boundary is the only reset
// point; slot storage itself survives.
func (s *Scope) Render(fn func()) {
	s.idx = 0
	defer func() {
		s.idx = 0
		s.renders++
	}()
	fn()
}

// next advances the cursor and returns the current slot, if allocated.
func (s *Scope) next(ht HookType) (idx int, existing any, ok bool) {
	s.track(ht)

	idx = s.idx
	s.idx++

	if idx < len(s.slots) {
		return idx, s.slots[idx], true
	}
	return idx, nil, false
}

// store appends the cell for a freshly allocated slot. The index must be
// the one handed out by next for this call.
func (s *Scope) store(idx int, cell any) {
	if idx != len(s.slots) {
		panic(fmt.Sprintf("hooks: slot %d allocated out of order (have %d slots)", idx, len(s.slots)))
	}
	s.slots = append(s.slots, cell)
}

// track validates hook call order in debug mode. The first render
// records the expected sequence; later renders panic on divergence.
func (s *Scope) track(ht HookType) {
	if !s.debug {
		return
	}
	if s.renders == 0 {
		s.order = append(s.order, ht)
		return
	}
	if s.idx >= len(s.order) {
		panic(fmt.Sprintf("hooks: extra %s call at index %d in %q", ht, s.idx, s.key))
	}
	if expected := s.order[s.idx]; expected != ht {
		panic(fmt.Sprintf("hooks: call order changed at index %d in %q: expected %s, got %s",
			s.idx, s.key, expected, ht))
	}
}

// Manager is the registry of hook scopes, keyed by an explicit component
// key owned by the host. Scopes are created on first reference and live
// until Drop or Clear; there is no automatic collection.
type Manager struct {
	mu     sync.Mutex
	scopes map[string]*Scope
	debug  bool
}

// NewManager creates an empty scope registry.
func NewManager() *Manager {
	return &Manager{scopes: make(map[string]*Scope)}
}

// SetDebug toggles hook-order validation for scopes created afterward.
func (m *Manager) SetDebug(debug bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debug = debug
}

// Scope returns the slot table for the given component key, creating it
// on first reference.
func (m *Manager) Scope(key string) *Scope {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.scopes[key]; ok {
		return s
	}
	s := &Scope{key: key, debug: m.debug}
	m.scopes[key] = s
	return s
}

// Drop discards the scope for one component key.
func (m *Manager) Drop(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scopes, key)
}

// Clear discards all scopes.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scopes = make(map[string]*Scope)
}

// Len returns the number of live scopes.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopes)
}
