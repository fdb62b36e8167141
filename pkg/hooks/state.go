package hooks

// stateCell is the slot storage for UseState and UseReducer.
type stateCell[T any] struct {
	value T
}

// Setter updates a state slot. Writes are synchronous and do not trigger
// a re-render; the host re-invokes the component to observe new values.
type Setter[T any] struct {
	cell *stateCell[T]
}

// Set stores a direct value.
func (s *Setter[T]) Set(value T) {
	s.cell.value = value
}

// Update stores the result of applying fn to the previous value.
func (s *Setter[T]) Update(fn func(T) T) {
	s.cell.value = fn(s.cell.value)
}

// UseState allocates a state slot holding initial on the first render
// and returns the slot's current value together with its setter.
func UseState[T any](sc *Scope, initial T) (T, *Setter[T]) {
	idx, existing, ok := sc.next(HookState)

	var cell *stateCell[T]
	if ok {
		cell = existing.(*stateCell[T])
	} else {
		cell = &stateCell[T]{value: initial}
		sc.store(idx, cell)
	}

	return cell.value, &Setter[T]{cell: cell}
}

// UseReducer allocates a state slot managed by a reducer. The returned
// dispatch applies reducer(current, action) synchronously and overwrites
// the slot.
func UseReducer[S, A any](sc *Scope, reducer func(S, A) S, initial S) (S, func(A)) {
	idx, existing, ok := sc.next(HookReducer)

	var cell *stateCell[S]
	if ok {
		cell = existing.(*stateCell[S])
	} else {
		cell = &stateCell[S]{value: initial}
		sc.store(idx, cell)
	}

	dispatch := func(action A) {
		cell.value = reducer(cell.value, action)
	}
	return cell.value, dispatch
}
