package hooks

// Ref is a mutable container allocated once per slot. Mutating Current
// never affects render output by itself.
type Ref[T any] struct {
	Current T
}

// UseRef allocates the container holding initial on the first render and
// returns the same container reference on every subsequent render.
func UseRef[T any](sc *Scope, initial T) *Ref[T] {
	idx, existing, ok := sc.next(HookRef)
	if ok {
		return existing.(*Ref[T])
	}

	ref := &Ref[T]{Current: initial}
	sc.store(idx, ref)
	return ref
}
