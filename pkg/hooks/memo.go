package hooks

// memoRecord is the slot storage for UseMemo and UseCallback.
type memoRecord struct {
	deps    []any
	hasDeps bool
	value   any
}

// UseMemo returns the stored value unchanged while deps compare equal by
// value, recomputing and storing otherwise. The dependency contract is
// identical to UseEffect's.
func UseMemo[T any](sc *Scope, compute func() T, deps []any) T {
	idx, existing, ok := sc.next(HookMemo)
	return memoize(sc, idx, existing, ok, compute, deps)
}

// UseCallback returns the previously stored function while deps compare
// equal by value, storing the new one otherwise. Like UseMemo but named
// for its intent: stable callback identity across renders.
func UseCallback[F any](sc *Scope, fn F, deps []any) F {
	idx, existing, ok := sc.next(HookCallback)
	return memoize(sc, idx, existing, ok, func() F { return fn }, deps)
}

func memoize[T any](sc *Scope, idx int, existing any, ok bool, compute func() T, deps []any) T {
	if !ok {
		value := compute()
		sc.store(idx, &memoRecord{deps: copyDeps(deps), hasDeps: deps != nil, value: value})
		return value
	}

	rec := existing.(*memoRecord)
	if deps != nil && rec.hasDeps && depsEqual(rec.deps, deps) {
		return rec.value.(T)
	}

	value := compute()
	rec.deps, rec.hasDeps, rec.value = copyDeps(deps), deps != nil, value
	return value
}
