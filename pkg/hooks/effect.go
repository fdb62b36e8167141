package hooks

import "reflect"

// effectRecord is the slot storage for UseEffect: the dependency list
// observed on the last run.
type effectRecord struct {
	deps    []any
	hasDeps bool
}

// UseEffect runs effect according to the dependency contract:
//
//   - nil deps: run on every render
//   - empty (non-nil) deps: run once, when the slot is first allocated
//   - otherwise: run when deps differ by value from the stored list
//
// Effects execute synchronously and immediately in place. Cleanup
// functions are not tracked.
func UseEffect(sc *Scope, effect func(), deps []any) {
	idx, existing, ok := sc.next(HookEffect)

	if !ok {
		sc.store(idx, &effectRecord{deps: copyDeps(deps), hasDeps: deps != nil})
		effect()
		return
	}

	rec := existing.(*effectRecord)
	if deps == nil {
		rec.deps, rec.hasDeps = nil, false
		effect()
		return
	}
	if rec.hasDeps && depsEqual(rec.deps, deps) {
		return
	}
	rec.deps, rec.hasDeps = copyDeps(deps), true
	effect()
}

// depsEqual compares dependency lists element-wise by value.
// reflect.DeepEqual is the documented equality policy so that slices,
// maps, and structs compare by content rather than identity.
func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func copyDeps(deps []any) []any {
	if deps == nil {
		return nil
	}
	out := make([]any, len(deps))
	copy(out, deps)
	return out
}
