package router

import "sort"

// specificity tiers, most specific first.
const (
	tierStatic = iota
	tierDynamic
	tierCatchAll
)

// tier classifies a route for specificity ordering.
func tier(r *Route) int {
	switch {
	case r.IsCatchAll:
		return tierCatchAll
	case r.IsDynamic:
		return tierDynamic
	default:
		return tierStatic
	}
}

// SortBySpecificity orders routes so that more specific patterns match
// first:
//
//  1. static routes before single-dynamic routes before catch-all routes
//  2. within a tier, fewer captured parameters first
//  3. remaining ties break by lexical URL path order
//
// This guarantees that /blog/archive always wins over /blog/:slug for the
// literal path /blog/archive, and that the ordering is deterministic for
// any scan order of the pages root.
func SortBySpecificity(routes []*Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		ti, tj := tier(routes[i]), tier(routes[j])
		if ti != tj {
			return ti < tj
		}
		if len(routes[i].ParamNames) != len(routes[j].ParamNames) {
			return len(routes[i].ParamNames) < len(routes[j].ParamNames)
		}
		return routes[i].URLPath < routes[j].URLPath
	})
}
