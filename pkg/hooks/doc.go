// Package hooks provides per-render component state allocated by call
// position, mirroring the React hooks contract.
//
// A Manager owns one Scope per component key; the host decides the key
// (typically the route pattern plus an instance id) and therefore owns
// the state's lifetime. Within one render pass, the Nth hook call reads
// and writes the Nth slot, so hooks must be called unconditionally and
// in the same order on every execution of a component. The package does
// not detect violations outside of debug mode, and it never re-renders:
// setters write synchronously and rely on the host to invoke the
// component again.
package hooks
