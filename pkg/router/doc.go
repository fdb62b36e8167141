// Package router builds the file-based route table and matches request
// paths against it.
//
// Files under a pages root become routes by position: blog/[slug].go
// serves /blog/:slug, api/users/[id].go serves /api/users/:id, and an
// index file maps to its parent directory path. The Registry scans the
// root, compiles each eligible file through pkg/routepath, classifies
// page versus API routes, and publishes an immutable, specificity-sorted
// table. Matching is deterministic: ambiguity between static, dynamic,
// and catch-all patterns is resolved entirely by the table's sort order.
package router
