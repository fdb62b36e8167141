// Package dev provides the development-mode support pieces: a
// filesystem watcher that feeds route-table reloads, a WebSocket
// server that pushes reload notifications to connected browsers, and
// a supervisor that builds the application, runs it behind a reverse
// proxy, and rebuilds it when sources change.
package dev
