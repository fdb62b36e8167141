// Package middleware provides observability middleware for nextgo
// applications: Prometheus metrics and OpenTelemetry tracing over the
// request/render pipeline.
//
// Both constructors return standard net/http middleware and compose
// with any chi (or stdlib) handler chain.
package middleware
