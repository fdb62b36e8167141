// Package errors provides structured, actionable error messages for nextgo.
//
// The errors package implements an error system that:
//   - Shows exact source locations (file, line, column)
//   - Explains what went wrong in plain language
//   - Suggests how to fix issues with code examples
//   - Links to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - compile: pattern compilation and preprocessing errors
//   - route: route scanning and matching errors
//   - render: page rendering errors
//   - handler: API handler resolution and execution errors
//   - hooks: hook-state misuse
//   - config: nextgo.json configuration errors
//   - cli: command-line tooling errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "E100") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("E103").
//	    WithLocation("pages/blog/slug.go", 15, 1).
//	    WithSuggestion("Export a Page function or a method handler")
//
//	fmt.Println(err.Format())
package errors
