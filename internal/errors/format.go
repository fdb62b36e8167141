package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// palette holds the ANSI sequences used for terminal output. A zero
// palette renders plain text.
type palette struct {
	reset string
	red   string
	cyan  string
	dim   string
}

var colors = palette{
	reset: "\033[0m",
	red:   "\033[31m",
	cyan:  "\033[36m",
	dim:   "\033[2m",
}

// DisableColors turns off ANSI styling, for tests and non-TTY output.
func DisableColors() {
	colors = palette{}
}

// EnableColors restores ANSI styling.
func EnableColors() {
	colors = palette{
		reset: "\033[0m",
		red:   "\033[31m",
		cyan:  "\033[36m",
		dim:   "\033[2m",
	}
}

// Format renders the error for terminal display:
//
//	error[E120] (handler): No handler for method
//	  at pages/api/users.go:12
//
//	  The API route defines no handler for the request method.
//
//	  help: Add a method entry to the module's Methods map
func (e *NextgoError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(colors.red + "error" + colors.reset)
	if e.Code != "" {
		b.WriteString("[" + e.Code + "]")
	}
	if e.Category != "" {
		fmt.Fprintf(&b, " (%s)", e.Category)
	}
	b.WriteString(": " + e.Message + "\n")

	if e.Location != nil {
		b.WriteString("  " + colors.dim + "at " + e.Location.String() + colors.reset + "\n")
	}
	if e.Detail != "" {
		b.WriteString("\n  " + e.Detail + "\n")
	}
	if e.Wrapped != nil {
		b.WriteString("\n  " + colors.dim + "caused by:" + colors.reset + " " + e.Wrapped.Error() + "\n")
	}
	if e.Suggestion != "" {
		b.WriteString("\n  " + colors.cyan + "help:" + colors.reset + " " + e.Suggestion + "\n")
	}

	return b.String()
}

// FormatCompact returns a single-line form for log records.
func (e *NextgoError) FormatCompact() string {
	var b strings.Builder

	if e.Location != nil {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)

	return b.String()
}

// FormatJSON returns the error as a JSON object, for API error bodies
// and tooling.
func (e *NextgoError) FormatJSON() string {
	payload := struct {
		Code       string   `json:"code,omitempty"`
		Category   Category `json:"category"`
		Message    string   `json:"message"`
		Detail     string   `json:"detail,omitempty"`
		Location   string   `json:"location,omitempty"`
		Suggestion string   `json:"suggestion,omitempty"`
		Cause      string   `json:"cause,omitempty"`
	}{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location.String(),
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		payload.Cause = e.Wrapped.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return `{"message":"error encoding failed"}`
	}
	return string(data)
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	if ne, ok := err.(*NextgoError); ok {
		fmt.Fprint(os.Stderr, ne.Format())
		return
	}
	fmt.Fprintf(os.Stderr, "\n%serror%s: %s\n", colors.red, colors.reset, err.Error())
}
