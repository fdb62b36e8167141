package page

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nextgo-dev/nextgo/pkg/router"
)

// Context carries the request-scoped inputs handed to data-fetching
// functions and API handlers.
type Context struct {
	// Ctx is the host's request context, for cancellation and deadlines.
	Ctx context.Context

	// Path is the normalized request path.
	Path string

	// Params holds the route parameters extracted by the matcher.
	Params router.Params

	// Query holds the parsed query string.
	Query url.Values

	// Request is the underlying HTTP request, with method, headers,
	// and body. Nil when the render is not request-driven (static
	// export).
	Request *http.Request
}

// Redirect is the typed control outcome a data-fetching function returns
// to send the client elsewhere. It is distinct from both success and
// not-found.
type Redirect struct {
	Destination string
	Permanent   bool
}

// StatusCode returns the HTTP status for this redirect: 308 when
// permanent, 307 otherwise. Both preserve the request method.
func (r *Redirect) StatusCode() int {
	if r.Permanent {
		return http.StatusPermanentRedirect
	}
	return http.StatusTemporaryRedirect
}

// Result is what a data-fetching function produces. Exactly one of
// Props, Redirect, or NotFound is meaningful; Redirect and NotFound take
// precedence over Props in that order.
type Result struct {
	Props    map[string]any
	Redirect *Redirect
	NotFound bool
}

// FetchFunc is the signature of GetServerSideProps and GetStaticProps.
type FetchFunc func(*Context) (*Result, error)

// PathsFunc is the signature of GetStaticPaths: the parameter sets to
// pre-render for a dynamic route.
type PathsFunc func(ctx context.Context) ([]router.Params, error)

// APIHandler handles one API request and returns a JSON-serializable
// body.
type APIHandler func(*Context) (any, error)
