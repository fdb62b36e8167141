package router

import "regexp"

// PageStyle identifies how a page renders: through a host template or
// through a component function. The style is a declared capability read
// from the page source at scan time, never inferred from content.
type PageStyle uint8

const (
	// StyleTemplate pages expose a template identifier and props; the
	// host's template engine produces the markup.
	StyleTemplate PageStyle = iota

	// StyleComponent pages expose a component function that returns a
	// markup node tree.
	StyleComponent
)

// String returns a human-readable name for the page style.
func (s PageStyle) String() string {
	switch s {
	case StyleTemplate:
		return "template"
	case StyleComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Params holds parameters extracted from a matched path.
type Params map[string]string

// Capabilities records which contract functions a page source declares.
// They are discovered once at scan time so hosts never probe modules
// reflectively at request time.
type Capabilities struct {
	// HasTemplate indicates a GetTemplate/Template declaration.
	HasTemplate bool

	// HasComponent indicates a component declaration (Page, Component,
	// Default, or a function named after the file stem ending in Page).
	HasComponent bool

	// HandlerName is the declared component function name, if any.
	HandlerName string

	// HasServerSideProps indicates a GetServerSideProps declaration.
	HasServerSideProps bool

	// HasStaticProps indicates a GetStaticProps declaration.
	HasStaticProps bool

	// HasStaticPaths indicates a GetStaticPaths declaration.
	HasStaticPaths bool

	// Methods lists declared API method handlers (GET, POST, ...).
	Methods []string

	// HasFallbackHandler indicates a Handler declaration used when no
	// method-named handler matches.
	HasFallbackHandler bool
}

// Route is a compiled mapping from a URL shape to a source file.
// A Route is immutable after creation; rebuilds replace Routes wholesale.
type Route struct {
	// URLPath is the canonical pattern, e.g. "/blog/:slug".
	URLPath string

	// SourceFile is the page file this route was compiled from.
	SourceFile string

	// ParamNames are the dynamic segment names in order of appearance.
	ParamNames []string

	// Pattern is the compiled matcher. Nil for static routes, which
	// compare by string equality.
	Pattern *regexp.Regexp

	// IsDynamic indicates the route has at least one parameter segment.
	IsDynamic bool

	// IsCatchAll indicates the route has a catch-all segment.
	IsCatchAll bool

	// IsAPI indicates the route is exposed under the /api prefix.
	IsAPI bool

	// Style is the declared rendering style for page routes.
	Style PageStyle

	// Capabilities are the declared contract functions of the source.
	Capabilities Capabilities
}

// Match reports whether the route matches the given normalized path,
// extracting named parameters for dynamic routes.
func (r *Route) Match(path string) (Params, bool) {
	if !r.IsDynamic {
		if r.URLPath == path {
			return Params{}, true
		}
		return nil, false
	}

	m := r.Pattern.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	params := make(Params, len(r.ParamNames))
	for i, name := range r.Pattern.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		params[name] = m[i]
	}
	return params, true
}
