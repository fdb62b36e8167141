package page

import (
	"strings"
	"sync"

	"github.com/nextgo-dev/nextgo/internal/errors"
	"github.com/nextgo-dev/nextgo/pkg/markup"
)

// Module is the typed descriptor a page registers with the framework.
// The route registry discovers what a page file declares; the module
// supplies the actual functions. Every field is optional, but a page
// route needs either Template or Component to be renderable, and an API
// route needs at least one method handler or a Handler fallback.
type Module struct {
	// Template returns a template identifier for template-style pages.
	Template func() string

	// GetServerSideProps runs on every request.
	GetServerSideProps FetchFunc

	// GetStaticProps runs at export time (or on first request in dev).
	GetStaticProps FetchFunc

	// GetStaticPaths lists parameter sets to pre-render for a dynamic
	// route paired with GetStaticProps.
	GetStaticPaths PathsFunc

	// Component renders component-style pages.
	Component markup.Component

	// Methods maps uppercase HTTP method names to API handlers.
	Methods map[string]APIHandler

	// Handler is the fallback API handler for methods without a
	// dedicated entry.
	Handler APIHandler
}

// Fetcher returns the module's data-fetching function, preferring
// GetServerSideProps, or nil if the page fetches nothing.
func (m *Module) Fetcher() FetchFunc {
	if m.GetServerSideProps != nil {
		return m.GetServerSideProps
	}
	return m.GetStaticProps
}

// ResolveHandler returns the handler for the given HTTP method, falling
// back to Handler. A miss is a structured error, not a crash, so the
// host can render a diagnostic body.
func (m *Module) ResolveHandler(method string) (APIHandler, error) {
	if h, ok := m.Methods[strings.ToUpper(method)]; ok {
		return h, nil
	}
	if m.Handler != nil {
		return m.Handler, nil
	}
	return nil, errors.New("E120").
		WithDetail("No handler registered for method " + strings.ToUpper(method) + ".").
		WithSuggestion("Add a method entry to the module's Methods map or register a fallback Handler")
}

// Registry maps route source files to their module descriptors.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Register binds a module descriptor to a page source file. Later
// registrations for the same file replace earlier ones.
func (r *Registry) Register(sourceFile string, m *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[sourceFile] = m
}

// Lookup returns the module registered for a source file.
func (r *Registry) Lookup(sourceFile string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[sourceFile]
	return m, ok
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}
