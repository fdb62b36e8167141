package router

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nextgo-dev/nextgo/pkg/routepath"
)

// PrivateMarker prefixes files that are excluded from routing
// (_layout.go, _app.go, helper files, and so on).
const PrivateMarker = "_"

// apiPrefix scopes requests to the API route sequence.
const apiPrefix = "/api"

// routeTable is one immutable published version of the route set.
// Rebuilds create a new table and swap it in atomically; the exact-match
// cache belongs to its table, so a swap invalidates it wholesale.
type routeTable struct {
	pages []*Route
	apis  []*Route

	cacheMu sync.RWMutex
	cache   map[string]*Route // exact path -> static route
}

func newRouteTable(pages, apis []*Route) *routeTable {
	SortBySpecificity(pages)
	SortBySpecificity(apis)
	return &routeTable{
		pages: pages,
		apis:  apis,
		cache: make(map[string]*Route),
	}
}

// match scans the table in sorted order and returns the first hit.
// Static winners are memoized under the exact path; the final return
// reports whether the cache served the request.
func (t *routeTable) match(path string) (*Route, Params, bool, bool) {
	t.cacheMu.RLock()
	cached, ok := t.cache[path]
	t.cacheMu.RUnlock()
	if ok {
		return cached, Params{}, true, true
	}

	routes := t.pages
	if strings.HasPrefix(path, apiPrefix) {
		routes = t.apis
	}

	for _, r := range routes {
		params, ok := r.Match(path)
		if !ok {
			continue
		}
		if !r.IsDynamic {
			t.cacheMu.Lock()
			t.cache[path] = r
			t.cacheMu.Unlock()
		}
		return r, params, true, false
	}

	return nil, nil, false, false
}

// Registry builds and owns the route table for a pages root.
//
// Readers snapshot the current table through an atomic pointer, so a
// rebuild never exposes a half-built table: Scan and Reload construct a
// complete replacement and publish it in one store.
type Registry struct {
	rootDir string
	logger  *slog.Logger

	table atomic.Pointer[routeTable]

	// rebuildMu serializes Scan and Reload.
	rebuildMu sync.Mutex

	// MatchObserver, when set, is called after every Match with the
	// elapsed time and whether the exact-match cache served it. Hosts
	// use it to feed metrics without coupling the registry to them.
	MatchObserver func(d time.Duration, cacheHit bool)

	// RebuildObserver, when set, is called after every Scan and Reload
	// with the size of the published table.
	RebuildObserver func(routeCount int)
}

// NewRegistry creates a route registry for the given pages root.
// The registry is empty until the first Scan.
func NewRegistry(rootDir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	reg := &Registry{rootDir: rootDir, logger: logger}
	reg.table.Store(newRouteTable(nil, nil))
	return reg
}

// Scan rebuilds the whole route table from a depth-first walk of the
// pages root. All previous Routes and cached matches are discarded.
func (reg *Registry) Scan() error {
	reg.rebuildMu.Lock()
	defer reg.rebuildMu.Unlock()

	var pages, apis []*Route

	err := filepath.WalkDir(reg.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !eligible(path) {
			return nil
		}

		route := reg.compileFile(path)
		if route.IsAPI {
			apis = append(apis, route)
		} else {
			pages = append(pages, route)
		}
		return nil
	})
	if err != nil {
		return err
	}

	reg.table.Store(newRouteTable(pages, apis))
	reg.logger.Debug("route table rebuilt",
		slog.Int("pages", len(pages)), slog.Int("apis", len(apis)))
	if reg.RebuildObserver != nil {
		reg.RebuildObserver(len(pages) + len(apis))
	}
	return nil
}

// Reload replaces only the Routes owned by the given source file, then
// re-sorts and publishes a new table. If the file no longer exists its
// routes are dropped.
func (reg *Registry) Reload(file string) error {
	reg.rebuildMu.Lock()
	defer reg.rebuildMu.Unlock()

	old := reg.table.Load()
	keep := func(routes []*Route) []*Route {
		out := make([]*Route, 0, len(routes))
		for _, r := range routes {
			if r.SourceFile != file {
				out = append(out, r)
			}
		}
		return out
	}
	pages, apis := keep(old.pages), keep(old.apis)

	if _, err := os.Stat(file); err == nil && eligible(file) {
		route := reg.compileFile(file)
		if route.IsAPI {
			apis = append(apis, route)
		} else {
			pages = append(pages, route)
		}
	}

	reg.table.Store(newRouteTable(pages, apis))
	if reg.RebuildObserver != nil {
		reg.RebuildObserver(len(pages) + len(apis))
	}
	return nil
}

// Match finds the first registered Route whose pattern matches the path,
// scoped to page or API routes by the /api prefix. A miss is a normal
// outcome: (nil, nil, false).
func (reg *Registry) Match(path string) (*Route, Params, bool) {
	start := time.Now()
	route, params, ok, cached := reg.table.Load().match(routepath.Normalize(path))
	if reg.MatchObserver != nil {
		reg.MatchObserver(time.Since(start), cached)
	}
	return route, params, ok
}

// PageRoutes returns the page routes in specificity order.
func (reg *Registry) PageRoutes() []*Route {
	t := reg.table.Load()
	return append([]*Route(nil), t.pages...)
}

// APIRoutes returns the API routes in specificity order.
func (reg *Registry) APIRoutes() []*Route {
	t := reg.table.Load()
	return append([]*Route(nil), t.apis...)
}

// StaticRoutes returns the statically-resolvable page routes: static
// routes plus dynamic routes whose page declares GetStaticPaths. Used by
// the static-export collaborator.
func (reg *Registry) StaticRoutes() []*Route {
	var out []*Route
	for _, r := range reg.table.Load().pages {
		if !r.IsDynamic || r.Capabilities.HasStaticPaths {
			out = append(out, r)
		}
	}
	return out
}

// eligible reports whether a file participates in routing.
func eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, PrivateMarker) {
		return false
	}
	if !strings.HasSuffix(base, ".go") || strings.HasSuffix(base, "_test.go") {
		return false
	}
	return true
}

// compileFile builds the Route record for one page file. Pattern
// compilation never fails (malformed segments degrade to a literal
// pattern); capability scanning failures degrade to an empty declaration
// set and are logged, never raised.
func (reg *Registry) compileFile(path string) *Route {
	relPath, err := filepath.Rel(reg.rootDir, path)
	if err != nil {
		relPath = path
	}

	c := routepath.Compile(relPath)

	caps, err := scanCapabilities(path)
	if err != nil {
		reg.logger.Debug("capability scan failed, using defaults",
			slog.String("file", path), slog.Any("error", err))
	}

	return &Route{
		URLPath:      c.URLPath,
		SourceFile:   path,
		ParamNames:   c.ParamNames,
		Pattern:      c.Pattern,
		IsDynamic:    c.IsDynamic,
		IsCatchAll:   c.IsCatchAll,
		IsAPI:        c.IsAPI,
		Style:        styleOf(caps),
		Capabilities: caps,
	}
}

// styleOf decides the rendering style from declared capabilities.
// A page that declares both resolves to the template style.
func styleOf(caps Capabilities) PageStyle {
	if caps.HasTemplate {
		return StyleTemplate
	}
	if caps.HasComponent {
		return StyleComponent
	}
	return StyleTemplate
}

// httpMethods are the method handler names recognized in API pages.
var httpMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// scanCapabilities parses a page source and records its declared
// contract functions.
func scanCapabilities(path string) (Capabilities, error) {
	var caps Capabilities

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return caps, err
	}

	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Name == nil || !fd.Name.IsExported() || fd.Recv != nil {
			continue
		}

		name := fd.Name.Name
		switch name {
		case "GetTemplate", "Template":
			caps.HasTemplate = true
			continue
		case "GetServerSideProps":
			caps.HasServerSideProps = true
			continue
		case "GetStaticProps":
			caps.HasStaticProps = true
			continue
		case "GetStaticPaths":
			caps.HasStaticPaths = true
			continue
		case "Handler":
			caps.HasFallbackHandler = true
			continue
		case "Page", "Component", "Default":
			caps.HasComponent = true
			if caps.HandlerName == "" {
				caps.HandlerName = name
			}
			continue
		}

		if strings.HasSuffix(name, "Page") {
			caps.HasComponent = true
			if caps.HandlerName == "" {
				caps.HandlerName = name
			}
			continue
		}

		for _, method := range httpMethods {
			if name == method {
				caps.Methods = append(caps.Methods, method)
				break
			}
		}
	}

	return caps, nil
}
