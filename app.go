package nextgo

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nextgo-dev/nextgo/internal/config"
	"github.com/nextgo-dev/nextgo/internal/dev"
	"github.com/nextgo-dev/nextgo/pkg/hooks"
	"github.com/nextgo-dev/nextgo/pkg/middleware"
	"github.com/nextgo-dev/nextgo/pkg/page"
	"github.com/nextgo-dev/nextgo/pkg/router"
)

// RouteHeader is the response header carrying the matched route pattern.
// The metrics and tracing middleware read it so dynamic routes are
// labeled by pattern instead of by raw path.
const RouteHeader = "X-Nextgo-Route"

// reloadPath is the dev-mode WebSocket endpoint for hot reload.
const reloadPath = "/_nextgo/reload"

// App wires the route registry, module registry, and page renderer into
// a single http.Handler.
type App struct {
	config  *config.Config
	logger  *slog.Logger
	devMode bool

	hookDebug bool

	routes   *router.Registry
	modules  *page.Registry
	hooks    *hooks.Manager
	renderer *page.Renderer
	reload   *dev.ReloadServer
	mux      chi.Router

	staticFS http.FileSystem

	// renderMu serializes page renders in dev mode, where hook scopes
	// are keyed per route and persist across requests.
	renderMu sync.Mutex
	reqSeq   atomic.Uint64

	// templates caches parsed template files outside dev mode.
	templates sync.Map
}

// New creates an application from a loaded configuration and performs
// the initial route scan.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.hooks = hooks.NewManager()
	a.hooks.SetDebug(a.hookDebug)
	a.modules = page.NewRegistry()
	a.renderer = page.NewRenderer(a.modules, a.hooks, a.logger)

	a.routes = router.NewRegistry(cfg.PagesPath(), a.logger)
	a.routes.MatchObserver = middleware.RecordMatch
	a.routes.RebuildObserver = middleware.RecordRebuild

	if dir := cfg.PublicPath(); dir != "" {
		a.staticFS = http.Dir(dir)
	}
	if a.devMode {
		a.reload = dev.NewReloadServer()
	}

	// The mux installs the metrics middleware, so the collectors exist
	// before the first scan publishes the rebuild gauge.
	a.mux = a.buildMux()

	if err := a.routes.Scan(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) buildMux() chi.Router {
	mux := chi.NewRouter()
	mux.Use(
		middleware.Prometheus(),
		middleware.OpenTelemetry(),
	)
	mux.Handle("/metrics", promhttp.Handler())
	if a.reload != nil {
		mux.Get(reloadPath, a.reload.HandleWebSocket)
	}
	// File routes are resolved by the route table, not by chi patterns.
	mux.NotFound(a.handle)
	return mux
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// RegisterModule binds a module descriptor to a page source file. The
// path may be relative to the project root.
func (a *App) RegisterModule(sourceFile string, m *Module) {
	if !filepath.IsAbs(sourceFile) {
		sourceFile = filepath.Join(a.config.Dir(), sourceFile)
	}
	a.modules.Register(sourceFile, m)
}

// Rescan rebuilds the whole route table from the pages directory.
func (a *App) Rescan() error {
	return a.routes.Scan()
}

// ReloadFile replaces the routes owned by one source file. The dev
// server calls this on file change.
func (a *App) ReloadFile(path string) error {
	return a.routes.Reload(path)
}

// Routes returns the route registry.
func (a *App) Routes() *router.Registry {
	return a.routes
}

// Renderer returns the page renderer, for hosts that render outside the
// HTTP pipeline (static export, tests).
func (a *App) Renderer() *page.Renderer {
	return a.renderer
}

// ReloadServer returns the hot reload server, or nil outside dev mode.
func (a *App) ReloadServer() *dev.ReloadServer {
	return a.reload
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Run serves the app on addr until the context is canceled, then shuts
// down gracefully. When the CLI drives the binary in export mode, Run
// performs the static export instead of serving.
func (a *App) Run(ctx context.Context, addr string) error {
	if os.Getenv(EnvExport) == "1" {
		return a.runExportMode(ctx)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: a,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.reload != nil {
		a.reload.Close()
	}
	return srv.Shutdown(shutdownCtx)
}
