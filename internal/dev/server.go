package dev

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nextgo-dev/nextgo/internal/config"
	"github.com/nextgo-dev/nextgo/pkg/jsx"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives server diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// OnBuildComplete is called after every build attempt.
	OnBuildComplete func(result BuildResult)

	// OnReload is called after browsers are told to reload.
	OnReload func(clients int)
}

// Server is the development supervisor: it preprocesses markup blocks,
// builds and runs the app, watches for changes, and fronts the app with
// a reverse proxy that owns the hot reload WebSocket.
type Server struct {
	config   *config.Config
	options  ServerOptions
	logger   *slog.Logger
	compiler *Compiler
	watcher  *Watcher
	reload   *ReloadServer
	proxy    *httputil.ReverseProxy

	changeCh   chan Change
	httpServer *http.Server
	appPort    int

	mu      sync.Mutex
	running bool
}

// NewServer creates a development server for the project.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watchPaths := make([]string, 0, len(cfg.Dev.Watch))
	for _, p := range cfg.Dev.Watch {
		if !filepath.IsAbs(p) {
			p = filepath.Join(cfg.Dir(), p)
		}
		watchPaths = append(watchPaths, p)
	}

	// The app listens one port up; the supervisor owns the public port.
	appPort := cfg.Dev.Port + 1

	s := &Server{
		config:  cfg,
		options: options,
		logger:  logger,
		compiler: NewCompiler(CompilerConfig{
			ProjectPath: cfg.Dir(),
			Env: []string{
				"NEXTGO_DEV=1",
				fmt.Sprintf("PORT=%d", appPort),
			},
		}),
		watcher: NewWatcher(WatcherConfig{
			Paths:    watchPaths,
			Ignore:   append(append([]string(nil), DefaultIgnore...), cfg.Dev.Ignore...),
			Debounce: 100 * time.Millisecond,
			Logger:   logger,
		}),
		appPort: appPort,
	}
	if cfg.Dev.HotReload {
		s.reload = NewReloadServer()
	}
	s.proxy = s.newAppProxy()
	return s
}

// Start runs the supervisor until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if err := s.preprocessPages(); err != nil {
		s.logger.Warn("preprocess failed", "error", err)
	}

	result := s.compiler.Build(ctx)
	s.reportBuild(result)
	if result.Success {
		if err := s.compiler.Start(ctx); err != nil {
			s.logger.Error("app start failed", "error", err)
		}
	} else {
		s.notifyError(result.Error)
	}

	s.changeCh = make(chan Change, 64)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
		}
	})
	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	mux := http.NewServeMux()
	if s.reload != nil {
		mux.HandleFunc("/_nextgo/reload", s.reload.HandleWebSocket)
	}
	mux.HandleFunc("/", s.proxy.ServeHTTP)

	s.httpServer = &http.Server{
		Addr:    s.config.DevAddress(),
		Handler: mux,
	}

	s.logger.Info("dev server running", "url", s.config.DevURL())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop shuts the supervisor down.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false

	s.compiler.Stop()
	if s.reload != nil {
		s.reload.Close()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// processChanges serializes change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			changes := []Change{change}
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next)
				default:
					draining = false
				}
			}
			s.handleChanges(ctx, changes)
		}
	}
}

func (s *Server) handleChanges(ctx context.Context, changes []Change) {
	var hasGo, hasCSS, hasOther bool
	for _, change := range changes {
		s.logger.Info("changed", "path", change.Path)
		switch change.Type {
		case ChangeGo:
			hasGo = true
		case ChangeCSS:
			hasCSS = true
		default:
			hasOther = true
		}
	}

	if hasGo {
		s.handleGoChange(ctx, changes)
		return
	}
	if hasCSS {
		for _, change := range changes {
			if change.Type == ChangeCSS {
				s.notifyCSS(change.Path)
				break
			}
		}
		return
	}
	if hasOther {
		s.notifyReload()
	}
}

func (s *Server) handleGoChange(ctx context.Context, changes []Change) {
	for _, change := range changes {
		if change.Type != ChangeGo {
			continue
		}
		if err := s.preprocessFile(change.Path); err != nil {
			s.logger.Warn("preprocess failed", "path", change.Path, "error", err)
		}
	}

	result := s.compiler.Build(ctx)
	s.reportBuild(result)
	if !result.Success {
		s.notifyError(result.Error)
		return
	}
	s.clearError()

	if err := s.compiler.Restart(ctx); err != nil {
		s.logger.Error("app restart failed", "error", err)
		return
	}

	// Give the app a moment to bind before browsers refetch.
	time.Sleep(100 * time.Millisecond)
	s.notifyReload()
}

// preprocessPages rewrites markup literal blocks in every page source.
func (s *Server) preprocessPages() error {
	root := s.config.PagesPath()
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		return s.preprocessFile(path)
	})
}

// preprocessFile rewrites one source file in place when it contains
// markup literal blocks.
func (s *Server) preprocessFile(path string) error {
	if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	src := string(data)
	if !jsx.IsJSXFile(src) {
		return nil
	}
	out := jsx.Preprocess(src)
	if out == src {
		return nil
	}
	s.logger.Info("preprocessed", "path", path)
	return os.WriteFile(path, []byte(out), 0644)
}

// newAppProxy builds the reverse proxy fronting the app process. HTML
// responses get the reload client injected unless the app already did.
func (s *Server) newAppProxy() *httputil.ReverseProxy {
	target, _ := url.Parse(fmt.Sprintf("http://localhost:%d", s.appPort))
	proxy := httputil.NewSingleHostReverseProxy(target)

	proxy.ModifyResponse = func(resp *http.Response) error {
		if s.reload == nil {
			return nil
		}
		if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			return nil
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		resp.Body.Close()

		doc := string(body)
		if !strings.Contains(doc, "/_nextgo/reload") {
			if idx := strings.LastIndex(doc, "</body>"); idx != -1 {
				doc = doc[:idx] + ReloadClientScript + doc[idx:]
			} else {
				doc += ReloadClientScript
			}
		}

		resp.Body = io.NopCloser(strings.NewReader(doc))
		resp.ContentLength = int64(len(doc))
		resp.Header.Set("Content-Length", fmt.Sprintf("%d", len(doc)))
		return nil
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		script := ""
		if s.reload != nil {
			script = ReloadClientScript
		}
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>nextgo dev</title></head>
<body style="font-family: system-ui; padding: 40px; background: #1a1a1a; color: #fff;">
<h1 style="color: #ff5555;">Application Not Running</h1>
<p>The app process is not responding. It may still be starting, or the last build failed.</p>
<p style="color: #888;">The page reloads automatically once the app is ready.</p>
%s
</body>
</html>`, script)
	}

	return proxy
}

func (s *Server) reportBuild(result BuildResult) {
	if s.options.OnBuildComplete != nil {
		s.options.OnBuildComplete(result)
	}
	if result.Success {
		s.logger.Info("built", "duration", result.Duration.Round(time.Millisecond))
	} else {
		s.logger.Error("build failed", "output", result.Output)
	}
}

func (s *Server) notifyReload() {
	if s.reload == nil {
		return
	}
	s.reload.NotifyReload()
	if s.options.OnReload != nil {
		s.options.OnReload(s.reload.ClientCount())
	}
}

func (s *Server) notifyCSS(path string) {
	if s.reload == nil {
		return
	}
	s.reload.NotifyCSS(path)
}

func (s *Server) notifyError(err error) {
	if s.reload == nil {
		return
	}
	s.reload.NotifyError(err)
}

func (s *Server) clearError() {
	if s.reload == nil {
		return
	}
	s.reload.ClearError()
}
