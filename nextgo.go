// Package nextgo is a file-based web framework for Go. Pages live under
// a pages directory whose file names define the route table: bracketed
// segments become parameters ([slug] matches one segment, [...rest]
// matches the remainder), index files collapse onto their directory, and
// files under api/ serve JSON instead of HTML.
//
// A minimal application:
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := nextgo.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.RegisterModule("pages/index.go", &nextgo.Module{
//	    Component: pages.IndexPage,
//	})
//	log.Fatal(http.ListenAndServe(cfg.DevAddress(), app))
package nextgo

import (
	"log/slog"

	"github.com/nextgo-dev/nextgo/internal/config"
	"github.com/nextgo-dev/nextgo/pkg/page"
)

// LoadConfig reads nextgo.json from the given project directory.
func LoadConfig(dir string) (*config.Config, error) {
	return config.Load(dir)
}

// LoadConfigFromWorkingDir locates the project root by walking up from
// the working directory and loads its nextgo.json.
func LoadConfigFromWorkingDir() (*config.Config, error) {
	return config.LoadFromWorkingDir()
}

// Module is the descriptor a page registers with the app. See
// pkg/page.Module for the field contract.
type Module = page.Module

// Option customizes an App beyond what nextgo.json carries.
type Option func(*App)

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDevMode toggles development behavior: no-cache headers, the hot
// reload endpoint and injected client script, and verbose error pages.
func WithDevMode(dev bool) Option {
	return func(a *App) {
		a.devMode = dev
	}
}

// WithHookDebug enables hook call-order validation. Violations panic
// with a diagnostic instead of silently corrupting state.
func WithHookDebug(debug bool) Option {
	return func(a *App) {
		a.hookDebug = debug
	}
}
