package page

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nextgo-dev/nextgo/internal/errors"
	"github.com/nextgo-dev/nextgo/pkg/hooks"
	"github.com/nextgo-dev/nextgo/pkg/markup"
	"github.com/nextgo-dev/nextgo/pkg/router"
)

// Request is one page or API render request.
type Request struct {
	Route  *router.Route
	Params router.Params
	Query  url.Values

	// HTTP is the originating request, handed through to data-fetching
	// functions and API handlers. Nil for static export renders.
	HTTP *http.Request

	// Key identifies the hook scope for this render. The caller owns it:
	// per-route for cooperative single renders, per-request for
	// concurrent ones. Empty defaults to the route's URL path.
	Key string
}

// RenderResult is the outcome of rendering a page route. Exactly one of
// HTML, Template, Redirect, or NotFound is the primary payload; Props
// accompanies Template so the host's template engine can consume them.
type RenderResult struct {
	HTML     string
	Template string
	Props    map[string]any
	Redirect *Redirect
	NotFound bool
}

// Renderer executes a matched page route: data fetch, hook-scoped
// component invocation, markup serialization.
type Renderer struct {
	modules *Registry
	hooks   *hooks.Manager
	markup  *markup.Renderer
	logger  *slog.Logger
}

// NewRenderer creates a page renderer over the given module registry and
// hook manager.
func NewRenderer(modules *Registry, hookMgr *hooks.Manager, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		modules: modules,
		hooks:   hookMgr,
		markup:  markup.NewRenderer(markup.Config{}),
		logger:  logger,
	}
}

// RenderPage runs the full page pipeline for a matched route. Redirect
// and not-found from the data fetch are normal outcomes carried in the
// result; errors are structured and renderable by the host.
func (r *Renderer) RenderPage(ctx context.Context, req *Request) (*RenderResult, error) {
	m, ok := r.modules.Lookup(req.Route.SourceFile)
	if !ok {
		return nil, errors.New("E121").
			WithDetail(fmt.Sprintf("No module registered for %s.", req.Route.SourceFile)).
			WithSuggestion("Register the page's module descriptor with the app before serving")
	}

	fc := &Context{Ctx: ctx, Path: req.Route.URLPath, Params: req.Params, Query: req.Query, Request: req.HTTP}

	props := map[string]any{}
	if fetch := m.Fetcher(); fetch != nil {
		result, err := fetch(fc)
		if err != nil {
			return nil, errors.New("E123").Wrap(err)
		}
		if result != nil {
			if result.Redirect != nil {
				return &RenderResult{Redirect: result.Redirect}, nil
			}
			if result.NotFound {
				return &RenderResult{NotFound: true}, nil
			}
			if result.Props != nil {
				props = result.Props
			}
		}
	}
	for name, value := range req.Params {
		if _, exists := props[name]; !exists {
			props[name] = value
		}
	}

	if req.Route.Style == router.StyleTemplate && m.Template != nil {
		return &RenderResult{Template: m.Template(), Props: props}, nil
	}

	if m.Component == nil {
		return nil, errors.New("E122").
			WithDetail(fmt.Sprintf("%s declares neither a template nor a component.", req.Route.SourceFile))
	}

	key := req.Key
	if key == "" {
		key = req.Route.URLPath
	}

	html, err := r.renderComponent(key, m.Component, props)
	if err != nil {
		return nil, err
	}
	return &RenderResult{HTML: html, Props: props}, nil
}

// renderComponent invokes the component inside its hook scope and
// serializes the returned tree. Component panics become structured
// render errors.
func (r *Renderer) renderComponent(key string, component markup.Component, props map[string]any) (_ string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("component panicked", "scope", key, "panic", rec)
			err = errors.New("E140").WithDetail(fmt.Sprintf("Component panicked: %v.", rec))
		}
	}()

	scope := r.hooks.Scope(key)
	props[hooks.PropsKey] = scope

	var node *markup.Node
	scope.Render(func() {
		node = component(props)
	})

	html, renderErr := r.markup.RenderToString(node)
	if renderErr != nil {
		return "", errors.New("E140").Wrap(renderErr)
	}
	return html, nil
}

// DispatchAPI resolves and invokes the handler for an API route.
func (r *Renderer) DispatchAPI(ctx context.Context, req *Request, method string) (any, error) {
	m, ok := r.modules.Lookup(req.Route.SourceFile)
	if !ok {
		return nil, errors.New("E121").
			WithDetail(fmt.Sprintf("No module registered for %s.", req.Route.SourceFile))
	}

	handler, err := m.ResolveHandler(method)
	if err != nil {
		return nil, err
	}

	fc := &Context{Ctx: ctx, Path: req.Route.URLPath, Params: req.Params, Query: req.Query, Request: req.HTTP}
	return handler(fc)
}

// StaticParams expands a dynamic route's pre-render parameter sets via
// its GetStaticPaths. Static routes expand to a single empty set.
func (r *Renderer) StaticParams(ctx context.Context, route *router.Route) ([]router.Params, error) {
	if !route.IsDynamic {
		return []router.Params{{}}, nil
	}

	m, ok := r.modules.Lookup(route.SourceFile)
	if !ok || m.GetStaticPaths == nil {
		return nil, errors.New("E141").
			WithDetail(fmt.Sprintf("Dynamic route %s has no GetStaticPaths.", route.URLPath)).
			WithSuggestion("Add GetStaticPaths to the module or exclude the route from export")
	}

	sets, err := m.GetStaticPaths(ctx)
	if err != nil {
		return nil, errors.New("E141").Wrap(err)
	}
	for _, params := range sets {
		for _, name := range route.ParamNames {
			if _, ok := params[name]; !ok {
				return nil, errors.New("E141").
					WithDetail(fmt.Sprintf("Parameter set %v is missing %q.", params, name))
			}
		}
	}
	return sets, nil
}
