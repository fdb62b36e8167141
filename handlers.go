package nextgo

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nextgo-dev/nextgo/internal/dev"
	"github.com/nextgo-dev/nextgo/internal/errors"
	"github.com/nextgo-dev/nextgo/pkg/middleware"
	"github.com/nextgo-dev/nextgo/pkg/page"
	"github.com/nextgo-dev/nextgo/pkg/routepath"
	"github.com/nextgo-dev/nextgo/pkg/router"
)

// handle resolves every request the fixed endpoints did not claim: the
// path is canonicalized first, then checked against static files, then
// the route table.
func (a *App) handle(w http.ResponseWriter, r *http.Request) {
	urlPath, err := routepath.Canonicalize(r.URL.Path)
	if err != nil {
		a.notFound(w, r)
		return
	}

	if a.staticFS != nil && a.shouldServeStatic(urlPath) {
		a.serveStatic(w, r, urlPath)
		return
	}

	route, params, ok := a.routes.Match(urlPath)
	if !ok {
		a.notFound(w, r)
		return
	}

	w.Header().Set(RouteHeader, route.URLPath)

	if route.IsAPI {
		a.serveAPI(w, r, route, params)
		return
	}
	a.servePage(w, r, route, params)
}

// servePage runs the page pipeline and writes the HTML document.
func (a *App) servePage(w http.ResponseWriter, r *http.Request, route *router.Route, params router.Params) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	req := &page.Request{
		Route:  route,
		Params: params,
		Query:  r.URL.Query(),
		HTTP:   r,
		Key:    a.scopeKey(route),
	}

	// Dev mode keeps one long-lived hook scope per route, so renders
	// against it cannot overlap. Production scopes are per-request.
	if a.devMode {
		a.renderMu.Lock()
		defer a.renderMu.Unlock()
	} else {
		defer a.hooks.Drop(req.Key)
	}

	start := time.Now()
	result, err := a.renderer.RenderPage(r.Context(), req)
	middleware.RecordRender(route.URLPath, time.Since(start))
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	switch {
	case result.Redirect != nil:
		http.Redirect(w, r, result.Redirect.Destination, result.Redirect.StatusCode())
	case result.NotFound:
		a.notFound(w, r)
	case result.Template != "":
		a.renderTemplate(w, r, result)
	default:
		a.writeHTML(w, http.StatusOK, result.HTML)
	}
}

// serveAPI dispatches to the route's method handler and writes JSON.
func (a *App) serveAPI(w http.ResponseWriter, r *http.Request, route *router.Route, params router.Params) {
	req := &page.Request{
		Route:  route,
		Params: params,
		Query:  r.URL.Query(),
		HTTP:   r,
	}

	out, err := a.renderer.DispatchAPI(r.Context(), req, r.Method)
	if err != nil {
		a.apiError(w, route, err)
		return
	}

	if out == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		a.logger.Error("api response encode failed", "path", route.URLPath, "error", err)
	}
}

// apiError writes a structured JSON error body. A missing method
// handler maps to 405 with the route's declared methods in Allow.
func (a *App) apiError(w http.ResponseWriter, route *router.Route, err error) {
	status := http.StatusInternalServerError

	ne, ok := err.(*errors.NextgoError)
	if ok && ne.Code == "E120" {
		status = http.StatusMethodNotAllowed
		if len(route.Capabilities.Methods) > 0 {
			w.Header().Set("Allow", strings.Join(route.Capabilities.Methods, ", "))
		}
	}

	a.logger.Error("api request failed", "path", route.URLPath, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if ok && a.devMode {
		fmt.Fprintln(w, ne.FormatJSON())
		return
	}
	body := map[string]string{"error": http.StatusText(status)}
	if ok {
		body["code"] = ne.Code
		body["error"] = ne.Message
	}
	json.NewEncoder(w).Encode(body)
}

// renderTemplate executes a template-style page: the module names the
// template file, the fetched props are its data.
func (a *App) renderTemplate(w http.ResponseWriter, r *http.Request, result *page.RenderResult) {
	html, err := a.executeTemplate(result.Template, result.Props)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	a.writeHTML(w, http.StatusOK, html)
}

// executeTemplate loads a template by name and runs it over the page's
// props. The static exporter uses it for template-style routes.
func (a *App) executeTemplate(name string, props map[string]any) (string, error) {
	tmpl, err := a.loadTemplate(name)
	if err != nil {
		return "", errors.New("E142").Wrap(err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, props); err != nil {
		return "", errors.New("E142").Wrap(err)
	}
	return buf.String(), nil
}

// loadTemplate parses a template file from the templates directory.
// Dev mode reparses on every request so edits show up immediately.
func (a *App) loadTemplate(name string) (*template.Template, error) {
	if !a.devMode {
		if cached, ok := a.templates.Load(name); ok {
			return cached.(*template.Template), nil
		}
	}

	path := filepath.Join(a.config.TemplatesPath(), filepath.FromSlash(name))
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, err
	}

	if !a.devMode {
		a.templates.Store(name, tmpl)
	}
	return tmpl, nil
}

// writeHTML writes a full HTML document, with the hot reload client
// injected in dev mode.
func (a *App) writeHTML(w http.ResponseWriter, status int, html string) {
	if a.devMode {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		html = injectReloadScript(html)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if !strings.HasPrefix(html, "<!DOCTYPE") {
		w.Write([]byte("<!DOCTYPE html>\n"))
	}
	w.Write([]byte(html))
}

// injectReloadScript places the reload client before </body> when the
// document has one, otherwise appends it.
func injectReloadScript(html string) string {
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		return html[:idx] + dev.ReloadClientScript + html[idx:]
	}
	return html + dev.ReloadClientScript
}

// notFound writes the 404 page.
func (a *App) notFound(w http.ResponseWriter, r *http.Request) {
	a.writeHTML(w, http.StatusNotFound,
		"<html><head><title>404</title></head><body><h1>404</h1><p>This page could not be found.</p></body></html>")
}

// renderError writes a page-pipeline failure. Dev mode shows the
// structured diagnostic; production shows a bare 500.
func (a *App) renderError(w http.ResponseWriter, r *http.Request, err error) {
	ne, ok := err.(*errors.NextgoError)
	if ok {
		a.logger.Error("page render failed", "path", r.URL.Path, "error", ne.FormatCompact())
	} else {
		a.logger.Error("page render failed", "path", r.URL.Path, "error", err)
	}

	if a.reload != nil && ok {
		a.reload.NotifyError(ne)
	}

	if a.devMode && ok {
		a.writeHTML(w, http.StatusInternalServerError, devErrorPage(ne))
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// devErrorPage renders a structured error as an HTML diagnostic.
func devErrorPage(ne *errors.NextgoError) string {
	var b strings.Builder
	b.WriteString("<html><head><title>")
	b.WriteString(template.HTMLEscapeString(ne.Code))
	b.WriteString("</title></head><body style=\"font-family:monospace;background:#1e1e1e;color:#eee;padding:2rem\">")
	b.WriteString("<h1 style=\"color:#f66\">")
	b.WriteString(template.HTMLEscapeString(ne.Code + ": " + ne.Message))
	b.WriteString("</h1>")
	if ne.Detail != "" {
		b.WriteString("<p>" + template.HTMLEscapeString(ne.Detail) + "</p>")
	}
	if ne.Suggestion != "" {
		b.WriteString("<p style=\"color:#6f6\">" + template.HTMLEscapeString(ne.Suggestion) + "</p>")
	}
	if ne.Wrapped != nil {
		b.WriteString("<pre>" + template.HTMLEscapeString(ne.Wrapped.Error()) + "</pre>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// scopeKey picks the hook scope key for a render. Dev mode reuses one
// scope per route so hook state survives across requests; production
// isolates each request.
func (a *App) scopeKey(route *router.Route) string {
	if a.devMode {
		return route.URLPath
	}
	return route.URLPath + "#" + strconv.FormatUint(a.reqSeq.Add(1), 10)
}
