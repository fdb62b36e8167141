package page

import (
	"context"
	"strings"
	"testing"

	"github.com/nextgo-dev/nextgo/internal/errors"
	"github.com/nextgo-dev/nextgo/pkg/hooks"
	"github.com/nextgo-dev/nextgo/pkg/markup"
	"github.com/nextgo-dev/nextgo/pkg/router"
)

func newTestRenderer() (*Renderer, *Registry) {
	modules := NewRegistry()
	return NewRenderer(modules, hooks.NewManager(), nil), modules
}

func componentRoute(urlPath, sourceFile string) *router.Route {
	return &router.Route{URLPath: urlPath, SourceFile: sourceFile, Style: router.StyleComponent}
}

func TestRenderPageComponent(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/about.go", &Module{
		Component: func(props map[string]any) *markup.Node {
			return markup.El("h1", nil, markup.Text("About"))
		},
	})

	result, err := r.RenderPage(context.Background(), &Request{
		Route: componentRoute("/about", "pages/about.go"),
	})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if result.HTML != "<h1>About</h1>" {
		t.Errorf("HTML = %q", result.HTML)
	}
}

func TestRenderPagePropsFromFetchAndParams(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/blog/slug.go", &Module{
		GetServerSideProps: func(fc *Context) (*Result, error) {
			return &Result{Props: map[string]any{"title": "Post " + fc.Params["slug"]}}, nil
		},
		Component: func(props map[string]any) *markup.Node {
			return markup.El("article", nil,
				markup.Text(props["title"].(string)),
				markup.Text(" / "),
				markup.Text(props["slug"].(string)),
			)
		},
	})

	route := componentRoute("/blog/:slug", "pages/blog/slug.go")
	route.IsDynamic = true
	route.ParamNames = []string{"slug"}

	result, err := r.RenderPage(context.Background(), &Request{
		Route:  route,
		Params: router.Params{"slug": "hello"},
	})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if result.HTML != "<article>Post hello / hello</article>" {
		t.Errorf("HTML = %q", result.HTML)
	}
}

func TestRenderPageFetchPropsWinOverParams(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/blog/slug.go", &Module{
		GetServerSideProps: func(*Context) (*Result, error) {
			return &Result{Props: map[string]any{"slug": "override"}}, nil
		},
		Component: func(props map[string]any) *markup.Node {
			return markup.Text(props["slug"].(string))
		},
	})

	route := componentRoute("/blog/:slug", "pages/blog/slug.go")
	result, err := r.RenderPage(context.Background(), &Request{
		Route:  route,
		Params: router.Params{"slug": "original"},
	})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if result.HTML != "override" {
		t.Errorf("HTML = %q", result.HTML)
	}
}

func TestRenderPageRedirect(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/old.go", &Module{
		GetServerSideProps: func(*Context) (*Result, error) {
			return &Result{Redirect: &Redirect{Destination: "/new", Permanent: true}}, nil
		},
		Component: func(map[string]any) *markup.Node { return markup.Text("never") },
	})

	result, err := r.RenderPage(context.Background(), &Request{
		Route: componentRoute("/old", "pages/old.go"),
	})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if result.Redirect == nil {
		t.Fatal("expected redirect")
	}
	if result.Redirect.Destination != "/new" {
		t.Errorf("Destination = %q", result.Redirect.Destination)
	}
	if result.Redirect.StatusCode() != 308 {
		t.Errorf("StatusCode = %d, want 308", result.Redirect.StatusCode())
	}
	if result.HTML != "" {
		t.Error("redirect result should not carry HTML")
	}
}

func TestRedirectStatusCodes(t *testing.T) {
	if got := (&Redirect{Permanent: false}).StatusCode(); got != 307 {
		t.Errorf("temporary = %d, want 307", got)
	}
	if got := (&Redirect{Permanent: true}).StatusCode(); got != 308 {
		t.Errorf("permanent = %d, want 308", got)
	}
}

func TestRenderPageNotFound(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/gone.go", &Module{
		GetServerSideProps: func(*Context) (*Result, error) {
			return &Result{NotFound: true}, nil
		},
		Component: func(map[string]any) *markup.Node { return markup.Text("never") },
	})

	result, err := r.RenderPage(context.Background(), &Request{
		Route: componentRoute("/gone", "pages/gone.go"),
	})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if !result.NotFound {
		t.Error("expected NotFound result")
	}
}

func TestRenderPageTemplateStyle(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/docs.go", &Module{
		Template: func() string { return "docs.html" },
		GetStaticProps: func(*Context) (*Result, error) {
			return &Result{Props: map[string]any{"section": "intro"}}, nil
		},
	})

	route := componentRoute("/docs", "pages/docs.go")
	route.Style = router.StyleTemplate

	result, err := r.RenderPage(context.Background(), &Request{Route: route})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if result.Template != "docs.html" {
		t.Errorf("Template = %q", result.Template)
	}
	if result.Props["section"] != "intro" {
		t.Errorf("Props = %v", result.Props)
	}
}

func TestRenderPageUnregisteredModule(t *testing.T) {
	r, _ := newTestRenderer()

	_, err := r.RenderPage(context.Background(), &Request{
		Route: componentRoute("/missing", "pages/missing.go"),
	})
	assertCode(t, err, "E121")
}

func TestRenderPageNoRenderableExport(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/empty.go", &Module{})

	_, err := r.RenderPage(context.Background(), &Request{
		Route: componentRoute("/empty", "pages/empty.go"),
	})
	assertCode(t, err, "E122")
}

func TestRenderPageFetchError(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/broken.go", &Module{
		GetServerSideProps: func(*Context) (*Result, error) {
			return nil, errors.Newf(errors.CategoryHandler, "db down")
		},
		Component: func(map[string]any) *markup.Node { return markup.Text("never") },
	})

	_, err := r.RenderPage(context.Background(), &Request{
		Route: componentRoute("/broken", "pages/broken.go"),
	})
	assertCode(t, err, "E123")
}

func TestRenderPageComponentPanic(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/panic.go", &Module{
		Component: func(map[string]any) *markup.Node { panic("boom") },
	})

	_, err := r.RenderPage(context.Background(), &Request{
		Route: componentRoute("/panic", "pages/panic.go"),
	})
	assertCode(t, err, "E140")
}

func TestRenderPageHookStatePersistsAcrossRenders(t *testing.T) {
	r, modules := newTestRenderer()

	var setCount *hooks.Setter[int]
	modules.Register("pages/counter.go", &Module{
		Component: func(props map[string]any) *markup.Node {
			sc := hooks.FromProps(props)
			var count int
			count, setCount = hooks.UseState(sc, 0)
			return markup.Textf("count=%d", count)
		},
	})

	req := &Request{Route: componentRoute("/counter", "pages/counter.go"), Key: "/counter"}

	result, err := r.RenderPage(context.Background(), req)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	if result.HTML != "count=0" {
		t.Errorf("first render HTML = %q", result.HTML)
	}

	setCount.Set(5)

	result, err = r.RenderPage(context.Background(), req)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if result.HTML != "count=5" {
		t.Errorf("second render HTML = %q", result.HTML)
	}
}

func TestDispatchAPIMethodHandler(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/api/users.go", &Module{
		Methods: map[string]APIHandler{
			"GET": func(fc *Context) (any, error) {
				return map[string]any{"users": []string{"ada"}}, nil
			},
		},
	})

	route := &router.Route{URLPath: "/api/users", SourceFile: "pages/api/users.go", IsAPI: true}
	body, err := r.DispatchAPI(context.Background(), &Request{Route: route}, "get")
	if err != nil {
		t.Fatalf("DispatchAPI: %v", err)
	}
	if body.(map[string]any)["users"].([]string)[0] != "ada" {
		t.Errorf("body = %v", body)
	}
}

func TestDispatchAPIFallbackHandler(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/api/echo.go", &Module{
		Handler: func(fc *Context) (any, error) { return "fallback", nil },
	})

	route := &router.Route{URLPath: "/api/echo", SourceFile: "pages/api/echo.go", IsAPI: true}
	body, err := r.DispatchAPI(context.Background(), &Request{Route: route}, "POST")
	if err != nil {
		t.Fatalf("DispatchAPI: %v", err)
	}
	if body != "fallback" {
		t.Errorf("body = %v", body)
	}
}

func TestDispatchAPINoHandler(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/api/readonly.go", &Module{
		Methods: map[string]APIHandler{
			"GET": func(*Context) (any, error) { return nil, nil },
		},
	})

	route := &router.Route{URLPath: "/api/readonly", SourceFile: "pages/api/readonly.go", IsAPI: true}
	_, err := r.DispatchAPI(context.Background(), &Request{Route: route}, "DELETE")
	assertCode(t, err, "E120")
}

func TestStaticParamsStaticRoute(t *testing.T) {
	r, _ := newTestRenderer()

	sets, err := r.StaticParams(context.Background(), componentRoute("/about", "pages/about.go"))
	if err != nil {
		t.Fatalf("StaticParams: %v", err)
	}
	if len(sets) != 1 || len(sets[0]) != 0 {
		t.Errorf("sets = %v", sets)
	}
}

func TestStaticParamsDynamicRoute(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/blog/slug.go", &Module{
		GetStaticPaths: func(context.Context) ([]router.Params, error) {
			return []router.Params{{"slug": "a"}, {"slug": "b"}}, nil
		},
	})

	route := componentRoute("/blog/:slug", "pages/blog/slug.go")
	route.IsDynamic = true
	route.ParamNames = []string{"slug"}

	sets, err := r.StaticParams(context.Background(), route)
	if err != nil {
		t.Fatalf("StaticParams: %v", err)
	}
	if len(sets) != 2 {
		t.Errorf("sets = %v", sets)
	}
}

func TestStaticParamsMissingParam(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/blog/slug.go", &Module{
		GetStaticPaths: func(context.Context) ([]router.Params, error) {
			return []router.Params{{"wrong": "a"}}, nil
		},
	})

	route := componentRoute("/blog/:slug", "pages/blog/slug.go")
	route.IsDynamic = true
	route.ParamNames = []string{"slug"}

	_, err := r.StaticParams(context.Background(), route)
	assertCode(t, err, "E141")
}

func TestStaticParamsDynamicWithoutPaths(t *testing.T) {
	r, modules := newTestRenderer()
	modules.Register("pages/blog/slug.go", &Module{})

	route := componentRoute("/blog/:slug", "pages/blog/slug.go")
	route.IsDynamic = true

	_, err := r.StaticParams(context.Background(), route)
	assertCode(t, err, "E141")
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	ne, ok := err.(*errors.NextgoError)
	if !ok {
		t.Fatalf("expected *errors.NextgoError, got %T: %v", err, err)
	}
	if ne.Code != code {
		t.Errorf("error code = %q, want %q", ne.Code, code)
	}
	if !strings.Contains(ne.Error(), code) {
		t.Errorf("Error() = %q missing code", ne.Error())
	}
}
