package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nextgo-dev/nextgo/internal/errors"
	"github.com/nextgo-dev/nextgo/pkg/hooks"
	"github.com/nextgo-dev/nextgo/pkg/markup"
	"github.com/nextgo-dev/nextgo/pkg/page"
	"github.com/nextgo-dev/nextgo/pkg/router"
)

const componentPage = `package pages

func Page(props map[string]any) any { return nil }
`

const staticPathsPage = `package pages

func Page(props map[string]any) any { return nil }

func GetStaticPaths() ([]map[string]string, error) { return nil, nil }
`

const templateStylePage = `package pages

func GetTemplate() string { return "about.html" }
`

// buildSite scans a pages root and registers a module for every page
// route, keyed by the walked source file.
func buildSite(t *testing.T, files map[string]string, modules map[string]*page.Module) (*router.Registry, *page.Renderer) {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := router.NewRegistry(root, nil)
	if err := reg.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	modReg := page.NewRegistry()
	for _, route := range reg.PageRoutes() {
		rel, err := filepath.Rel(root, route.SourceFile)
		if err != nil {
			t.Fatal(err)
		}
		m, ok := modules[filepath.ToSlash(rel)]
		if !ok {
			t.Fatalf("no module declared for %s", rel)
		}
		modReg.Register(route.SourceFile, m)
	}

	renderer := page.NewRenderer(modReg, hooks.NewManager(), nil)
	return reg, renderer
}

func textComponent(text string) markup.Component {
	return func(props map[string]any) *markup.Node {
		return markup.El("p", nil, markup.Text(text))
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	ne, ok := err.(*errors.NextgoError)
	if !ok {
		t.Fatalf("expected *errors.NextgoError, got %T: %v", err, err)
	}
	if ne.Code != code {
		t.Fatalf("error code = %s, want %s", ne.Code, code)
	}
}

func TestExportEndToEnd(t *testing.T) {
	reg, renderer := buildSite(t, map[string]string{
		"index.go":       componentPage,
		"about.go":       componentPage,
		"blog/[slug].go": staticPathsPage,
	}, map[string]*page.Module{
		"index.go": {Component: textComponent("home")},
		"about.go": {Component: textComponent("about")},
		"blog/[slug].go": {
			Component: func(props map[string]any) *markup.Node {
				slug, _ := props["slug"].(string)
				return markup.El("h1", nil, markup.Text(slug))
			},
			GetStaticPaths: func(ctx context.Context) ([]router.Params, error) {
				return []router.Params{{"slug": "hello"}, {"slug": "world"}}, nil
			},
		},
	})

	pubDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(pubDir, "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	exp := NewExporter(reg, renderer, outDir, pubDir, nil)

	manifest, err := exp.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := map[string]string{
		"/":           "index.html",
		"/about":      filepath.Join("about", "index.html"),
		"/blog/hello": filepath.Join("blog", "hello", "index.html"),
		"/blog/world": filepath.Join("blog", "world", "index.html"),
	}
	if len(manifest.Pages) != len(want) {
		t.Fatalf("exported %d pages, want %d: %v", len(manifest.Pages), len(want), manifest.Pages)
	}
	for urlPath, rel := range want {
		if manifest.Pages[urlPath] != rel {
			t.Errorf("manifest[%s] = %s, want %s", urlPath, manifest.Pages[urlPath], rel)
		}
		data, err := os.ReadFile(filepath.Join(outDir, rel))
		if err != nil {
			t.Fatalf("reading %s: %v", rel, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", rel)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "blog", "hello", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<h1>hello</h1>") {
		t.Errorf("dynamic page body = %q", data)
	}

	if len(manifest.Assets) != 1 || manifest.Assets[0] != "style.css" {
		t.Errorf("assets = %v, want [style.css]", manifest.Assets)
	}
	if _, err := os.Stat(filepath.Join(outDir, "style.css")); err != nil {
		t.Errorf("public file not copied: %v", err)
	}
}

func TestExportTemplatePage(t *testing.T) {
	reg, renderer := buildSite(t, map[string]string{
		"about.go": templateStylePage,
	}, map[string]*page.Module{
		"about.go": {
			Template: func() string { return "about.html" },
			GetStaticProps: func(fc *page.Context) (*page.Result, error) {
				return &page.Result{Props: map[string]any{"title": "About"}}, nil
			},
		},
	})

	outDir := t.TempDir()
	exp := NewExporter(reg, renderer, outDir, "", nil)
	exp.Templates = func(name string, props map[string]any) (string, error) {
		if name != "about.html" {
			t.Errorf("template name = %q, want about.html", name)
		}
		title, _ := props["title"].(string)
		return "<html><body><h1>" + title + "</h1></body></html>", nil
	}

	manifest, err := exp.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	rel, ok := manifest.Pages["/about"]
	if !ok {
		t.Fatalf("template page missing from manifest: %v", manifest.Pages)
	}
	if want := filepath.Join("about", "index.html"); rel != want {
		t.Errorf("manifest[/about] = %s, want %s", rel, want)
	}
	data, err := os.ReadFile(filepath.Join(outDir, rel))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<h1>About</h1>") {
		t.Errorf("template page body = %q", data)
	}
}

func TestExportTemplatePageWithoutRendererFails(t *testing.T) {
	reg, renderer := buildSite(t, map[string]string{
		"about.go": templateStylePage,
	}, map[string]*page.Module{
		"about.go": {Template: func() string { return "about.html" }},
	})

	_, err := NewExporter(reg, renderer, t.TempDir(), "", nil).Export(context.Background())
	assertCode(t, err, "E221")
}

func TestExportWritesRedirectStub(t *testing.T) {
	reg, renderer := buildSite(t, map[string]string{
		"old.go": componentPage,
	}, map[string]*page.Module{
		"old.go": {
			Component: textComponent("unused"),
			GetStaticProps: func(fc *page.Context) (*page.Result, error) {
				return &page.Result{Redirect: &page.Redirect{Destination: "/new", Permanent: true}}, nil
			},
		},
	})

	outDir := t.TempDir()
	manifest, err := NewExporter(reg, renderer, outDir, "", nil).Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	rel, ok := manifest.Pages["/old"]
	if !ok {
		t.Fatal("redirect page missing from manifest")
	}
	data, err := os.ReadFile(filepath.Join(outDir, rel))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `url=/new`) {
		t.Errorf("stub body = %q", data)
	}
}

func TestExportSkipsNotFound(t *testing.T) {
	reg, renderer := buildSite(t, map[string]string{
		"gone.go": componentPage,
	}, map[string]*page.Module{
		"gone.go": {
			Component: textComponent("unused"),
			GetStaticProps: func(fc *page.Context) (*page.Result, error) {
				return &page.Result{NotFound: true}, nil
			},
		},
	})

	outDir := t.TempDir()
	manifest, err := NewExporter(reg, renderer, outDir, "", nil).Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(manifest.Pages) != 0 {
		t.Errorf("pages = %v, want none", manifest.Pages)
	}
	if _, err := os.Stat(filepath.Join(outDir, "gone", "index.html")); !os.IsNotExist(err) {
		t.Error("not-found page was written")
	}
}

func TestExportDynamicWithoutPathsFails(t *testing.T) {
	reg, renderer := buildSite(t, map[string]string{
		"blog/[slug].go": staticPathsPage,
	}, map[string]*page.Module{
		"blog/[slug].go": {Component: textComponent("post")},
	})

	_, err := NewExporter(reg, renderer, t.TempDir(), "", nil).Export(context.Background())
	assertCode(t, err, "E141")
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name    string
		route   *router.Route
		params  router.Params
		want    string
		wantErr bool
	}{
		{
			name:  "static passthrough",
			route: &router.Route{URLPath: "/about"},
			want:  "/about",
		},
		{
			name:   "single param",
			route:  &router.Route{URLPath: "/blog/:slug", IsDynamic: true},
			params: router.Params{"slug": "hello"},
			want:   "/blog/hello",
		},
		{
			name:   "multiple params",
			route:  &router.Route{URLPath: "/shop/:category/:item", IsDynamic: true},
			params: router.Params{"category": "books", "item": "go"},
			want:   "/shop/books/go",
		},
		{
			name:   "catch-all keeps inner slashes",
			route:  &router.Route{URLPath: "/docs/*path", IsDynamic: true},
			params: router.Params{"path": "guide/install"},
			want:   "/docs/guide/install",
		},
		{
			name:   "catch-all trims edge slashes",
			route:  &router.Route{URLPath: "/docs/*path", IsDynamic: true},
			params: router.Params{"path": "/guide/"},
			want:   "/docs/guide",
		},
		{
			name:    "missing param",
			route:   &router.Route{URLPath: "/blog/:slug", IsDynamic: true},
			params:  router.Params{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPath(tt.route, tt.params)
			if tt.wantErr {
				assertCode(t, err, "E141")
				return
			}
			if err != nil {
				t.Fatalf("expandPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("expandPath = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOutputFile(t *testing.T) {
	tests := []struct {
		urlPath string
		want    string
	}{
		{"/", "index.html"},
		{"/about", filepath.Join("about", "index.html")},
		{"/blog/hello", filepath.Join("blog", "hello", "index.html")},
	}
	for _, tt := range tests {
		if got := outputFile(tt.urlPath); got != tt.want {
			t.Errorf("outputFile(%s) = %s, want %s", tt.urlPath, got, tt.want)
		}
	}
}

// fakeS3 records uploads and serves a canned object listing.
type fakeS3 struct {
	mu       sync.Mutex
	puts     map[string]string // key -> content type
	bodies   map[string]string // key -> body
	deleted  []string
	existing []string // keys returned by ListObjectsV2
}

func newFakeS3(existing ...string) *fakeS3 {
	return &fakeS3{
		puts:     make(map[string]string),
		bodies:   make(map[string]string),
		existing: existing,
	}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[*in.Key] = *in.ContentType
	f.bodies[*in.Key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for _, key := range f.existing {
		key := key
		out.Contents = append(out.Contents, s3types.Object{Key: &key})
	}
	return out, nil
}

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestPublishUploadsTree(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"index.html":      "<html>home</html>",
		"blog/index.html": "<html>blog</html>",
		"style.css":       "body{}",
	})

	client := newFakeS3()
	pub := NewPublisher(client, "my-bucket", "site", nil)
	if err := pub.Publish(context.Background(), dir); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(client.puts) != 3 {
		t.Fatalf("uploaded %d objects, want 3: %v", len(client.puts), client.puts)
	}
	if ct := client.puts["site/index.html"]; !strings.HasPrefix(ct, "text/html") {
		t.Errorf("index.html content type = %q", ct)
	}
	if ct := client.puts["site/style.css"]; !strings.HasPrefix(ct, "text/css") {
		t.Errorf("style.css content type = %q", ct)
	}
	if body := client.bodies["site/blog/index.html"]; body != "<html>blog</html>" {
		t.Errorf("blog body = %q", body)
	}
	if len(client.deleted) != 0 {
		t.Errorf("deleted %v without prune", client.deleted)
	}
}

func TestPublishPrunesStaleObjects(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"index.html": "<html>home</html>",
	})

	client := newFakeS3("site/index.html", "site/removed/index.html", "site/old.css")
	pub := NewPublisher(client, "my-bucket", "site/", nil)
	pub.Prune = true
	if err := pub.Publish(context.Background(), dir); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	want := map[string]bool{"site/removed/index.html": true, "site/old.css": true}
	if len(client.deleted) != len(want) {
		t.Fatalf("deleted = %v, want 2 stale keys", client.deleted)
	}
	for _, key := range client.deleted {
		if !want[key] {
			t.Errorf("deleted unexpected key %s", key)
		}
	}
}

func TestPublishRequiresBucket(t *testing.T) {
	pub := NewPublisher(newFakeS3(), "", "", nil)
	err := pub.Publish(context.Background(), t.TempDir())
	assertCode(t, err, "E203")
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"index.html", "text/html"},
		{"app.css", "text/css"},
		{"data.json", "application/json"},
		{"blob.unknownext", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := contentTypeFor(tt.name); !strings.HasPrefix(got, tt.want) {
			t.Errorf("contentTypeFor(%s) = %s, want prefix %s", tt.name, got, tt.want)
		}
	}
}
