package routepath

import (
	"reflect"
	"testing"
)

func TestCompileStatic(t *testing.T) {
	tests := []struct {
		relPath string
		want    string
	}{
		{"index.go", "/"},
		{"about.go", "/about"},
		{"blog/index.go", "/blog"},
		{"docs/getting-started.go", "/docs/getting-started"},
	}

	for _, tt := range tests {
		c := Compile(tt.relPath)
		if c.URLPath != tt.want {
			t.Errorf("Compile(%q).URLPath = %q, want %q", tt.relPath, c.URLPath, tt.want)
		}
		if c.IsDynamic {
			t.Errorf("Compile(%q) should not be dynamic", tt.relPath)
		}
		if c.Pattern != nil {
			t.Errorf("Compile(%q) static route should have nil pattern", tt.relPath)
		}
	}
}

func TestCompileDynamic(t *testing.T) {
	c := Compile("blog/[slug].go")

	if c.URLPath != "/blog/:slug" {
		t.Errorf("URLPath = %q, want %q", c.URLPath, "/blog/:slug")
	}
	if !c.IsDynamic || c.IsCatchAll {
		t.Errorf("flags = dynamic:%v catchAll:%v, want dynamic only", c.IsDynamic, c.IsCatchAll)
	}
	if !reflect.DeepEqual(c.ParamNames, []string{"slug"}) {
		t.Errorf("ParamNames = %v, want [slug]", c.ParamNames)
	}
	if c.Pattern == nil {
		t.Fatal("expected compiled pattern")
	}
	if !c.Pattern.MatchString("/blog/hello-world") {
		t.Error("pattern should match /blog/hello-world")
	}
	if c.Pattern.MatchString("/blog/a/b") {
		t.Error("single dynamic segment must not span slashes")
	}
}

func TestCompileCatchAll(t *testing.T) {
	c := Compile("docs/[...rest].go")

	if c.URLPath != "/docs/*rest" {
		t.Errorf("URLPath = %q, want %q", c.URLPath, "/docs/*rest")
	}
	if !c.IsCatchAll {
		t.Error("expected catch-all flag")
	}
	if !c.Pattern.MatchString("/docs/a/b/c") {
		t.Error("catch-all should match nested paths")
	}

	m := c.Pattern.FindStringSubmatch("/docs/a/b/c")
	if m == nil || m[1] != "a/b/c" {
		t.Errorf("capture = %v, want a/b/c", m)
	}
}

func TestCompileAPI(t *testing.T) {
	c := Compile("api/users/[id].go")

	if !c.IsAPI {
		t.Error("expected API classification")
	}
	if c.URLPath != "/api/users/:id" {
		t.Errorf("URLPath = %q, want %q", c.URLPath, "/api/users/:id")
	}
	if !reflect.DeepEqual(c.ParamNames, []string{"id"}) {
		t.Errorf("ParamNames = %v, want [id]", c.ParamNames)
	}
	if !c.Pattern.MatchString("/api/users/42") {
		t.Error("pattern should match /api/users/42")
	}
}

func TestCompileAPIIndex(t *testing.T) {
	c := Compile("api/index.go")
	if c.URLPath != "/api" {
		t.Errorf("URLPath = %q, want /api", c.URLPath)
	}
}

func TestCompileMalformedBracketFallsBack(t *testing.T) {
	tests := []string{
		"blog/[slug.go",
		"blog/[sl[ug]].go",
		"blog/[].go",
	}

	for _, relPath := range tests {
		c := Compile(relPath)
		if c.IsDynamic || c.Pattern != nil {
			t.Errorf("Compile(%q) should degrade to a literal pattern, got %+v", relPath, c)
		}
	}
}

func TestCompileDuplicateParamFallsBack(t *testing.T) {
	c := Compile("a/[id]/b/[id].go")
	if c.IsDynamic {
		t.Errorf("duplicate parameter name should degrade to literal, got %+v", c)
	}
}

func TestCompileIdempotent(t *testing.T) {
	a := Compile("blog/[slug].go")
	b := Compile("blog/[slug].go")

	if a.URLPath != b.URLPath || a.IsDynamic != b.IsDynamic ||
		a.IsCatchAll != b.IsCatchAll || a.IsAPI != b.IsAPI ||
		!reflect.DeepEqual(a.ParamNames, b.ParamNames) {
		t.Errorf("compiling the same path twice diverged: %+v vs %+v", a, b)
	}
	if a.Pattern.String() != b.Pattern.String() {
		t.Errorf("pattern strings diverged: %q vs %q", a.Pattern, b.Pattern)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/", "/"},
		{"", "/"},
		{"/about/", "/about"},
		{"/about", "/about"},
		{"blog", "/blog"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/blog//post", "/blog/post"},
		{"/blog/./post", "/blog/post"},
		{"/blog/../other", "/other"},
		{"/about/", "/about"},
		{"", "/"},
	}

	for _, tt := range tests {
		got, err := Canonicalize(tt.in)
		if err != nil {
			t.Fatalf("Canonicalize(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalizeRejects(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"/a\\b", ErrBackslashInPath},
		{"/a\x00b", ErrNullByteInPath},
		{"/../secret", ErrPathEscapesRoot},
	}

	for _, tt := range tests {
		if _, err := Canonicalize(tt.in); err != tt.want {
			t.Errorf("Canonicalize(%q) error = %v, want %v", tt.in, err, tt.want)
		}
	}
}
