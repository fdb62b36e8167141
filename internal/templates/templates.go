// Package templates holds the project scaffolds used by "nextgo create".
package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/nextgo-dev/nextgo/internal/errors"
)

// Config parameterizes a scaffold.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// ModulePath is the Go module path.
	ModulePath string

	// Description is a short project description.
	Description string
}

// Template is one project scaffold: a map of relative paths to file
// contents, each run through text/template with the Config.
type Template struct {
	Name        string
	Description string
	Files       map[string]string
}

var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"api":     apiTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E222").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: minimal, api")
	}
	return tmpl, nil
}

// List returns all available template names.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	return names
}

// Create generates a project from the template.
func (t *Template) Create(dir string, cfg Config) error {
	for relPath, content := range t.Files {
		tmpl, err := template.New(relPath).Parse(content)
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "A small site with one page and one API route",
		Files: map[string]string{
			"go.mod": `module {{.ModulePath}}

go 1.23

require github.com/nextgo-dev/nextgo v0.1.0
`,
			"nextgo.json": `{
  "name": "{{.ProjectName}}",
  "version": "0.1.0",
  "port": 3000
}
`,
			"main.go": `package main

import (
	"context"
	"log"
	"os"

	"github.com/nextgo-dev/nextgo"

	"{{.ModulePath}}/pages"
	"{{.ModulePath}}/pages/api"
)

func main() {
	cfg, err := nextgo.LoadConfigFromWorkingDir()
	if err != nil {
		log.Fatal(err)
	}

	app, err := nextgo.New(cfg, nextgo.WithDevMode(os.Getenv("NEXTGO_DEV") == "1"))
	if err != nil {
		log.Fatal(err)
	}

	app.RegisterModule("pages/index.go", &nextgo.Module{
		Component: pages.IndexPage,
	})
	app.RegisterModule("pages/api/health.go", &nextgo.Module{
		Methods: api.HealthMethods(),
	})

	addr := cfg.DevAddress()
	if port := os.Getenv("PORT"); port != "" {
		addr = cfg.Dev.Host + ":" + port
	}
	log.Fatal(app.Run(context.Background(), addr))
}
`,
			"pages/index.go": `package pages

import "github.com/nextgo-dev/nextgo/pkg/markup"

// IndexPage renders the home page.
func IndexPage(props map[string]any) *markup.Node {
	return markup.El("html", nil,
		markup.El("head", nil,
			markup.El("title", nil, markup.Text("{{.ProjectName}}")),
			markup.El("link", markup.Props{"rel": "stylesheet", "href": "/style.css"}),
		),
		markup.El("body", nil,
			markup.El("h1", nil, markup.Text("{{.ProjectName}}")),
			markup.El("p", nil, markup.Text("{{.Description}}")),
		),
	)
}
`,
			"pages/api/health.go": `package api

import "github.com/nextgo-dev/nextgo/pkg/page"

// GET declares the health endpoint for the route scanner.
func GET(params map[string]string) (any, error) { return nil, nil }

// HealthMethods returns the handlers registered for this route.
func HealthMethods() map[string]page.APIHandler {
	return map[string]page.APIHandler{
		"GET": func(fc *page.Context) (any, error) {
			return map[string]string{"status": "ok"}, nil
		},
	}
}
`,
			"public/style.css": `body {
  font-family: system-ui, sans-serif;
  max-width: 40rem;
  margin: 4rem auto;
}
`,
			".gitignore": `.nextgo/
out/
`,
		},
	}
}

func apiTemplate() *Template {
	return &Template{
		Name:        "api",
		Description: "API-only project without pages",
		Files: map[string]string{
			"go.mod": `module {{.ModulePath}}

go 1.23

require github.com/nextgo-dev/nextgo v0.1.0
`,
			"nextgo.json": `{
  "name": "{{.ProjectName}}",
  "version": "0.1.0",
  "port": 3000
}
`,
			"main.go": `package main

import (
	"context"
	"log"
	"os"

	"github.com/nextgo-dev/nextgo"

	"{{.ModulePath}}/pages/api"
)

func main() {
	cfg, err := nextgo.LoadConfigFromWorkingDir()
	if err != nil {
		log.Fatal(err)
	}

	app, err := nextgo.New(cfg, nextgo.WithDevMode(os.Getenv("NEXTGO_DEV") == "1"))
	if err != nil {
		log.Fatal(err)
	}

	app.RegisterModule("pages/api/health.go", &nextgo.Module{
		Methods: api.HealthMethods(),
	})

	addr := cfg.DevAddress()
	if port := os.Getenv("PORT"); port != "" {
		addr = cfg.Dev.Host + ":" + port
	}
	log.Fatal(app.Run(context.Background(), addr))
}
`,
			"pages/api/health.go": `package api

import "github.com/nextgo-dev/nextgo/pkg/page"

// GET declares the health endpoint for the route scanner.
func GET(params map[string]string) (any, error) { return nil, nil }

// HealthMethods returns the handlers registered for this route.
func HealthMethods() map[string]page.APIHandler {
	return map[string]page.APIHandler{
		"GET": func(fc *page.Context) (any, error) {
			return map[string]string{"status": "ok"}, nil
		},
	}
}
`,
			".gitignore": `.nextgo/
out/
`,
		},
	}
}
