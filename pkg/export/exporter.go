// Package export renders the statically-resolvable page routes to an
// output directory and optionally publishes the result to S3.
package export

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nextgo-dev/nextgo/internal/errors"
	"github.com/nextgo-dev/nextgo/pkg/page"
	"github.com/nextgo-dev/nextgo/pkg/router"
)

// Manifest lists what an export produced.
type Manifest struct {
	// Pages maps URL paths to the files they were written to,
	// relative to the output directory.
	Pages map[string]string

	// Assets are public files copied through, relative to the output
	// directory.
	Assets []string
}

// TemplateRenderer renders a template-style page: the template
// identifier a module declares plus the fetched props, producing the
// final HTML document.
type TemplateRenderer func(name string, props map[string]any) (string, error)

// Exporter renders static routes to disk.
type Exporter struct {
	registry *router.Registry
	renderer *page.Renderer
	outDir   string
	pubDir   string
	logger   *slog.Logger

	// Templates renders template-style pages. Required when the route
	// table contains any; component-only sites may leave it nil.
	Templates TemplateRenderer
}

// NewExporter creates an exporter writing to outDir. publicDir is copied
// through verbatim; empty skips the copy.
func NewExporter(registry *router.Registry, renderer *page.Renderer, outDir, publicDir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		registry: registry,
		renderer: renderer,
		outDir:   outDir,
		pubDir:   publicDir,
		logger:   logger,
	}
}

// Export renders every statically-resolvable page route. Dynamic routes
// expand through their GetStaticPaths parameter sets. A page whose data
// fetch reports not-found is skipped; a redirect writes a meta-refresh
// stub so the exported site still forwards the visitor.
func (e *Exporter) Export(ctx context.Context) (*Manifest, error) {
	manifest := &Manifest{Pages: make(map[string]string)}

	for _, route := range e.registry.StaticRoutes() {
		if route.IsAPI {
			continue
		}

		sets, err := e.renderer.StaticParams(ctx, route)
		if err != nil {
			return nil, err
		}

		for _, params := range sets {
			urlPath, err := expandPath(route, params)
			if err != nil {
				return nil, err
			}

			result, err := e.renderer.RenderPage(ctx, &page.Request{
				Route:  route,
				Params: params,
				Key:    "export:" + urlPath,
			})
			if err != nil {
				return nil, errors.FromError(err, "E221")
			}
			if result.NotFound {
				e.logger.Info("skipping not-found page", "path", urlPath)
				continue
			}

			var body string
			switch {
			case result.Redirect != nil:
				body = redirectStub(result.Redirect.Destination)
			case result.Template != "":
				if e.Templates == nil {
					return nil, errors.New("E221").WithDetail(
						fmt.Sprintf("Template page %s needs a template renderer; none is configured.", urlPath))
				}
				body, err = e.Templates(result.Template, result.Props)
				if err != nil {
					return nil, errors.FromError(err, "E221")
				}
			case result.HTML != "":
				body = result.HTML
			default:
				e.logger.Warn("route produced no HTML, skipping", "path", urlPath)
				continue
			}

			rel := outputFile(urlPath)
			if err := e.writeFile(rel, body); err != nil {
				return nil, err
			}
			manifest.Pages[urlPath] = rel
			e.logger.Info("exported", "path", urlPath, "file", rel)
		}
	}

	if e.pubDir != "" {
		assets, err := e.copyPublic()
		if err != nil {
			return nil, err
		}
		manifest.Assets = assets
	}

	return manifest, nil
}

// expandPath substitutes params into a route pattern to recover the
// concrete URL path.
func expandPath(route *router.Route, params router.Params) (string, error) {
	if !route.IsDynamic {
		return route.URLPath, nil
	}

	segments := strings.Split(strings.TrimPrefix(route.URLPath, "/"), "/")
	for i, seg := range segments {
		var name string
		switch {
		case strings.HasPrefix(seg, "*"):
			name = seg[1:]
		case strings.HasPrefix(seg, ":"):
			name = seg[1:]
		default:
			continue
		}
		value, ok := params[name]
		if !ok {
			return "", errors.New("E141").
				WithDetail(fmt.Sprintf("Parameter set %v is missing %q for %s.", params, name, route.URLPath))
		}
		segments[i] = strings.Trim(value, "/")
	}
	return "/" + strings.Join(segments, "/"), nil
}

// outputFile maps a URL path to its file inside the output directory:
// "/" becomes index.html, everything else <path>/index.html.
func outputFile(urlPath string) string {
	if urlPath == "/" {
		return "index.html"
	}
	return filepath.Join(filepath.FromSlash(strings.TrimPrefix(urlPath, "/")), "index.html")
}

func (e *Exporter) writeFile(rel, body string) error {
	dst := filepath.Join(e.outDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.New("E221").Wrap(err)
	}
	if err := os.WriteFile(dst, []byte(body), 0644); err != nil {
		return errors.New("E221").Wrap(err)
	}
	return nil
}

// copyPublic mirrors the public directory into the output directory.
func (e *Exporter) copyPublic() ([]string, error) {
	var assets []string

	err := filepath.WalkDir(e.pubDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(e.pubDir, p)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}

		dst := filepath.Join(e.outDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return err
		}

		assets = append(assets, rel)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New("E221").Wrap(err)
	}
	return assets, nil
}

// redirectStub is the HTML written for a statically exported redirect.
func redirectStub(destination string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta http-equiv="refresh" content="0; url=%s">
<link rel="canonical" href="%s">
</head>
<body></body>
</html>
`, destination, destination)
}
