package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nextgo-dev/nextgo/internal/config"
	"github.com/nextgo-dev/nextgo/pkg/router"
)

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the resolved route table",
		Long: `Scan the pages directory and print every resolved route in match
order: page routes first, then API routes, each sorted by specificity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes()
		},
	}
	return cmd
}

func runRoutes() error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	reg := router.NewRegistry(cfg.PagesPath(), nil)
	if err := reg.Scan(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTE\tKIND\tSTYLE\tFILE")

	for _, r := range reg.PageRoutes() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.URLPath, routeKind(r), r.Style, relTo(cfg.Dir(), r.SourceFile))
	}
	for _, r := range reg.APIRoutes() {
		methods := strings.Join(r.Capabilities.Methods, ",")
		if methods == "" && r.Capabilities.HasFallbackHandler {
			methods = "*"
		}
		fmt.Fprintf(w, "%s\tapi\t%s\t%s\n",
			r.URLPath, methods, relTo(cfg.Dir(), r.SourceFile))
	}
	return w.Flush()
}

func routeKind(r *router.Route) string {
	switch {
	case r.IsCatchAll:
		return "catch-all"
	case r.IsDynamic:
		return "dynamic"
	default:
		return "static"
	}
}

func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
