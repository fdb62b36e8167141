package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextgo-dev/nextgo/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nextgo",
		Short: "File-based web framework for Go",
		Long: `nextgo builds websites from a pages directory.

File names define the route table: pages/blog/[slug].go serves
/blog/:slug, pages/api/users/[id].go serves JSON at /api/users/:id.

Commands cover the whole lifecycle:

  create      scaffold a new project
  dev         run the development server with hot reload
  routes      print the resolved route table
  preprocess  rewrite markup literal blocks into Go calls
  export      render static routes to an output directory`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		createCmd(),
		devCmd(),
		routesCmd(),
		preprocessCmd(),
		exportCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
