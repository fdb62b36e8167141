package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextgo-dev/nextgo/internal/config"
	"github.com/nextgo-dev/nextgo/pkg/jsx"
)

func preprocessCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Rewrite markup literal blocks into Go calls",
		Long: `Scan the pages directory for markup literal blocks and rewrite them
in place into markup.Raw calls, adding the markup import when missing.

With --check, no files are modified; the command fails if any file
still needs rewriting. Useful in CI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreprocess(check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report files needing rewriting without modifying them")

	return cmd
}

func runPreprocess(check bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	var pending []string
	rewritten := 0

	err = filepath.WalkDir(cfg.PagesPath(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		src := string(data)
		if !jsx.IsJSXFile(src) {
			return nil
		}
		out := jsx.Preprocess(src)
		if out == src {
			return nil
		}

		if check {
			pending = append(pending, relTo(cfg.Dir(), path))
			return nil
		}
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			return err
		}
		success("Rewrote %s", relTo(cfg.Dir(), path))
		rewritten++
		return nil
	})
	if err != nil {
		return err
	}

	if check {
		if len(pending) > 0 {
			for _, p := range pending {
				errorMsg("Needs preprocessing: %s", p)
			}
			return fmt.Errorf("%d file(s) need preprocessing", len(pending))
		}
		success("All page files are preprocessed")
		return nil
	}

	if rewritten == 0 {
		info("Nothing to rewrite")
	}
	return nil
}
