package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/nextgo-dev/nextgo/internal/errors"
	"github.com/nextgo-dev/nextgo/internal/templates"
)

func createCmd() *cobra.Command {
	var (
		templateName string
		modulePath   string
		description  string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new nextgo project",
		Long: `Create a new nextgo project with the specified name.

Templates:
  minimal   A small site with one page and one API route (default)
  api       API-only project without pages

Examples:
  nextgo create my-site
  nextgo create my-api --template=api
  nextgo create my-site --module=github.com/me/my-site`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0], templateName, modulePath, description)
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "minimal", "Project template (minimal, api)")
	cmd.Flags().StringVarP(&modulePath, "module", "m", "", "Go module path (default: project name)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")

	return cmd
}

var projectNameRe = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

func runCreate(name, templateName, modulePath, description string) error {
	if !projectNameRe.MatchString(name) {
		return errors.Newf(errors.CategoryCLI, "invalid project name %q", name).
			WithSuggestion("Use lowercase letters, numbers, and hyphens, starting with a letter")
	}

	projectDir, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(projectDir); !os.IsNotExist(err) {
		return errors.New("E223").
			WithDetail("Directory '" + name + "' already exists").
			WithSuggestion("Choose a different name or remove the existing directory")
	}

	if modulePath == "" {
		modulePath = name
	}
	if description == "" {
		description = "A nextgo site"
	}

	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	info("Creating %s from the '%s' template...", name, templateName)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return err
	}
	if err := tmpl.Create(projectDir, templates.Config{
		ProjectName: name,
		ModulePath:  modulePath,
		Description: description,
	}); err != nil {
		os.RemoveAll(projectDir)
		return err
	}

	// Best effort; the scaffold's go.mod already names the module.
	if _, lookErr := exec.LookPath("go"); lookErr == nil {
		tidy := exec.Command("go", "mod", "tidy")
		tidy.Dir = projectDir
		if err := tidy.Run(); err != nil {
			info("go mod tidy failed; run it manually in %s", name)
		}
	}

	success("Created %s", name)
	info("Next steps:")
	info("  cd %s", name)
	info("  nextgo dev")
	return nil
}
