package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nextgo-dev/nextgo/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewDefaults(t *testing.T) {
	cfg := New()

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Paths.Pages != "pages" {
		t.Errorf("Paths.Pages = %q", cfg.Paths.Pages)
	}
	if cfg.Export.Output != DefaultOutput {
		t.Errorf("Export.Output = %q", cfg.Export.Output)
	}
	if !cfg.Dev.HotReload {
		t.Error("HotReload should default to true")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
  "name": "my-site",
  "port": 8080,
  "paths": { "pages": "src/pages" },
  "export": { "output": "dist", "s3Bucket": "my-bucket" }
}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Name != "my-site" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Dev.Port != 8080 {
		t.Errorf("Dev.Port = %d, want inherited 8080", cfg.Dev.Port)
	}
	if cfg.Paths.Pages != "src/pages" {
		t.Errorf("Paths.Pages = %q", cfg.Paths.Pages)
	}
	if cfg.Paths.Templates != "templates" {
		t.Errorf("Paths.Templates = %q, want default", cfg.Paths.Templates)
	}
	if cfg.Export.S3Bucket != "my-bucket" {
		t.Errorf("Export.S3Bucket = %q", cfg.Export.S3Bucket)
	}
	if cfg.PagesPath() != filepath.Join(dir, "src/pages") {
		t.Errorf("PagesPath() = %q", cfg.PagesPath())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing nextgo.json")
	}
	ne, ok := err.(*errors.NextgoError)
	if !ok || ne.Code != "E220" {
		t.Errorf("err = %v, want E220", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{ not json `)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for malformed nextgo.json")
	}
	ne, ok := err.(*errors.NextgoError)
	if !ok || ne.Code != "E200" {
		t.Errorf("err = %v, want E200", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"name":"x"}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Name = "renamed"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Name != "renamed" {
		t.Errorf("Name = %q after save/load", reloaded.Name)
	}
}

func TestValidate(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Dev.Port = 99999
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestDevAddressAndURL(t *testing.T) {
	cfg := New()
	cfg.Dev.Host = "0.0.0.0"
	cfg.Dev.Port = 4000

	if got := cfg.DevAddress(); got != "0.0.0.0:4000" {
		t.Errorf("DevAddress() = %q", got)
	}
	if got := cfg.DevURL(); got != "http://0.0.0.0:4000" {
		t.Errorf("DevURL() = %q", got)
	}

	cfg.Dev.HTTPS = true
	if got := cfg.DevURL(); got != "https://0.0.0.0:4000" {
		t.Errorf("DevURL() with HTTPS = %q", got)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `{}`)
	nested := filepath.Join(root, "pages", "blog")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	// Resolve symlinks for macOS tmpdir.
	wantResolved, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != wantResolved {
		t.Errorf("root = %q, want %q", got, root)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Error("Exists should be false without nextgo.json")
	}
	writeConfig(t, dir, `{}`)
	if !Exists(dir) {
		t.Error("Exists should be true with nextgo.json")
	}
}
