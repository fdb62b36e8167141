package dev

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nextgo-dev/nextgo/internal/errors"
)

// CompilerConfig configures application builds.
type CompilerConfig struct {
	// ProjectPath is the root directory of the project.
	ProjectPath string

	// BinaryPath is where to write the compiled binary. Defaults to
	// .nextgo/app under the project root.
	BinaryPath string

	// Env are additional environment variables for the app process.
	Env []string
}

// BuildResult describes one build attempt.
type BuildResult struct {
	Success  bool
	Duration time.Duration
	Output   string
	Error    error
}

// Compiler builds the project and manages the resulting app process.
type Compiler struct {
	config  CompilerConfig
	process *processHandle
	mu      sync.Mutex
}

// NewCompiler creates a compiler for the project.
func NewCompiler(config CompilerConfig) *Compiler {
	if config.BinaryPath == "" {
		config.BinaryPath = filepath.Join(config.ProjectPath, ".nextgo", "app")
	}
	return &Compiler{config: config}
}

// Build compiles the project package.
func (c *Compiler) Build(ctx context.Context) BuildResult {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(c.config.BinaryPath), 0755); err != nil {
		return BuildResult{
			Duration: time.Since(start),
			Error:    errors.New("E181").Wrap(err),
		}
	}

	cmd := exec.CommandContext(ctx, "go", "build", "-o", c.config.BinaryPath, ".")
	cmd.Dir = c.config.ProjectPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	output := stderr.String()
	if output == "" {
		output = stdout.String()
	}
	output = strings.TrimSpace(output)

	if err != nil {
		return BuildResult{
			Duration: duration,
			Output:   output,
			Error:    errors.New("E181").WithDetail(output).Wrap(err),
		}
	}
	return BuildResult{Success: true, Duration: duration, Output: output}
}

// Start runs the compiled binary, replacing any running instance.
func (c *Compiler) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.process != nil {
		stopProcess(c.process)
		c.process = nil
	}

	env := append(os.Environ(), c.config.Env...)
	proc, err := startProcess(ctx, c.config.BinaryPath, c.config.ProjectPath, env)
	if err != nil {
		return errors.New("E181").Wrap(err)
	}
	c.process = proc
	return nil
}

// Stop stops the running app process.
func (c *Compiler) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.process != nil {
		stopProcess(c.process)
		c.process = nil
	}
}

// Restart stops the current process and starts a fresh one.
func (c *Compiler) Restart(ctx context.Context) error {
	c.Stop()
	return c.Start(ctx)
}

// IsRunning reports whether the app process is alive.
func (c *Compiler) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.process != nil
}

// BinaryPath returns the path of the compiled binary.
func (c *Compiler) BinaryPath() string {
	return c.config.BinaryPath
}
