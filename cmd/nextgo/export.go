package main

import (
	"context"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/nextgo-dev/nextgo/internal/config"
	"github.com/nextgo-dev/nextgo/internal/dev"
	"github.com/nextgo-dev/nextgo/internal/errors"
)

func exportCmd() *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render static routes to the output directory",
		Long: `Build the application and run it in export mode. The app renders
every statically-resolvable route to the output directory configured in
nextgo.json and copies the public directory through.

Pages are exported through the app binary because their modules are
compiled into it.

With --publish, the output is uploaded to the S3 bucket configured in
the export section of nextgo.json afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(publish)
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "Upload the output to the configured S3 bucket")

	return cmd
}

func runExport(publish bool) error {
	if _, err := exec.LookPath("go"); err != nil {
		errorMsg("Go is not installed or not in PATH")
		return err
	}

	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}
	if publish && cfg.Export.S3Bucket == "" {
		return errors.New("E203")
	}

	ctx := context.Background()
	compiler := dev.NewCompiler(dev.CompilerConfig{ProjectPath: cfg.Dir()})

	info("Building...")
	result := compiler.Build(ctx)
	if !result.Success {
		if result.Error != nil {
			return result.Error
		}
		return errors.New("E181").WithDetail(result.Output)
	}
	success("Built in %s", result.Duration)

	info("Exporting to %s...", cfg.OutputPath())
	run := exec.CommandContext(ctx, compiler.BinaryPath())
	run.Dir = cfg.Dir()
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	run.Env = append(os.Environ(), "NEXTGO_EXPORT=1")
	if publish {
		run.Env = append(run.Env, "NEXTGO_PUBLISH=1")
	}
	if err := run.Run(); err != nil {
		return errors.New("E221").Wrap(err)
	}

	success("Export complete")
	return nil
}
