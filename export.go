package nextgo

import (
	"context"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nextgo-dev/nextgo/pkg/export"
)

// Environment variables the CLI sets when it drives the app binary.
// Run checks them so "nextgo export" can reuse the application's own
// module registrations.
const (
	EnvExport  = "NEXTGO_EXPORT"
	EnvPublish = "NEXTGO_PUBLISH"
)

// Export renders every statically-resolvable route to the configured
// output directory and copies the public directory through.
func (a *App) Export(ctx context.Context) (*export.Manifest, error) {
	exporter := export.NewExporter(
		a.routes,
		a.renderer,
		a.config.OutputPath(),
		a.config.PublicPath(),
		a.logger,
	)
	exporter.Templates = a.executeTemplate
	return exporter.Export(ctx)
}

// Publish uploads the export output directory to the S3 bucket named in
// the export section of nextgo.json.
func (a *App) Publish(ctx context.Context) error {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := a.config.Export.S3Region; region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return err
	}

	pub := export.NewPublisher(
		s3.NewFromConfig(awsCfg),
		a.config.Export.S3Bucket,
		a.config.Export.S3Prefix,
		a.logger,
	)
	return pub.Publish(ctx, a.config.OutputPath())
}

// runExportMode performs the export the CLI requested through the
// environment, instead of serving.
func (a *App) runExportMode(ctx context.Context) error {
	manifest, err := a.Export(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("export complete",
		"pages", len(manifest.Pages), "assets", len(manifest.Assets),
		"out", a.config.OutputPath())

	if os.Getenv(EnvPublish) == "1" {
		return a.Publish(ctx)
	}
	return nil
}
