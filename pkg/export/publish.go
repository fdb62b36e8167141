package export

import (
	"context"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nextgo-dev/nextgo/internal/errors"
)

// S3API is the slice of the S3 client the publisher uses. *s3.Client
// satisfies it; tests substitute a fake.
type S3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Publisher uploads an exported site to an S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	pub := export.NewPublisher(s3.NewFromConfig(cfg), "my-bucket", "site/", logger)
//	err := pub.Publish(ctx, outDir)
type Publisher struct {
	client S3API
	bucket string
	prefix string
	logger *slog.Logger

	// Prune removes bucket objects under the prefix that the current
	// export did not produce.
	Prune bool
}

// NewPublisher creates a publisher targeting bucket under the given key
// prefix.
func NewPublisher(client S3API, bucket, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Publish uploads every file under dir to the bucket, keyed by its
// path relative to dir. With Prune set, objects under the prefix that
// no local file produced are deleted afterwards.
func (p *Publisher) Publish(ctx context.Context, dir string) error {
	if p.bucket == "" {
		return errors.New("E203")
	}

	uploaded := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := p.prefix + filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        strings.NewReader(string(data)),
			ContentType: aws.String(contentTypeFor(rel)),
		})
		if err != nil {
			return err
		}

		uploaded[key] = true
		p.logger.Info("published", "key", key, "bytes", len(data))
		return nil
	})
	if err != nil {
		return errors.New("E221").Wrap(err)
	}

	if p.Prune {
		return p.prune(ctx, uploaded)
	}
	return nil
}

// prune deletes objects under the prefix not present in keep.
func (p *Publisher) prune(ctx context.Context, keep map[string]bool) error {
	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(p.prefix),
	})

	var stale []string
	for paginator.HasMorePages() {
		pageOut, err := paginator.NextPage(ctx)
		if err != nil {
			return errors.New("E221").Wrap(err)
		}
		for _, obj := range pageOut.Contents {
			if obj.Key != nil && !keep[*obj.Key] {
				stale = append(stale, *obj.Key)
			}
		}
	}

	for _, key := range stale {
		_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return errors.New("E221").Wrap(err)
		}
		p.logger.Info("pruned", "key", key)
	}

	return nil
}

// contentTypeFor picks a Content-Type from the file extension.
func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
