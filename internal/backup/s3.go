// Package backup uploads the end-of-batch state files (ledger snapshot,
// run record CSV) to an S3-compatible bucket. Entirely optional; the app
// only wires it when a bucket is configured.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Settings configures the S3-compatible target (AWS or MinIO).
type Settings struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
	Prefix       string
}

// putObjectAPI is the slice of the S3 client the uploader needs; a seam for
// tests.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	client putObjectAPI
	bucket string
	prefix string

	// now feeds the date segment of object keys
	now func() time.Time
}

// New builds an Uploader for the configured endpoint using static
// credentials.
func New(ctx context.Context, settings Settings) (*Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.RootUser,
			settings.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(settings.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{client: client, bucket: settings.Bucket, prefix: settings.Prefix, now: time.Now}, nil
}

// UploadFile stores one local file under <prefix>/<date>/<basename>.
// Missing files are skipped silently: a first run has no ledger yet.
func (u *Uploader) UploadFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	key := u.key(filepath.Base(path))

	if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	return nil
}

func (u *Uploader) key(name string) string {
	date := u.now().Format("2006-01-02")
	if u.prefix == "" {
		return date + "/" + name
	}
	return u.prefix + "/" + date + "/" + name
}
