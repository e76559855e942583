package audit

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var archiveTracer = otel.Tracer("rosterd/audit")

// S3Archiver uploads expired search logs to object storage before they are
// deleted from the database.
type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3ArchiverConfig configures the archive destination. Endpoint and
// path-style addressing support MinIO in local development.
type S3ArchiverConfig struct {
	Region       string
	Bucket       string
	Prefix       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// NewS3Archiver creates an archiver against the configured bucket.
func NewS3Archiver(cfg S3ArchiverConfig) (*S3Archiver, error) {
	ctx := context.Background()

	var awsCfg aws.Config
	var err error

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "search-logs"
	}

	return &S3Archiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
	}, nil
}

// Archive uploads the events as one NDJSON object keyed by the archive
// timestamp.
func (a *S3Archiver) Archive(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, span := archiveTracer.Start(ctx, "Audit.Archive",
		trace.WithAttributes(
			attribute.String("s3.bucket", a.bucket),
			attribute.Int("events.count", len(events)),
		),
	)
	defer span.End()

	var buf bytes.Buffer
	if err := Export(&buf, events, FormatNDJSON); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize archive")
		return fmt.Errorf("failed to serialize archive: %w", err)
	}

	key := fmt.Sprintf("%s/%s.ndjson", a.prefix, time.Now().UTC().Format("2006/01/02/150405"))
	span.SetAttributes(attribute.String("s3.key", key))

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload archive")
		return fmt.Errorf("failed to upload archive to s3: %w", err)
	}

	span.SetStatus(codes.Ok, "archive uploaded")
	return nil
}

// HealthCheck verifies the bucket is reachable.
func (a *S3Archiver) HealthCheck(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 health check failed: %w", err)
	}
	return nil
}
