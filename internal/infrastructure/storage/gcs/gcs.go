// Package gcs stores uploaded client files in a Google Cloud Storage bucket.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"
)

var tracer = otel.Tracer("github.com/brandpreneur/client-portal/internal/infrastructure/storage/gcs")

type Config struct {
	Bucket          string
	CredentialsFile string
	// PublicBaseURL prefixes returned object URLs.
	PublicBaseURL string
}

// BlobStore implements ports.BlobStore.
type BlobStore struct {
	objects *storage.ObjectsService
	bucket  string
	baseURL string
}

func New(ctx context.Context, cfg Config) (*BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}
	opts := []option.ClientOption{option.WithScopes(storage.DevstorageReadWriteScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}
	base := cfg.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &BlobStore{objects: svc.Objects, bucket: cfg.Bucket, baseURL: strings.TrimRight(base, "/")}, nil
}

// Upload writes data to path and returns its public URL.
func (b *BlobStore) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "gcs.upload",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gcs.bucket", b.bucket),
			attribute.String("gcs.object", path),
			attribute.Int("gcs.size", len(data)),
		),
	)
	defer span.End()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj := &storage.Object{Name: path, ContentType: contentType}
	_, err := b.objects.Insert(b.bucket, obj).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("insert object %s: %w", path, err)
	}
	return objectURL(b.baseURL, b.bucket, path), nil
}

func objectURL(base, bucket, path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return base + "/" + url.PathEscape(bucket) + "/" + strings.Join(segs, "/")
}
