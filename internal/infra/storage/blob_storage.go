// Package storage implements FileStorage on top of portable blob buckets.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"scribe/config"
	"scribe/internal/domain/service"
	"scribe/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Register the file:// bucket scheme for local disk storage.
	_ "gocloud.dev/blob/fileblob"
)

// Params defines the required parameters.
type Params struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

type blobStorage struct {
	bucket     *blob.Bucket
	publicPath string
	logger     *slog.Logger
}

// New opens the configured bucket. The bucket URL decides the backend;
// file:// buckets get their directory created on demand.
func New(params Params) (service.FileStorage, error) {
	cfg := params.Config.Uploads
	if cfg == nil || cfg.BucketURL == "" {
		return nil, errors.New("uploads bucket URL is required")
	}

	if dir, ok := localBucketDir(cfg.BucketURL); ok {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create uploads directory")
		}
	}

	bucket, err := blob.OpenBucket(params.Ctx, cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", cfg.BucketURL)
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return bucket.Close()
		},
	})

	params.Logger.Info("Blob storage initialized",
		slog.String("bucket_url", cfg.BucketURL),
	)

	return &blobStorage{
		bucket:     bucket,
		publicPath: strings.TrimRight(cfg.PublicPath, "/"),
		logger:     params.Logger,
	}, nil
}

// NewWithBucket wires an already opened bucket, used by tests.
func NewWithBucket(bucket *blob.Bucket, publicPath string, logger *slog.Logger) service.FileStorage {
	return &blobStorage{
		bucket:     bucket,
		publicPath: strings.TrimRight(publicPath, "/"),
		logger:     logger,
	}
}

func (s *blobStorage) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	key := buildKey(filename)

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to open blob writer")
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()

		return "", errors.Wrap(err, "failed to write blob")
	}

	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "failed to finalize blob")
	}

	return fmt.Sprintf("%s/%s", s.publicPath, key), nil
}

func (s *blobStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open blob %s", key)
	}

	return r, nil
}

func (s *blobStorage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil {
		return errors.Wrapf(err, "failed to delete blob %s", key)
	}

	return nil
}

// buildKey prefixes the sanitized filename with a timestamp and a short
// random component so repeated uploads of the same file never collide.
func buildKey(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}

	return fmt.Sprintf("%d-%s-%s", time.Now().UnixNano(), uuid.NewString()[:8], base)
}

func localBucketDir(bucketURL string) (string, bool) {
	u, err := url.Parse(bucketURL)
	if err != nil || u.Scheme != "file" {
		return "", false
	}

	return u.Path, true
}
