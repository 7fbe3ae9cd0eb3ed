package prompttemplate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/wearcast/internal/domain/advice"
)

const maxTemplateBytes = 64 << 10

// ObjectConfig points at a template stored in an S3-compatible bucket (S3, R2, MinIO).
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Key       string
}

// ObjectSource reads the template from object storage.
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewObjectSource constructs the storage adapter.
func NewObjectSource(cfg ObjectConfig, logger *slog.Logger) (*ObjectSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectSource{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
		logger: logger.With("component", "prompttemplate.object"),
	}, nil
}

// Load implements advice.TemplateSource.
func (s *ObjectSource) Load(ctx context.Context) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("get prompt template: %w", err)
	}
	defer obj.Close()
	info, err := obj.Stat()
	if err != nil {
		return "", fmt.Errorf("stat prompt template: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(obj, maxTemplateBytes))
	if err != nil {
		return "", fmt.Errorf("read prompt template: %w", err)
	}
	s.logger.Info("prompt template loaded", "bucket", s.bucket, "key", s.key, "etag", info.ETag, "bytes", len(data))
	return strings.TrimSpace(string(data)), nil
}

var _ advice.TemplateSource = (*ObjectSource)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}
