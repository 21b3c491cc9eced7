package storage

import (
	"context"
	"errors"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const defaultGCSBase = "https://storage.googleapis.com"

// GCSStore keeps objects in a public Google Cloud Storage bucket.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	baseURL string // <base>/<bucket>
	log     *zap.Logger
}

// NewGCSStore connects to the bucket. credentialsFile may be empty to use
// application default credentials; publicBase may be empty for the
// storage.googleapis.com host.
func NewGCSStore(ctx context.Context, bucket, credentialsFile, publicBase string, log *zap.Logger) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage client: %w", err)
	}

	if publicBase == "" {
		publicBase = defaultGCSBase
	}
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("connected to object storage", zap.String("bucket", bucket))
	return &GCSStore{
		client:  client,
		bucket:  bucket,
		baseURL: joinURL(publicBase, bucket),
		log:     log,
	}, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	url := joinURL(s.baseURL, key)
	s.log.Debug("object uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return url, nil
}

func (s *GCSStore) Delete(ctx context.Context, publicURL string) error {
	key, ok := keyFromURL(s.baseURL, publicURL)
	if !ok {
		return fmt.Errorf("%w: %s", ErrForeignURL, publicURL)
	}

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) FindFirst(ctx context.Context, prefix string) (string, bool, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		// skip "folder" placeholders
		if attrs.Name == prefix || attrs.Size == 0 {
			continue
		}
		return joinURL(s.baseURL, attrs.Name), true, nil
	}
}
