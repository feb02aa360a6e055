package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/minio/minio-go/v7"
)

// MinioStore implements Store for MinIO and S3-compatible object storage.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ Store = (*MinioStore)(nil)

// NewMinioStore creates a store for the given bucket. rootPrefix is
// prepended to all artifact names (e.g. "experiments/").
func NewMinioStore(client *minio.Client, bucket, rootPrefix string) *MinioStore {
	return &MinioStore{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *MinioStore) key(name string) string {
	return path.Join(s.prefix, name)
}

// Put writes an artifact.
func (s *MinioStore) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("artifact: put %s: %w", name, err)
	}
	return nil
}

// Open opens an artifact for reading. Existence is verified up front so a
// missing artifact surfaces as ErrNotFound rather than a read failure.
func (s *MinioStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("artifact: stat %s: %w", name, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("artifact: open %s: %w", name, err)
	}
	return obj, nil
}

// List returns all artifact names with the given prefix, sorted.
func (s *MinioStore) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("artifact: list %s: %w", prefix, obj.Err)
		}
		name := obj.Key
		if s.prefix != "" {
			name = name[len(s.prefix):]
			for len(name) > 0 && name[0] == '/' {
				name = name[1:]
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes an artifact; missing artifacts are ignored.
func (s *MinioStore) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isMissing(err) {
		return fmt.Errorf("artifact: delete %s: %w", name, err)
	}
	return nil
}

func isMissing(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
