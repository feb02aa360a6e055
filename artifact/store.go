// Package artifact abstracts storage of run files (configs, metric logs,
// media) behind a small blob-store interface with local-filesystem and
// S3-compatible implementations. The tracking downloader uses it to mirror
// downloaded runs to shared storage.
package artifact

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a named artifact does not exist.
// Implementations return errors satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("artifact not found")

// Store is an abstraction for reading and writing named artifacts. Names use
// forward slashes regardless of platform.
type Store interface {
	// Put writes an artifact, replacing any previous content atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Open opens an artifact for reading. The caller closes the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// List returns all artifact names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes an artifact. Deleting a missing artifact is a no-op.
	Delete(ctx context.Context, name string) error
}
