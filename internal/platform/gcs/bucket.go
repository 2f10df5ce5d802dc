// Package gcs stores uploaded document files in a Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ErrObjectNotFound is returned when the requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Bucket wraps a single Cloud Storage bucket for document files.
type Bucket struct {
	client *storage.Client
	name   string
}

// NewBucket creates a Bucket client. When credentialsFile is empty the
// client falls back to application default credentials.
func NewBucket(ctx context.Context, bucketName, credentialsFile string) (*Bucket, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name required")
	}

	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Bucket{client: client, name: bucketName}, nil
}

// Upload writes the object under key, inferring the content type from the
// key's extension when possible.
func (b *Bucket) Upload(ctx context.Context, key string, r io.Reader) error {
	w := b.client.Bucket(b.name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %q: %w", key, err)
	}
	return nil
}

// Download opens the object for reading. The caller must close the
// returned reader.
func (b *Bucket) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := b.client.Bucket(b.name).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to open object %q: %w", key, err)
	}
	return r, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	err := b.client.Bucket(b.name).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying API connection.
func (b *Bucket) Close() error {
	return b.client.Close()
}

func contentTypeForKey(key string) string {
	return mime.TypeByExtension(filepath.Ext(key))
}
