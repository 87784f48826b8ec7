// Package archive keeps durable copies of finished reels in object storage,
// since the local output directory is pruned by operators.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSArchive stores finished reels under a prefix in one bucket.
type GCSArchive struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSArchive(ctx context.Context, bucket, prefix string) (*GCSArchive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSArchive{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (a *GCSArchive) Close() error {
	return a.client.Close()
}

// Store uploads localPath under the archive prefix, keyed by its base name.
// Returns the object path within the bucket.
func (a *GCSArchive) Store(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	objectName := a.objectName(filepath.Base(localPath))
	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "video/mp4"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", localPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	return objectName, nil
}

// List returns the object names of every archived reel.
func (a *GCSArchive) List(ctx context.Context) ([]string, error) {
	bkt := a.client.Bucket(a.bucket)
	query := &storage.Query{Prefix: a.prefix}

	var names []string
	it := bkt.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		names = append(names, attrs.Name)
	}

	return names, nil
}

func (a *GCSArchive) objectName(base string) string {
	if a.prefix == "" {
		return base
	}
	return a.prefix + "/" + base
}
