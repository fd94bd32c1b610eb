package objectstore

import (
	"context"
	"fmt"
	"strings"
)

// Store is the archive's object storage surface. The MinIO implementation is
// the production backend; tests substitute an in-memory fake.
type Store interface {
	// EnsureBucket creates the bucket if it does not already exist.
	EnsureBucket(ctx context.Context, bucket string) error

	// Upload stores the local file under bucket/object with the given content
	// type and returns the object's size as stored.
	Upload(ctx context.Context, bucket, object, filePath, contentType string) (int64, error)

	// Exists reports whether bucket/object is present.
	Exists(ctx context.Context, bucket, object string) (bool, error)

	// Remove deletes bucket/object. Removing a missing object is not an error.
	Remove(ctx context.Context, bucket, object string) error
}

// FormatStoragePath renders the canonical "bucket/object" location recorded
// on completed items.
func FormatStoragePath(bucket, object string) string {
	return bucket + "/" + object
}

// ParseStoragePath splits a recorded location back into bucket and object.
func ParseStoragePath(path string) (bucket, object string, err error) {
	bucket, object, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("malformed storage path %q", path)
	}
	return bucket, object, nil
}

// ObjectName builds the per-message object key: channel and message
// identifiers as directories, then the sanitized file name.
func ObjectName(channelID, messageID int64, fileName string) string {
	return fmt.Sprintf("%d/%d/%s", channelID, messageID, fileName)
}
