package gcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// WriteObject writes content to a GCS object, replacing any existing
// generation, and returns the attributes of the finalized object.
func WriteObject(ctx context.Context, obj *storage.ObjectHandle, contentType string, content io.Reader) (*storage.ObjectAttrs, error) {
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, content); err != nil {
		_ = writer.Close()
		slog.Error("Failed to copy content to GCS object", "bucket", obj.BucketName(), "object", obj.ObjectName(), "error", err)
		return nil, fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		slog.Error("Failed to close GCS writer", "bucket", obj.BucketName(), "object", obj.ObjectName(), "error", err)
		return nil, fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return writer.Attrs(), nil
}
