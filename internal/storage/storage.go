package storage

import (
	"context"
	"io"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Object describes a single upload.
type Object struct {
	Key         string
	ContentType string
	Body        io.Reader
}

// Service stores survey exports in remote object storage.
type Service interface {
	// Upload writes the object and returns its s3:// location.
	Upload(ctx context.Context, obj Object) (string, error)
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObjectURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
