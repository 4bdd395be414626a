package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found in storage")

// FileStorage defines the interface for object storage operations used for
// submission payloads when they are not kept inline in the document.
type FileStorage interface {
	// Put uploads data under objectKey, replacing any existing object.
	Put(ctx context.Context, objectKey, contentType string, data []byte) error

	// Open returns a reader over the object and its size. The caller closes it.
	Open(ctx context.Context, objectKey string) (io.ReadCloser, int64, error)

	// Delete removes an object from the storage provider.
	Delete(ctx context.Context, objectKey string) error
}
