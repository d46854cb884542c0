package storage

import (
	"context"
	"io"
)

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// CopySource describes a source object for server-side copy.
type CopySource struct {
	Bucket string
	Object string
}

// CopyDest describes a destination object for server-side copy.
type CopyDest struct {
	Bucket string
	Object string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	ObjectName string
	Size       int64
}

// Store abstracts object storage operations. No retry policy beyond what
// the storage client provides.
type Store interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error
	RemoveObject(ctx context.Context, bucket, object string) error
	CopyObject(ctx context.Context, dest CopyDest, src CopySource) error
	StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error)
}

// Default is the main object store instance.
var Default Store

// DefaultTest is the test object store instance.
var DefaultTest Store
