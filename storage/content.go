package storage

import (
	"context"
	"io"
)

// ContentStore is the content-copy interface boundary spec.md §1 describes:
// "the content-copy step of sync mode is specified at the interface
// boundary only; its bulk-transfer engine is not part of the core." A
// Walker that also implements ContentStore lets SyncEngine stream a single
// entry's bytes without knowing the backend; SyncEngine uses this
// interface on both ends for every copy, local-to-local included.
type ContentStore interface {
	// Open returns a reader positioned at the start of the file named by
	// path (the same normalized path carried on Entry.Path).
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Create returns a writer for path, creating or truncating it.
	// Parent directories are created first if they don't already exist.
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// MkdirAll creates path and any missing parents.
	MkdirAll(ctx context.Context, path string) error
}
