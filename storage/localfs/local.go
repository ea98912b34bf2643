// Copyright 2020 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package localfs implements storage.Walker for the local POSIX filesystem.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"cloudeng.io/errors"
	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/terrasync/storage"
)

func init() {
	storage.Register("file", func(_ context.Context, uri string) (storage.Walker, error) {
		return New(uri)
	})
}

// T walks the local filesystem rooted at a single canonical, absolute path.
// It is grounded on filewalk.Walker's worker-pool recursion, generalized to
// the storage.Walker interface and the spec's flatter Entry model.
type T struct {
	root        string
	concurrency int

	mu     sync.Mutex
	closed bool
}

// Option configures a localfs.T.
type Option func(*T)

// WithConcurrency records a concurrency hint. Walk lists directories
// sequentially on a single goroutine and does not consult it.
func WithConcurrency(n int) Option {
	return func(t *T) { t.concurrency = n }
}

// New resolves path to an absolute, canonical local path and returns a
// storage.Walker for it. path may be a bare filesystem path or a
// "file://" URI.
func New(path string, opts ...Option) (*T, error) {
	path = trimFileScheme(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("localfs: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// The root itself must exist; a later content change is not our
		// concern here, but a missing root is a fatal configuration
		// error per spec.
		return nil, fmt.Errorf("localfs: failed to open root %q: %w", abs, err)
	}
	t := &T{root: storage.NormalizePath(resolved)}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

func trimFileScheme(path string) string {
	const scheme = "file://"
	if len(path) > len(scheme) && path[:len(scheme)] == scheme {
		return path[len(scheme):]
	}
	return path
}

// Root implements storage.Walker.
func (t *T) Root() string { return t.root }

// Open implements storage.ContentStore.
func (t *T) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("localfs: open %q: %w", path, err)
	}
	return f, nil
}

// Create implements storage.ContentStore, creating any missing parent
// directories first.
func (t *T) Create(_ context.Context, path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("localfs: mkdir %q: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("localfs: create %q: %w", path, err)
	}
	return f, nil
}

// MkdirAll implements storage.ContentStore.
func (t *T) MkdirAll(_ context.Context, path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("localfs: mkdir %q: %w", path, err)
	}
	return nil
}

// Close implements storage.Walker. The local walker holds no resources.
func (t *T) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Walk implements storage.Walker. It performs a depth-first walk on a
// single background goroutine, writing entries to a channel of capacity
// 1000 as spec.md §4.2.1 requires. Per-entry errors are skipped and logged
// once the walk ends.
func (t *T) Walk(ctx context.Context, root string, depth int) (<-chan storage.Entry, error) {
	if root == "" {
		root = t.root
	}
	if _, err := os.Lstat(root); err != nil {
		return nil, fmt.Errorf("localfs: failed to open root %q: %w", root, err)
	}
	ch := make(chan storage.Entry, 1000)
	go func() {
		defer close(ch)
		w := &walk{
			ctx:   ctx,
			ch:    ch,
			root:  root,
			depth: depth,
			errs:  &errors.M{},
		}
		w.walkDir(root, 1)
		if err := w.errs.Err(); err != nil {
			ctxlog.Error(ctx, "localfs: entries skipped during walk", "root", root, "error", err)
		}
	}()
	return ch, nil
}

type walk struct {
	ctx   context.Context
	ch    chan<- storage.Entry
	root  string
	depth int
	errs  *errors.M

	emitted int64
}

// withinDepth reports whether level (1-based, root's children are level 1)
// is still within the configured depth. depth==0 means unbounded.
func (w *walk) withinDepth(level int) bool {
	if w.depth <= storage.DepthUnbounded {
		return true
	}
	return level <= w.depth
}

func (w *walk) walkDir(dir string, level int) {
	select {
	case <-w.ctx.Done():
		return
	default:
	}
	f, err := os.Open(dir)
	if err != nil {
		// Errors opening a non-root directory are per-entry: skip and
		// continue. The root's existence was already validated by Walk.
		w.errs.Append(fmt.Errorf("localfs: %w", err))
		return
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		w.errs.Append(fmt.Errorf("localfs: readdir %q: %w", dir, err))
		return
	}

	var subdirs []string
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		childPath := filepath.Join(dir, name)
		fi, err := os.Lstat(childPath)
		if err != nil {
			// Per-entry stat failures are skipped, not fatal.
			w.errs.Append(fmt.Errorf("localfs: stat %q: %w", childPath, err))
			continue
		}
		entry := toEntry(w.root, childPath, fi)
		atomic.AddInt64(&w.emitted, 1)
		select {
		case w.ch <- entry:
		case <-w.ctx.Done():
			return
		}
		if fi.IsDir() && !entry.IsSymlink && w.withinDepth(level+1) {
			subdirs = append(subdirs, childPath)
		}
	}
	for _, sub := range subdirs {
		w.walkDir(sub, level+1)
	}
}
