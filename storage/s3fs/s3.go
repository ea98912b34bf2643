// Copyright 2022 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package s3fs is the interface-only S3 backend boundary named by spec.md
// §4.2.4: bucket listing is the responsibility of an S3 adapter outside
// the specified core, grounded on original_source/storage/src/s3.rs (itself
// a stub) and shaped like cloudeng.io/aws/s3fs's minimal client-interface
// idiom.
package s3fs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/path/cloudpath"
	"cloudeng.io/terrasync/storage"
)

func init() {
	storage.Register("s3", func(ctx context.Context, uri string) (storage.Walker, error) {
		return New(ctx, uri)
	})
}

// Client is the set of S3 operations an S3Walker needs. The AWS SDK's
// *s3.Client does not have this method set; an adapter around it is needed.
type Client interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]Object, error)
}

// Object is a single listed S3 object, already shaped close to
// storage.Entry.
type Object struct {
	Key          string
	Size         int64
	LastModified int64 // unix seconds
	IsPrefix     bool
}

// T implements storage.Walker for an S3 bucket/prefix. Listing itself is
// delegated to a Client; T supplies only the URI resolution and the
// Entry-shaping contract so that a full implementation can be dropped in
// without changing storage.Walker.
type T struct {
	bucket string
	prefix string
	client Client
}

// Option configures a s3fs.T.
type Option func(*T)

// WithClient overrides the S3 client used for listing; required, since
// this package does not construct an AWS SDK client itself (out of scope
// per spec.md §1).
func WithClient(c Client) Option {
	return func(t *T) { t.client = c }
}

// New parses an "s3://bucket/prefix" URI. Without WithClient, Walk returns
// an error describing the missing adapter — the S3Walker is interface-only
// in this core per spec.md §4.2.4.
func New(_ context.Context, uri string, opts ...Option) (*T, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return nil, fmt.Errorf("s3fs: not an s3:// URI: %q", uri)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("s3fs: missing bucket name in %q", uri)
	}
	t := &T{bucket: bucket, prefix: prefix}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Root implements storage.Walker.
func (t *T) Root() string {
	return cloudpath.Split("/"+t.bucket+"/"+t.prefix, '/').Join('/')
}

// Close implements storage.Walker; S3 listing holds no long-lived resource.
func (t *T) Close() error { return nil }

// errContentCopyNotSupported is returned by every storage.ContentStore
// method: spec.md §4.2.4 scopes S3Walker as interface-only, so object
// get/put is an external adapter's responsibility, not this core's.
var errContentCopyNotSupported = fmt.Errorf("s3fs: content copy requires an external S3 get/put adapter, see spec.md §4.2.4")

// Open implements storage.ContentStore.
func (t *T) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errContentCopyNotSupported
}

// Create implements storage.ContentStore.
func (t *T) Create(context.Context, string) (io.WriteCloser, error) {
	return nil, errContentCopyNotSupported
}

// MkdirAll implements storage.ContentStore. S3 has no directory objects,
// so this is a no-op success rather than an error.
func (t *T) MkdirAll(context.Context, string) error { return nil }

// Walk implements storage.Walker by delegating to the configured Client.
// depth limiting is applied client-side over the key hierarchy implied by
// "/"-delimited prefixes, since S3 has no native directory depth.
func (t *T) Walk(ctx context.Context, root string, depth int) (<-chan storage.Entry, error) {
	if t.client == nil {
		return nil, fmt.Errorf("s3fs: no S3 client configured; this core only defines the S3Walker interface, see spec.md §4.2.4")
	}
	if root == "" {
		root = t.prefix
	}
	ch := make(chan storage.Entry, 1000)
	go func() {
		defer close(ch)
		objs, err := t.client.ListObjects(ctx, t.bucket, root)
		if err != nil {
			ctxlog.Error(ctx, "s3fs: list objects failed", "bucket", t.bucket, "prefix", root, "error", err)
			return
		}
		for _, o := range objs {
			if depth > storage.DepthUnbounded {
				level := strings.Count(strings.TrimPrefix(o.Key, root), "/") + 1
				if level > depth {
					continue
				}
			}
			e := storage.Entry{
				Name:         cloudpath.Split(o.Key, '/').Base(),
				Path:         storage.NormalizePath("/" + t.bucket + "/" + o.Key),
				RelativePath: strings.TrimPrefix(o.Key, root),
				IsDir:        o.IsPrefix,
				Size:         uint64(o.Size),
			}
			select {
			case ch <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
