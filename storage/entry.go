// Copyright 2020 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package storage provides the uniform StorageEntry model and the
// Walker abstraction used to traverse local, NFSv3 and S3 backends with a
// single depth-limited, lazy stream of entries.
package storage

import (
	"strings"
	"time"
)

// Entry is an immutable, normalized record describing a single file or
// directory surfaced by a Walker. It is safe to copy by value and is never
// mutated once emitted.
type Entry struct {
	// Name is the base name of the entry.
	Name string
	// Path is the absolute, forward-slash normalized path.
	Path string
	// RelativePath is Path with the scan root stripped; empty when Path
	// names the scan root itself.
	RelativePath string

	IsDir     bool
	IsSymlink bool

	Size uint64

	Modified time.Time
	Accessed time.Time
	Created  time.Time

	// Mode holds the low POSIX permission bits when the backend can
	// provide them.
	Mode *uint32
	// HardLinks is the hard link count, when the backend can provide it.
	// Always >= 1 when non-nil.
	HardLinks *uint8

	// Handle is an opaque backend-specific handle (e.g. an NFSv3 file
	// handle). It never escapes the walker layer that produced it.
	Handle any
}

// NormalizePath rewrites backslashes to forward slashes, matching spec
// invariant that no emitted Path ever contains '\'.
func NormalizePath(p string) string {
	if !strings.ContainsRune(p, '\\') {
		return p
	}
	return strings.ReplaceAll(p, `\`, "/")
}

// RelativeTo computes the relative_path invariant: path - root, with
// forward slashes, empty when path names root itself.
func RelativeTo(root, path string) string {
	root = NormalizePath(strings.TrimRight(root, "/"))
	path = NormalizePath(path)
	if path == root {
		return ""
	}
	rel := strings.TrimPrefix(path, root+"/")
	return rel
}
