//go:build !linux

package localfs

import (
	"os"

	"cloudeng.io/terrasync/storage"
)

// toEntry is the non-Linux fallback: hard link counts are reported as 1 and
// mode is synthesized as 0o444 for read-only entries, 0o666 otherwise, per
// spec.md §4.2.1.
func toEntry(root, path string, fi os.FileInfo) storage.Entry {
	e := storage.Entry{
		Name:      fi.Name(),
		Path:      storage.NormalizePath(path),
		IsDir:     fi.IsDir() && fi.Mode()&os.ModeSymlink == 0,
		IsSymlink: fi.Mode()&os.ModeSymlink != 0,
		Size:      uint64(fi.Size()),
		Modified:  fi.ModTime(),
	}
	e.RelativePath = storage.RelativeTo(root, e.Path)

	var mode uint32 = 0o666
	if fi.Mode()&0o200 == 0 {
		mode = 0o444
	}
	e.Mode = &mode
	hl := uint8(1)
	e.HardLinks = &hl
	return e
}
