//go:build linux

package localfs

import (
	"os"
	"syscall"
	"time"

	"cloudeng.io/terrasync/storage"
)

func statTimeToTime(ts syscall.Timespec) time.Time {
	return time.Unix(ts.Sec, ts.Nsec)
}

// toEntry converts an os.FileInfo into a storage.Entry, filling in the
// POSIX-only fields (mode bits, hard link count) from the platform stat_t,
// grounded on original_source/storage/src/file.rs's mode()/uid()/gid() and
// the teacher's localfs.symlinkInfo split for fields that fs.FileInfo alone
// cannot provide.
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

	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		mode := uint32(st.Mode & 0o7777)
		e.Mode = &mode
		links := st.Nlink
		if links < 1 {
			links = 1
		}
		if links > 255 {
			links = 255
		}
		hl := uint8(links)
		e.HardLinks = &hl
		e.Accessed = statTimeToTime(st.Atim)
		e.Created = statTimeToTime(st.Ctim)
	}
	return e
}
