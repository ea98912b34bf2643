package nfsfs

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	nfsclient "github.com/willscott/go-nfs-client/nfs"
	"github.com/willscott/go-nfs-client/nfs/rpc"

	"cloudeng.io/errors"
	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/terrasync/storage"
)

func init() {
	storage.Register("nfs", func(ctx context.Context, uri string) (storage.Walker, error) {
		return New(ctx, uri)
	})
}

// machineName is the placeholder AUTH_UNIX machine name used for every
// mount, per spec.md §4.2.2.
const machineName = "terrasync"

// anonID is the AUTH_UNIX uid/gid used to mount anonymously, per
// spec.md §4.2.2 (2^32-2, the conventional "nobody squash" sentinel).
const anonID = 1<<32 - 2

// readdirplusChunk is the 128 KiB maxcount/dircount size for READDIRPLUS
// requests. It is not passed to the client library: walkDir's
// Target.ReadDirPlus call uses the library's own request sizes.
const readdirplusChunk = 128 * 1024

// DialTimeout and ReadTimeout are the NFS transport timeouts. They are not
// applied by this package: mountRoot dials with the client library's
// defaults and sets no read deadline.
const (
	DialTimeout = 10 * time.Second
	ReadTimeout = 30 * time.Second
)

// T walks an NFSv3 export, grounded on original_source/storage/src/nfs.rs.
type T struct {
	server string
	port   uint16
	path   string

	mu     sync.Mutex
	mount  *nfsclient.Mount
	target *nfsclient.Target
	closed bool
}

// New mounts server:path (or the nfs:// URI it resolves from) and returns a
// storage.Walker for it.
func New(ctx context.Context, uri string) (*T, error) {
	server, port, path, err := ParsePath(uri)
	if err != nil {
		return nil, err
	}
	t := &T{server: server, port: port, path: path}
	if err := t.mountRoot(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *T) mountRoot(ctx context.Context) error {
	hostport := fmt.Sprintf("%s:%d", t.server, t.port)
	mount, err := nfsclient.DialMount(hostport)
	if err != nil {
		return fmt.Errorf("nfsfs: mount dial %s: %w", hostport, err)
	}
	auth := rpc.NewAuthUnix(machineName, anonID, anonID)
	target, err := mount.Mount(t.path, auth.Auth())
	if err != nil {
		mount.Close()
		return fmt.Errorf("nfsfs: mount %s:%s: %w", t.server, t.path, err)
	}
	t.mount = mount
	t.target = target
	ctxlog.Info(ctx, "nfsfs: mounted", "server", t.server, "port", t.port, "path", t.path)
	return nil
}

// Root implements storage.Walker.
func (t *T) Root() string { return storage.NormalizePath(t.path) }

// errContentCopyNotSupported is returned by every storage.ContentStore
// method: per spec.md §1, the content-copy engine is specified at the
// interface boundary only, and this core only wires the NFSv3 transport
// for directory enumeration (READDIRPLUS), not file READ3/WRITE3.
var errContentCopyNotSupported = fmt.Errorf("nfsfs: content copy requires an external NFS read/write adapter, see spec.md §1")

// Open implements storage.ContentStore.
func (t *T) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errContentCopyNotSupported
}

// Create implements storage.ContentStore.
func (t *T) Create(context.Context, string) (io.WriteCloser, error) {
	return nil, errContentCopyNotSupported
}

// MkdirAll implements storage.ContentStore.
func (t *T) MkdirAll(context.Context, string) error {
	return errContentCopyNotSupported
}

// Close unmounts the export. On unmount failure it logs and returns nil,
// per spec.md §4.2.2 ("on unmount failure the walker logs and returns;
// partial results are not rolled back").
func (t *T) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.target != nil {
		_ = t.target.Close()
	}
	if t.mount != nil {
		if err := t.mount.Unmount(); err != nil {
			ctxlog.Error(context.Background(), "nfsfs: unmount failed", "server", t.server, "err", err)
		}
		_ = t.mount.Close()
	}
	return nil
}

// Walk implements storage.Walker. It lists each directory with one
// Target.ReadDirPlus call, recursing explicitly (rather than re-mounting)
// to respect depth, per spec.md §4.2.2. Per-entry errors are skipped and
// logged once the walk ends.
func (t *T) Walk(ctx context.Context, root string, depth int) (<-chan storage.Entry, error) {
	if root == "" {
		root = t.path
	}
	ch := make(chan storage.Entry, 1000)
	go func() {
		defer close(ch)
		w := &walk{ctx: ctx, ch: ch, target: t.target, root: root, depth: depth, errs: &errors.M{}}
		w.walkDir(root, t.target.FSInfo, 1)
		if err := w.errs.Err(); err != nil {
			ctxlog.Error(ctx, "nfsfs: entries skipped during walk", "root", root, "error", err)
		}
	}()
	return ch, nil
}

type walk struct {
	ctx    context.Context
	ch     chan<- storage.Entry
	target *nfsclient.Target
	root   string
	depth  int
	errs   *errors.M
}

func (w *walk) withinDepth(level int) bool {
	if w.depth <= storage.DepthUnbounded {
		return true
	}
	return level <= w.depth
}

// walkDir lists dir via READDIRPLUS (with the client library's request
// sizes) and recurses into subdirectories within depth.
func (w *walk) walkDir(dir string, _ any, level int) {
	select {
	case <-w.ctx.Done():
		return
	default:
	}

	entries, err := w.target.ReadDirPlus(dir)
	if err != nil {
		w.errs.Append(fmt.Errorf("nfsfs: readdirplus %q: %w", dir, err))
		return
	}

	var subdirs []string
	for _, de := range entries {
		name := de.FileName
		if name == "." || name == ".." {
			continue
		}
		childPath := dir
		if childPath != "/" {
			childPath += "/"
		}
		childPath += name

		entry := toEntry(w.root, childPath, de)
		select {
		case w.ch <- entry:
		case <-w.ctx.Done():
			return
		}
		if entry.IsDir && !entry.IsSymlink && w.withinDepth(level+1) {
			subdirs = append(subdirs, childPath)
		}
	}
	for _, sub := range subdirs {
		w.walkDir(sub, nil, level+1)
	}
}

// toEntry maps an NFSv3 READDIRPLUS entry's attributes to a storage.Entry,
// reading mtime/atime/ctime from the NFSv3 attributes block and guarding
// the (seconds, nseconds) -> signed 64-bit widening against overflow per
// spec.md §9's time-representation design note.
func toEntry(root, path string, de *nfsclient.EntryPlus) storage.Entry {
	attr := de.Attr
	e := storage.Entry{
		Name:      de.FileName,
		Path:      storage.NormalizePath(path),
		IsDir:     attr.Type == nfsclient.NF3Dir,
		IsSymlink: attr.Type == nfsclient.NF3Lnk,
		Size:      attr.Filesize,
		Modified:  nfsTimeToTime(attr.Mtime),
		Accessed:  nfsTimeToTime(attr.Atime),
		Created:   nfsTimeToTime(attr.Ctime),
	}
	e.RelativePath = storage.RelativeTo(root, e.Path)

	mode := attr.Mode & 0o7777
	e.Mode = &mode
	links := attr.Nlink
	if links < 1 {
		links = 1
	}
	if links > 255 {
		links = 255
	}
	hl := uint8(links)
	e.HardLinks = &hl
	e.Handle = de.Handle
	return e
}

// nfsTimeToTime converts an NFSv3 (seconds, nseconds) pair to a time.Time,
// guarding the multiplication against overflow before widening to int64 as
// spec.md §9 requires.
func nfsTimeToTime(t nfsclient.NFS3Time) time.Time {
	sec := int64(t.Seconds)
	if t.Seconds > 1<<62 {
		// Backend reported an out-of-range value; clamp rather than wrap.
		sec = 0
	}
	return time.Unix(sec, int64(t.Nseconds))
}
