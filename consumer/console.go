package consumer

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"cloudeng.io/file/diskusage"
	"cloudeng.io/terrasync/scan"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// tickerInterval is the progress line cadence spec.md §4.5 requires: "at
// least every 10s during activity".
const tickerInterval = 10 * time.Second

// Console is the ConsoleSink of spec.md §4.5: it accumulates running
// counters and prints a framed final report, grounded on
// original_source/app/src/consumer/console.rs for the counters and on
// cloudeng.io/file/cmd/filewalk/scan.go's message.NewPrinter(language.English)
// ticker loop for the progress-line cadence/format.
type Console struct {
	out     io.Writer
	printer *message.Printer

	jobID     string
	command   string
	logPath   string
	startedAt time.Time

	totalFiles, totalDirs           int64
	matchedFiles, matchedDirs       int64
	totalSize                      int64
	maxNameLength                  int64
	totalNameLength                int64
	totalDirDepth, maxDirDepth      int64

	lastTick time.Time
	done     chan struct{}
}

// NewConsole constructs a Console sink writing to w (os.Stdout if nil).
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{
		out:     w,
		printer: message.NewPrinter(language.English),
		done:    make(chan struct{}),
	}
}

// Name implements Sink.
func (c *Console) Name() string { return "console" }

// Handle implements Sink, dispatching by message kind per spec.md §4.5.
func (c *Console) Handle(msg scan.Message) {
	switch msg.Kind {
	case scan.KindConfig:
		c.onConfig(msg.Config)
	case scan.KindResult:
		c.onResult(msg.Result)
	case scan.KindComplete:
		c.onComplete()
	}
}

func (c *Console) onConfig(cfg scan.Config) {
	c.jobID = cfg.JobID
	c.command = cfg.Command
	c.logPath = cfg.LogPath
	c.startedAt = cfg.StartedAt
	c.lastTick = time.Now()
}

func (c *Console) onResult(r scan.Result) {
	e := r.Entry
	if e.IsDir {
		atomic.AddInt64(&c.totalDirs, 1)
	} else {
		atomic.AddInt64(&c.totalFiles, 1)
	}
	atomic.AddInt64(&c.totalSize, int64(e.Size))

	nameLen := int64(len(e.Name))
	atomic.AddInt64(&c.totalNameLength, nameLen)
	for {
		cur := atomic.LoadInt64(&c.maxNameLength)
		if nameLen <= cur || atomic.CompareAndSwapInt64(&c.maxNameLength, cur, nameLen) {
			break
		}
	}

	depth := pathDepth(e.RelativePath)
	atomic.AddInt64(&c.totalDirDepth, depth)
	for {
		cur := atomic.LoadInt64(&c.maxDirDepth)
		if depth <= cur || atomic.CompareAndSwapInt64(&c.maxDirDepth, cur, depth) {
			break
		}
	}

	if r.Kept() {
		if e.IsDir {
			atomic.AddInt64(&c.matchedDirs, 1)
		} else {
			atomic.AddInt64(&c.matchedFiles, 1)
		}
	}

	if time.Since(c.lastTick) >= tickerInterval {
		c.printProgress()
		c.lastTick = time.Now()
	}
}

func (c *Console) printProgress() {
	c.printer.Fprintf(c.out, "scanning % 12d files % 12d dirs % 15s total\n",
		atomic.LoadInt64(&c.totalFiles),
		atomic.LoadInt64(&c.totalDirs),
		diskusage.BinarySize(0, 2, atomic.LoadInt64(&c.totalSize)))
}

func (c *Console) onComplete() {
	close(c.done)
	elapsed := time.Since(c.startedAt)

	totalFiles := atomic.LoadInt64(&c.totalFiles)
	totalDirs := atomic.LoadInt64(&c.totalDirs)
	totalEntries := totalFiles + totalDirs

	var avgFileSize, avgNameLength, avgDirDepth float64
	if totalFiles > 0 {
		avgFileSize = float64(atomic.LoadInt64(&c.totalSize)) / float64(totalFiles)
	}
	if totalEntries > 0 {
		avgNameLength = float64(atomic.LoadInt64(&c.totalNameLength)) / float64(totalEntries)
		avgDirDepth = float64(atomic.LoadInt64(&c.totalDirDepth)) / float64(totalEntries)
	}

	p := c.printer
	p.Fprintf(c.out, "+%s+\n", repeat('-', 60))
	p.Fprintf(c.out, "| terrasync scan report\n")
	p.Fprintf(c.out, "| job id       : %s\n", c.jobID)
	p.Fprintf(c.out, "| command      : %s\n", c.command)
	p.Fprintf(c.out, "| log          : %s\n", c.logPath)
	p.Fprintf(c.out, "| run time     : %v\n", elapsed)
	p.Fprintf(c.out, "| total files  : % 15v\n", totalFiles)
	p.Fprintf(c.out, "| total dirs   : % 15v\n", totalDirs)
	p.Fprintf(c.out, "| matched files: % 15v\n", atomic.LoadInt64(&c.matchedFiles))
	p.Fprintf(c.out, "| matched dirs : % 15v\n", atomic.LoadInt64(&c.matchedDirs))
	p.Fprintf(c.out, "| total size   : %s\n", diskusage.BinarySize(0, 2, atomic.LoadInt64(&c.totalSize)))
	p.Fprintf(c.out, "| avg file size: %s\n", diskusage.BinarySize(0, 2, int64(avgFileSize)))
	p.Fprintf(c.out, "| avg name len : %.2f\n", avgNameLength)
	p.Fprintf(c.out, "| max name len : % 15v\n", atomic.LoadInt64(&c.maxNameLength))
	p.Fprintf(c.out, "| avg dir depth: %.2f\n", avgDirDepth)
	p.Fprintf(c.out, "| max dir depth: % 15v\n", atomic.LoadInt64(&c.maxDirDepth))
	p.Fprintf(c.out, "+%s+\n", repeat('-', 60))
}

func repeat(b byte, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return string(buf)
}

// pathDepth is the number of path components below the scan root, clamped
// to >= 1, per spec.md §4.5.
func pathDepth(relativePath string) int64 {
	if relativePath == "" {
		return 1
	}
	depth := int64(1)
	for _, r := range relativePath {
		if r == '/' {
			depth++
		}
	}
	return depth
}

