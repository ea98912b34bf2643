package scan

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloudeng.io/terrasync/config"
	"cloudeng.io/terrasync/filter"
	"cloudeng.io/terrasync/storage"
)

// gracePeriod is how long Run waits after broadcasting Config before
// starting the walker, so slow sinks (e.g. database table creation) have a
// chance to become Ready, per spec.md §4.3.
const gracePeriod = 2 * time.Second

// Bus is the publish side of the broadcast fan-out that Run drives.
// consumer.Manager satisfies this; Run depends only on the interface,
// per the teacher's accept-interfaces idiom.
type Bus interface {
	Publish(Message)
}

// Params configures a single scan run.
type Params struct {
	JobID   string
	URI     string
	Depth   int
	Match   []string
	Exclude []string
	Mode    Mode
	Command string
	LogPath string

	Database config.Database
	Kafka    config.Kafka
}

// Run implements spec.md §4.3's scan(params): parse expressions, build
// Config, broadcast it, wait the grace period, walk, forward every walked
// entry as a Result message tagged with its Matched/Excluded outcome, and
// finally broadcast Complete.
//
// Configuration errors (bad expressions, bad URI) are returned before any
// message is published, per spec.md §7's "fatal before start" taxonomy.
func Run(ctx context.Context, p Params, bus Bus) error {
	matchExprs, err := parseAll(p.Match)
	if err != nil {
		return fmt.Errorf("scan: match expression: %w", err)
	}
	excludeExprs, err := parseAll(p.Exclude)
	if err != nil {
		return fmt.Errorf("scan: exclude expression: %w", err)
	}

	walker, err := storage.NewWalker(ctx, p.URI)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	defer walker.Close()

	cfg := Config{
		RunMetadata: RunMetadata{
			JobID:     p.JobID,
			Command:   p.Command,
			LogPath:   p.LogPath,
			StartedAt: time.Now(),
		},
		Root:     walker.Root(),
		Depth:    p.Depth,
		Match:    matchExprs,
		Exclude:  excludeExprs,
		Mode:     p.Mode,
		Database: p.Database,
		Kafka:    p.Kafka,
	}
	bus.Publish(ConfigMessage(cfg))

	select {
	case <-time.After(gracePeriod):
	case <-ctx.Done():
		return ctx.Err()
	}

	entries, err := walker.Walk(ctx, walker.Root(), p.Depth)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	for e := range entries {
		matched, excluded := evaluate(toFilterEntry(e), matchExprs, excludeExprs)
		bus.Publish(ResultMessage(Result{Entry: e, Matched: matched, Excluded: excluded}))
	}
	bus.Publish(CompleteMessage())
	return nil
}

func parseAll(exprs []string) ([]filter.Expr, error) {
	out := make([]filter.Expr, 0, len(exprs))
	for _, raw := range exprs {
		x, err := filter.Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// evaluate computes the (matched, excluded) pair spec.md §4.1's composition
// is built from: keep(E) <=> (M = empty or exists m in M. m(E)) and not
// exists x in X. x(E). Every entry is evaluated and forwarded regardless of
// outcome, grounded on original_source/app/src/scan/scan.rs's
// evaluate_filter_conditions, which tags every StorageEntity with both
// booleans rather than dropping non-matching entries before the bus.
func evaluate(e filter.Entry, match, exclude []filter.Expr) (matched, excluded bool) {
	matched = len(match) == 0
	for _, m := range match {
		if m.Eval(e) {
			matched = true
			break
		}
	}
	for _, x := range exclude {
		if x.Eval(e) {
			excluded = true
			break
		}
	}
	return matched, excluded
}

// toFilterEntry derives the per-entry fields spec.md §4.3 lists: normalized
// path (already normalized by the walker), modified_days, extension, and
// file_type.
func toFilterEntry(e storage.Entry) filter.Entry {
	return filter.Entry{
		Name:         e.Name,
		Path:         e.Path,
		FileType:     fileType(e),
		ModifiedDays: modifiedDays(e.Modified),
		Size:         e.Size,
		Extension:    extensionOf(e.Name),
	}
}

func fileType(e storage.Entry) string {
	if e.IsDir {
		return "dir"
	}
	return "file"
}

// modifiedDays computes (now - mtime) / 86400 as spec.md §4.3 step 2
// describes, clamped to 0 when mtime is in the future or zero (unavailable).
func modifiedDays(mtime time.Time) float64 {
	if mtime.IsZero() {
		return 0
	}
	d := time.Since(mtime)
	if d < 0 {
		return 0
	}
	return d.Seconds() / 86400
}

// extensionOf derives the lowercased characters after the last "." in the
// final path component, empty when there is no dot, per spec.md §4.3 step 3.
func extensionOf(name string) string {
	base := path.Base(name)
	idx := strings.LastIndexByte(base, '.')
	if idx < 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}
