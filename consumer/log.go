package consumer

import (
	"context"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/terrasync/scan"
)

// Log is the LogSink of spec.md §4.7: it emits a structured log line per
// message via ctxlog rather than accumulating any state of its own,
// grounded on original_source/app/src/consumer/log.rs.
type Log struct {
	ctx context.Context
}

// NewLog constructs a Log sink that logs through ctx's embedded logger.
func NewLog(ctx context.Context) *Log {
	return &Log{ctx: ctx}
}

// Name implements Sink.
func (l *Log) Name() string { return "log" }

// Handle implements Sink. Config and Complete are logged at INFO; Result
// messages are logged at INFO when kept and DEBUG otherwise, so a normal
// run's log isn't dominated by excluded/non-matching entries.
func (l *Log) Handle(msg scan.Message) {
	switch msg.Kind {
	case scan.KindConfig:
		ctxlog.Info(l.ctx, "scan config",
			"job_id", msg.Config.JobID,
			"root", msg.Config.Root,
			"mode", msg.Config.Mode.String(),
			"depth", msg.Config.Depth,
		)
	case scan.KindResult:
		r := msg.Result
		if r.Kept() {
			ctxlog.Info(l.ctx, "result",
				"path", r.Entry.Path,
				"size", r.Entry.Size,
				"is_dir", r.Entry.IsDir,
			)
			return
		}
		ctxlog.Debug(l.ctx, "result",
			"path", r.Entry.Path,
			"matched", r.Matched,
			"excluded", r.Excluded,
		)
	case scan.KindComplete:
		ctxlog.Info(l.ctx, "scan complete")
	}
}
