package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/terrasync/config"
	"cloudeng.io/terrasync/consumer"
)

// expandHome resolves a leading "$HOME" in path, matching filewalk's
// config.go treatment of its own default config path.
func expandHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || !strings.HasPrefix(path, "$HOME") {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "$HOME"))
}

func loadConfig(configFile string) (*config.Config, error) {
	cfg, err := config.Load(expandHome(configFile))
	if err != nil {
		return nil, fmt.Errorf("terrasync: %w", err)
	}
	return cfg, nil
}

// defaultJobID generates a timestamp-derived job id when the user does not
// supply one with -id, matching original_source/cli/src/commands.rs's
// "derive a default id when none is given" behaviour.
func defaultJobID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, time.Now().UTC().Format("20060102T150405"))
}

// buildManager registers the console and log sinks unconditionally and the
// database/message sinks only when their config sections are enabled,
// matching spec.md §6's "sinks are configured, not hard-wired" stance.
func buildManager(ctx context.Context, cfg *config.Config) (*consumer.Manager, *consumer.Database, error) {
	m := consumer.NewManager(ctx, 0)
	m.Register(consumer.NewConsole(os.Stdout))
	m.Register(consumer.NewLog(ctx))

	var db *consumer.Database
	if cfg.Database.Enabled {
		var err error
		db, err = consumer.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("terrasync: database sink: %w", err)
		}
		m.Register(db)
	}

	if cfg.Kafka.Enabled {
		m.Register(consumer.NewMessage(ctx, cfg.Kafka))
	}

	return m, db, nil
}

// finishRun flushes and closes the database sink, if any, and shuts the
// manager down, logging but not returning sink-shutdown errors — a failing
// sink at the end of a run does not change the scan's own exit status, per
// spec.md §7's absorption taxonomy.
func finishRun(ctx context.Context, m *consumer.Manager, db *consumer.Database) {
	m.Shutdown()
	if db == nil {
		return
	}
	if err := db.Flush(ctx); err != nil {
		ctxlog.Error(ctx, "database flush failed", "error", err)
	}
	if err := db.Close(); err != nil {
		ctxlog.Error(ctx, "database close failed", "error", err)
	}
}
