// Copyright 2023 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package scan drives a storage.Walker through the filter expression
// language and broadcasts every walked entry, tagged with its match/exclude
// outcome, as a Config/Result*/Complete message sequence, per spec.md §3/§4.3. Grounded on
// original_source/app/src/scan/scan.rs for the pipeline shape and on
// cloudeng.io/file/cmd/filewalk/scan.go's scan() function (flags ->
// exclusions -> walker -> progress channel -> summary) for the overall
// control flow translated to Go.
package scan

import (
	"time"

	"cloudeng.io/terrasync/config"
	"cloudeng.io/terrasync/filter"
	"cloudeng.io/terrasync/storage"
)

// Mode distinguishes a full scan from an incremental one, per spec.md §3's
// ScanConfig.Mode.
type Mode int

const (
	ModeFull Mode = iota
	ModeIncremental
)

func (m Mode) String() string {
	if m == ModeIncremental {
		return "incremental"
	}
	return "full"
}

// Kind discriminates the three ScanMessage variants spec.md §3 names.
type Kind int

const (
	KindConfig Kind = iota
	KindResult
	KindComplete
)

// RunMetadata is the per-run descriptive data attached to Config, used by
// ConsoleSink to build its report header.
type RunMetadata struct {
	JobID     string
	Command   string
	LogPath   string
	StartedAt time.Time
}

// Config is ScanConfig from spec.md §3: scan parameters plus the sink
// configuration each registered sink needs.
type Config struct {
	RunMetadata
	Root    string
	Depth   int
	Match   []filter.Expr
	Exclude []filter.Expr
	Mode    Mode

	Database config.Database
	Kafka    config.Kafka
}

// Result is a single scanned entry together with the outcome of applying
// the run's match/exclude expressions to it. Grounded on
// original_source/app/src/scan/scan.rs's StorageEntity, which carries
// matched/excluded booleans alongside the entry rather than dropping
// non-matching entries before they reach the bus — see DESIGN.md's
// resolution of the apparent conflict with this package's doc comment in
// earlier spec material about "rejected entries are not forwarded".
type Result struct {
	Entry    storage.Entry
	Matched  bool
	Excluded bool
}

// Kept reports whether this result satisfies the run's match/exclude
// composition: matched and not excluded. Sinks that only care about
// surviving entries (SyncEngine's content copy, DatabaseSink's persisted
// rows) use this; ConsoleSink's totals count every Result regardless.
func (r Result) Kept() bool { return r.Matched && !r.Excluded }

// Message is the ScanMessage tagged union of spec.md §3: exactly one of
// Config/Result is populated, selected by Kind.
type Message struct {
	Kind   Kind
	Config Config
	Result Result
}

// ConfigMessage wraps a Config as a Message.
func ConfigMessage(c Config) Message { return Message{Kind: KindConfig, Config: c} }

// ResultMessage wraps a Result as a Message.
func ResultMessage(r Result) Message { return Message{Kind: KindResult, Result: r} }

// CompleteMessage is the single Complete sentinel.
func CompleteMessage() Message { return Message{Kind: KindComplete} }
