// Copyright 2023 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package consumer implements the broadcast-with-lag fan-out of spec.md
// §4.4 and the four sinks of §4.5-§4.7, grounded on
// original_source/app/src/consumer/manager.rs's ConsumerManager
// (with_config/start_consumers/broadcast/shutdown), translated from Rust's
// tokio::sync::broadcast to a hand-rolled per-subscriber ring buffer —
// Go's standard library has no broadcast-with-lag primitive — following
// cloudeng.io/file/filewalk.Walker's channel-and-errgroup idiom for the
// supervising goroutines.
package consumer

import "cloudeng.io/terrasync/scan"

// Sink is a subscriber to the broadcast bus: it receives every ScanMessage
// in order (modulo lag-drops) and must not block indefinitely, per
// spec.md §4.4/§5.
type Sink interface {
	// Name identifies the sink in logs and lag diagnostics.
	Name() string
	// Handle processes one message. It must return promptly; long-running
	// work (batch flush, network I/O) runs synchronously but bounded, as
	// each sink owns exactly one goroutine reading its subscription.
	Handle(msg scan.Message)
}
