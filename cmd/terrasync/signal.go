package main

import "os"

// osSignals lists the signals that trigger a graceful shutdown, matching
// cloudeng.io/file/cmd/filewalk's scan.go HandleSignals(cancel, os.Interrupt)
// call.
func osSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
