// Copyright 2023 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command terrasync walks a local, NFSv3 or S3 tree, applies a filter
// expression to each entry, fans the results out to console, log,
// database and message-bus sinks, and optionally copies matching file
// content from a source tree to a destination tree. Grounded on
// cloudeng.io/file/cmd/filewalk's CommandSet/FlagSet layout.
package main

import (
	"context"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"

	_ "cloudeng.io/terrasync/storage/localfs"
	_ "cloudeng.io/terrasync/storage/nfsfs"
	_ "cloudeng.io/terrasync/storage/s3fs"
)

// CommonFlags are shared by every subcommand.
type CommonFlags struct {
	JobID      string `subcmd:"id,,job id used to name per-job database tables; a timestamp-derived id is generated when empty"`
	ConfigFile string `subcmd:"config,$HOME/.terrasync/config.yaml,path to the YAML configuration file"`
}

var cmdSet *subcmd.CommandSet

func init() {
	scanFlagSet := subcmd.NewFlagSet()
	scanFlagSet.MustRegisterFlagStruct(&scanFlags{}, nil, nil)

	syncFlagSet := subcmd.NewFlagSet()
	syncFlagSet.MustRegisterFlagStruct(&syncFlags{}, nil, nil)

	scanCmd := subcmd.NewCommand("scan", scanFlagSet, runScan)
	scanCmd.Document("walk a tree, apply filter expressions and fan the results out to the configured sinks", "<path>")

	syncCmd := subcmd.NewCommand("sync", syncFlagSet, runSync)
	syncCmd.Document("walk a source tree and copy matching file content to a destination tree", "<src> <dst>")

	cmdSet = subcmd.NewCommandSet(scanCmd, syncCmd)
	cmdSet.Document("terrasync: filesystem walker and synchronizer")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	cmdutil.HandleSignals(cancel, osSignals()...)
	if err := cmdSet.Dispatch(ctx); err != nil {
		cmdutil.Exit("%v", err)
	}
}
