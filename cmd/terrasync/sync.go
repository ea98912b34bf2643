package main

import (
	"context"
	"fmt"

	"cloudeng.io/cmdutil/flags"
	"cloudeng.io/terrasync/syncengine"
)

// syncFlags is the flag struct for the sync subcommand.
type syncFlags struct {
	CommonFlags
	Depth     int             `subcmd:"depth,0,maximum depth to walk; 0 is unbounded"`
	Match     flags.Repeating `subcmd:"match,,match expression; may be repeated"`
	Exclude   flags.Repeating `subcmd:"exclude,,exclude expression; may be repeated"`
	EnableMD5 bool            `subcmd:"enable-md5,false,verify copied file content with an MD5 digest"`
}

func runSync(ctx context.Context, values interface{}, args []string) error {
	fv := values.(*syncFlags)
	if len(args) != 2 {
		return fmt.Errorf("sync: expected <src> <dst> arguments, got %d", len(args))
	}

	cfg, err := loadConfig(fv.ConfigFile)
	if err != nil {
		return err
	}

	jobID := fv.JobID
	if jobID == "" {
		jobID = defaultJobID("sync")
	}

	manager, db, err := buildManager(ctx, cfg)
	if err != nil {
		return err
	}
	manager.StartAll()
	defer finishRun(ctx, manager, db)

	return syncengine.Run(ctx, syncengine.Params{
		JobID:     jobID,
		SrcURI:    args[0],
		DstURI:    args[1],
		Depth:     fv.Depth,
		Match:     fv.Match.Values,
		Exclude:   fv.Exclude.Values,
		EnableMD5: fv.EnableMD5,
		Database:  cfg.Database,
		Kafka:     cfg.Kafka,
	}, manager)
}
