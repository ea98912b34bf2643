package main

import (
	"context"
	"fmt"

	"cloudeng.io/cmdutil/flags"
	"cloudeng.io/terrasync/scan"
)

// scanFlags is the flag struct for the scan subcommand, grounded on
// cloudeng.io/file/cmd/filewalk/scan.go's scanFlags embedding CommonFlags.
type scanFlags struct {
	CommonFlags
	Depth   int             `subcmd:"depth,0,maximum depth to walk; 0 is unbounded"`
	Match   flags.Repeating `subcmd:"match,,match expression; may be repeated"`
	Exclude flags.Repeating `subcmd:"exclude,,exclude expression; may be repeated"`
}

func runScan(ctx context.Context, values interface{}, args []string) error {
	fv := values.(*scanFlags)
	if len(args) != 1 {
		return fmt.Errorf("scan: expected exactly one path argument, got %d", len(args))
	}

	cfg, err := loadConfig(fv.ConfigFile)
	if err != nil {
		return err
	}

	jobID := fv.JobID
	if jobID == "" {
		jobID = defaultJobID("scan")
	}

	manager, db, err := buildManager(ctx, cfg)
	if err != nil {
		return err
	}
	manager.StartAll()
	defer finishRun(ctx, manager, db)

	return scan.Run(ctx, scan.Params{
		JobID:    jobID,
		URI:      args[0],
		Depth:    fv.Depth,
		Match:    fv.Match.Values,
		Exclude:  fv.Exclude.Values,
		Mode:     scan.ModeFull,
		Database: cfg.Database,
		Kafka:    cfg.Kafka,
	}, manager)
}
