// Copyright 2023 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package config loads the YAML configuration file named by spec.md §6:
// logging, scan concurrency, and the sink-specific sections (database,
// kafka). It is grounded on cloudeng.io/file/cmd/filewalk/config.go's
// configFromFile pattern, adapted from yaml.v2 to yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Log holds the logging section.
type Log struct {
	Level      string `yaml:"level"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
}

// Scan holds the scan section.
type Scan struct {
	Concurrency int `yaml:"concurrency"`
}

// ClickHouse holds the database.clickhouse section.
type ClickHouse struct {
	DSN         string `yaml:"dsn"`
	DialTimeout string `yaml:"dial_timeout"`
	ReadTimeout string `yaml:"read_timeout"`
	Database    string `yaml:"database"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

// Database holds the database section.
type Database struct {
	Enabled    bool       `yaml:"enabled"`
	Type       string     `yaml:"type"`
	BatchSize  uint32     `yaml:"batch_size"`
	ClickHouse ClickHouse `yaml:"clickhouse"`
}

// Kafka holds the kafka section.
type Kafka struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Topic       string `yaml:"topic"`
	Concurrency int    `yaml:"concurrency"`
}

// DefaultBatchSize is the DatabaseSink batch capacity used when
// database.batch_size is unset, per spec.md §6.
const DefaultBatchSize = 200000

// Config is the root of the YAML configuration file.
type Config struct {
	Log      Log      `yaml:"log"`
	Scan     Scan     `yaml:"scan"`
	Database Database `yaml:"database"`
	Kafka    Kafka    `yaml:"kafka"`
}

// Load reads and parses the YAML configuration file at path. A missing file
// is not an error: Load returns the values of Default(), matching
// filewalk's config.go "warn and fall back to the simple layout" stance —
// here, an absent config file means every sink other than console/log runs
// with its defaults (database and kafka disabled).
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Database.BatchSize == 0 {
		cfg.Database.BatchSize = DefaultBatchSize
	}
	return cfg, nil
}

// Default returns the configuration used when no config file is supplied.
func Default() *Config {
	return &Config{
		Log: Log{Level: "info"},
		Database: Database{
			BatchSize: DefaultBatchSize,
		},
	}
}
