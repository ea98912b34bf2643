package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want default %d", cfg.Database.BatchSize, DefaultBatchSize)
	}
	if cfg.Database.Enabled {
		t.Error("database should default to disabled")
	}
}

func TestLoadParsesSections(t *testing.T) {
	yamlDoc := `
log:
  level: debug
  max_size: 100
  max_backups: 3
scan:
  concurrency: 8
database:
  enabled: true
  type: clickhouse
  batch_size: 50000
  clickhouse:
    dsn: "tcp://localhost:9000"
    database: terrasync
kafka:
  enabled: true
  host: localhost
  port: 9092
  topic: scans
  concurrency: 4
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Scan.Concurrency != 8 {
		t.Errorf("Scan.Concurrency = %d, want 8", cfg.Scan.Concurrency)
	}
	if !cfg.Database.Enabled || cfg.Database.BatchSize != 50000 {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if !cfg.Kafka.Enabled || cfg.Kafka.Topic != "scans" {
		t.Errorf("Kafka = %+v", cfg.Kafka)
	}
}

func TestLoadDefaultsBatchSizeWhenZero(t *testing.T) {
	yamlDoc := "database:\n  enabled: true\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want default %d", cfg.Database.BatchSize, DefaultBatchSize)
	}
}
