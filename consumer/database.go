package consumer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/terrasync/config"
	"cloudeng.io/terrasync/scan"
)

// State is the DatabaseSink lifecycle spec.md §4.6 names.
type State int

const (
	Idle State = iota
	Configured
	Ready
	Draining
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Configured:
		return "configured"
	case Ready:
		return "ready"
	case Draining:
		return "draining"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// fileScanColumns is the column set shared by every scan_base_<jobid>,
// scan_temp_<uuid> table, grounded on original_source/db/src/clickhouse.rs's
// FILE_SCAN_COLUMNS_DEFINITION.
const fileScanColumns = `
	path String,
	size UInt64,
	ext Nullable(String),
	ctime UInt64,
	mtime UInt64,
	atime UInt64,
	perm UInt32,
	is_symlink UInt8,
	is_dir UInt8,
	is_regular_file UInt8,
	file_handle Nullable(String),
	current_state UInt8
`

const fileScanInsertColumns = "path, size, ext, ctime, mtime, atime, perm, is_symlink, is_dir, is_regular_file, file_handle, current_state"

// Record is a single persisted row, derived from a Kept scan.Result per
// spec.md §4.6's record conversion rules.
type Record struct {
	Path           string
	Size           uint64
	Ext            *string
	Ctime          uint64
	Mtime          uint64
	Atime          uint64
	Perm           uint32
	IsSymlink      uint8
	IsDir          uint8
	IsRegularFile  uint8
	FileHandle     *string
	CurrentState   uint8
}

// toRecord converts a kept scan.Result into the row shape persisted to
// ClickHouse: timestamps as Unix seconds (0 when unavailable), permission
// bits as a plain uint32 (0 when the backend didn't supply any), and
// is_regular_file as the complement of is_dir, per spec.md §4.6.
func toRecord(r scan.Result, originState uint8) Record {
	e := r.Entry
	rec := Record{
		Path:          e.Path,
		Size:          e.Size,
		Ctime:         unixSeconds(e.Created),
		Mtime:         unixSeconds(e.Modified),
		Atime:         unixSeconds(e.Accessed),
		IsSymlink:     boolToUint8(e.IsSymlink),
		IsDir:         boolToUint8(e.IsDir),
		IsRegularFile: boolToUint8(!e.IsDir),
		CurrentState:  originState,
	}
	if e.Mode != nil {
		rec.Perm = *e.Mode
	}
	if ext := strings.ToLower(strings.TrimPrefix(path.Ext(e.Name), ".")); ext != "" {
		rec.Ext = &ext
	}
	return rec
}

func unixSeconds(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func tableBaseName(jobID string) string  { return "scan_base_" + SanitizeJobID(jobID) }
func tableStateName(jobID string) string { return "scan_state_" + SanitizeJobID(jobID) }

// Database is the DatabaseSink of spec.md §4.6: batches Kept entries into
// a per-job ReplacingMergeTree table, grounded on
// original_source/db/src/clickhouse.rs, wired to
// github.com/ClickHouse/clickhouse-go/v2 in place of the Rust clickhouse
// crate's async client.
type Database struct {
	ctx   context.Context
	conn  ch.Conn
	jobID string

	batchSize uint32

	mu          sync.Mutex
	state       State
	buffer      []Record
	originState uint8
	tempTable   string
}

// NewDatabase opens a ClickHouse connection from cfg and returns a Database
// sink in the Idle state. It does not create any tables: that happens on
// the first Config message, per the Idle -> Configured transition.
func NewDatabase(ctx context.Context, cfg config.Database) (*Database, error) {
	conn, err := ch.Open(&ch.Options{
		Addr: []string{cfg.ClickHouse.DSN},
		Auth: ch.Auth{
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}
	batch := cfg.BatchSize
	if batch == 0 {
		batch = config.DefaultBatchSize
	}
	return &Database{ctx: ctx, conn: conn, batchSize: batch, state: Idle}, nil
}

// Name implements Sink.
func (d *Database) Name() string { return "database" }

// Handle implements Sink.
func (d *Database) Handle(msg scan.Message) {
	switch msg.Kind {
	case scan.KindConfig:
		d.onConfig(msg.Config)
	case scan.KindResult:
		d.onResult(msg.Result)
	case scan.KindComplete:
		d.onComplete()
	}
}

func (d *Database) onConfig(cfg scan.Config) {
	d.mu.Lock()
	d.jobID = cfg.JobID
	d.state = Configured
	d.mu.Unlock()

	if err := d.CreateTables(d.ctx); err != nil {
		ctxlog.Error(d.ctx, "database: create tables failed", "job_id", cfg.JobID, "error", err)
		return
	}
	d.mu.Lock()
	d.state = Ready
	d.mu.Unlock()
}

func (d *Database) onResult(r scan.Result) {
	if !r.Kept() {
		return
	}
	d.mu.Lock()
	if d.state != Ready {
		d.mu.Unlock()
		return
	}
	d.buffer = append(d.buffer, toRecord(r, d.originState))
	flush := uint32(len(d.buffer)) >= d.batchSize
	d.mu.Unlock()
	if flush {
		if err := d.Flush(d.ctx); err != nil {
			ctxlog.Error(d.ctx, "database: flush failed", "job_id", d.jobID, "error", err)
		}
	}
}

func (d *Database) onComplete() {
	d.mu.Lock()
	d.state = Draining
	d.mu.Unlock()
	if err := d.Flush(d.ctx); err != nil {
		ctxlog.Error(d.ctx, "database: final flush failed", "job_id", d.jobID, "error", err)
	}
	d.mu.Lock()
	d.state = Done
	d.mu.Unlock()
}

// CreateTables creates the per-job base and state tables, per spec.md §4.6.
func (d *Database) CreateTables(ctx context.Context) error {
	d.mu.Lock()
	jobID := d.jobID
	d.mu.Unlock()

	baseSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = ReplacingMergeTree() ORDER BY (path)",
		tableBaseName(jobID), fileScanColumns)
	if err := d.conn.Exec(ctx, baseSQL); err != nil {
		return fmt.Errorf("create %s: %w", tableBaseName(jobID), err)
	}
	stateSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id UInt8, origin_state UInt8) ENGINE = ReplacingMergeTree() ORDER BY id",
		tableStateName(jobID))
	if err := d.conn.Exec(ctx, stateSQL); err != nil {
		return fmt.Errorf("create %s: %w", tableStateName(jobID), err)
	}
	return nil
}

// Flush sends the buffered records to the base table (or the open temp
// table, if one is open) in a single batch and empties the buffer. It is
// called both by onResult's batch_size threshold and by onComplete's
// final drain, satisfying the "200010 entries -> exactly two flushes"
// testable property when batch_size is 200000.
func (d *Database) Flush(ctx context.Context) error {
	d.mu.Lock()
	if len(d.buffer) == 0 {
		d.mu.Unlock()
		return nil
	}
	records := d.buffer
	d.buffer = nil
	table := tableBaseName(d.jobID)
	if d.tempTable != "" {
		table = d.tempTable
	}
	d.mu.Unlock()

	return d.insertBatch(ctx, table, records)
}

func (d *Database) insertBatch(ctx context.Context, table string, records []Record) error {
	batch, err := d.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s (%s)", table, fileScanInsertColumns))
	if err != nil {
		return fmt.Errorf("prepare batch for %s: %w", table, err)
	}
	for _, r := range records {
		if err := batch.Append(
			r.Path, r.Size, r.Ext, r.Ctime, r.Mtime, r.Atime, r.Perm,
			r.IsSymlink, r.IsDir, r.IsRegularFile, r.FileHandle, r.CurrentState,
		); err != nil {
			return fmt.Errorf("append row to %s: %w", table, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch to %s: %w", table, err)
	}
	return nil
}

// OpenTempTable creates a scan_temp_<uuid> staging table outside the
// per-job namespace and redirects subsequent Flush calls to it, per
// spec.md §9's supplemented staging-table feature.
func (d *Database) OpenTempTable(ctx context.Context) (string, error) {
	name := "scan_temp_" + strings.ReplaceAll(uuid.NewString(), "-", "_")
	sql := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = MergeTree() ORDER BY (path)", name, fileScanColumns)
	if err := d.conn.Exec(ctx, sql); err != nil {
		return "", fmt.Errorf("create temp table %s: %w", name, err)
	}
	d.mu.Lock()
	d.tempTable = name
	d.mu.Unlock()
	return name, nil
}

// CloseTempTable drops the open temp table, if any, and resumes writing
// to the job's base table.
func (d *Database) CloseTempTable(ctx context.Context) error {
	d.mu.Lock()
	name := d.tempTable
	d.tempTable = ""
	d.mu.Unlock()
	if name == "" {
		return nil
	}
	if err := d.conn.Exec(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop temp table %s: %w", name, err)
	}
	return nil
}

// SwitchState flips the scan_state_<jobid> row's origin_state between 0
// and 1, per spec.md §9's resolution of the current_state Open Question.
// A missing row is treated as origin_state 0 before switching.
func (d *Database) SwitchState(ctx context.Context) (uint8, error) {
	d.mu.Lock()
	jobID := d.jobID
	d.mu.Unlock()

	current, err := d.queryState(ctx, jobID)
	if err != nil {
		return 0, err
	}
	next := uint8(1) - current
	if err := d.conn.Exec(ctx,
		fmt.Sprintf("INSERT INTO %s (id, origin_state) VALUES (1, ?)", tableStateName(jobID)), next,
	); err != nil {
		return 0, fmt.Errorf("switch state: %w", err)
	}
	d.mu.Lock()
	d.originState = next
	d.mu.Unlock()
	return next, nil
}

func (d *Database) queryState(ctx context.Context, jobID string) (uint8, error) {
	var current uint8
	row := d.conn.QueryRow(ctx, fmt.Sprintf("SELECT origin_state FROM %s FINAL WHERE id = 1", tableStateName(jobID)))
	if err := row.Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("query state: %w", err)
	}
	return current, nil
}

// DropTablesWithPrefix deletes every table whose name starts with prefix,
// returning the names it dropped, per spec.md §9's operational cleanup
// feature.
func (d *Database) DropTablesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := d.conn.Query(ctx,
		"SELECT name FROM system.tables WHERE name LIKE ? AND database = currentDatabase()", prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list tables with prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var dropped []string
	for _, name := range names {
		if err := d.conn.Exec(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
			return dropped, fmt.Errorf("drop %s: %w", name, err)
		}
		dropped = append(dropped, name)
	}
	return dropped, nil
}

// Close releases the underlying ClickHouse connection.
func (d *Database) Close() error {
	return d.conn.Close()
}
