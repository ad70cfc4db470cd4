package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names as registered with database/sql.
const (
	DriverMattn   = "sqlite3"
	DriverModernc = "sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DBPair holds separate read and write connections for optimal SQLite concurrency.
// With WAL mode, readers don't block writers and vice versa.
// An in-memory database uses one connection for both.
type DBPair struct {
	reader *sqlx.DB // Multiple connections for concurrent reads
	writer *sqlx.DB // Single connection for serialized writes
	driver string
}

// Reader returns the read-only database connection pool.
func (p *DBPair) Reader() *sqlx.DB { return p.reader }

// Writer returns the read-write database connection pool.
func (p *DBPair) Writer() *sqlx.DB { return p.writer }

// Driver returns the database/sql driver name in use.
func (p *DBPair) Driver() string { return p.driver }

// Close closes both database connections.
func (p *DBPair) Close() error {
	var errs []error
	if p.reader != p.writer {
		if err := p.reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close reader: %w", err))
		}
	}
	if err := p.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close writer: %w", err))
	}
	return errors.Join(errs...)
}

// Ping verifies the writer connection is usable.
func (p *DBPair) Ping(ctx context.Context) error {
	var result int
	if err := p.writer.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Options controls how the database is opened.
type Options struct {
	Path           string
	Driver         string // DriverMattn (default) or DriverModernc
	BusyTimeoutMs  int
	ReaderPoolSize int
}

// Init opens path with the default driver and settings.
func Init(dbPath string) (*DBPair, error) {
	return Open(Options{Path: dbPath})
}

// Open opens the SQLite database, applies the schema and runs migrations.
// Returns a DBPair with separate reader and writer pools.
func Open(opts Options) (*DBPair, error) {
	if opts.Path == "" {
		return nil, errors.New("db path is required")
	}
	if opts.Driver == "" {
		opts.Driver = DriverMattn
	}
	if opts.BusyTimeoutMs <= 0 {
		opts.BusyTimeoutMs = 5000
	}
	if opts.ReaderPoolSize <= 0 {
		opts.ReaderPoolSize = 4
	}

	var pair *DBPair
	var err error
	if opts.Path == MemoryPath {
		pair, err = openMemory(opts)
	} else {
		pair, err = openFile(opts)
	}
	if err != nil {
		return nil, err
	}

	// Apply schema using writer
	if _, err := pair.writer.Exec(schemaSQL); err != nil {
		pair.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := runMigrations(pair.writer); err != nil {
		pair.Close()
		return nil, err
	}

	return pair, nil
}

func openFile(opts Options) (*DBPair, error) {
	if err := ensureDir(opts.Path); err != nil {
		return nil, err
	}

	writer, err := sqlx.Open(opts.Driver, dsn(opts, "rwc", true))
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1) // SQLite serializes writes anyway
	writer.SetMaxIdleConns(1) // Keep one connection warm
	writer.SetConnMaxLifetime(time.Hour)

	// Reader: Multiple connections for concurrent reads
	reader, err := sqlx.Open(opts.Driver, dsn(opts, "ro", false))
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(opts.ReaderPoolSize)
	reader.SetMaxIdleConns(2)
	reader.SetConnMaxLifetime(time.Hour)

	return &DBPair{reader: reader, writer: writer, driver: opts.Driver}, nil
}

// openMemory shares one connection between reader and writer; a second
// connection would see a different, empty database.
func openMemory(opts Options) (*DBPair, error) {
	conn, err := sqlx.Open(opts.Driver, dsn(opts, "memory", false))
	if err != nil {
		return nil, fmt.Errorf("open memory database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	return &DBPair{reader: conn, writer: conn, driver: opts.Driver}, nil
}

// dsn builds a driver specific URI. Foreign keys are enabled per connection,
// so they stay on when the pool recycles connections.
//   - mode=rwc: read-write-create, mode=ro: read-only
//   - WAL is set on the writer only; it persists in the database file
func dsn(opts Options, mode string, wal bool) string {
	name := "file:" + opts.Path + "?mode=" + mode
	if mode == "memory" {
		name = "file::memory:?mode=memory"
	}

	switch opts.Driver {
	case DriverModernc:
		name += fmt.Sprintf("&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", opts.BusyTimeoutMs)
		if wal {
			name += "&_pragma=journal_mode(WAL)"
		}
	default:
		name += fmt.Sprintf("&_busy_timeout=%d&_foreign_keys=on", opts.BusyTimeoutMs)
		if wal {
			name += "&_journal_mode=WAL"
		}
	}
	return name
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
