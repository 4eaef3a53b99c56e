package hub

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"activityhub/internal/adapters/http/perf"
	"activityhub/internal/adapters/storage"
	"activityhub/internal/adapters/storage/seed"
)

// Driver names accepted by Open.
const (
	DriverModernc = "sqlite"  // pure Go, modernc.org/sqlite
	DriverMattn   = "sqlite3" // cgo, github.com/mattn/go-sqlite3
	DriverMemory  = "memory"  // skip the relational backend entirely
)

// Options selects and configures the backend.
type Options struct {
	Driver    string
	Path      string
	Seeds     seed.Fixtures
	Collector *perf.Collector // optional
}

// OpenResult is the store chosen at startup. Degraded is true when the
// relational backend was requested but could not be opened.
type OpenResult struct {
	Store    Store
	Degraded bool
	Cause    error
}

// Open returns a relational store when possible, otherwise a memory store
// seeded from opts.Seeds. The fallback is logged once and never reverses.
// PRE: opts.Seeds has been validated
// POST: Result.Store is never nil
func Open(ctx context.Context, opts Options) OpenResult {
	if opts.Driver == DriverMemory {
		slog.Info("store_opened", "backend", BackendMemory, "reason", "configured")
		return OpenResult{Store: NewMemoryStore(opts.Seeds)}
	}

	st, err := OpenSQLite(ctx, opts)
	if err == nil {
		students, activities, seedErr := st.Seed(ctx, opts.Seeds)
		if seedErr == nil {
			slog.Info("store_opened", "backend", BackendSQLite, "driver", driverOrDefault(opts.Driver),
				"path", opts.Path, "seeded_students", students, "seeded_activities", activities)
			return OpenResult{Store: st}
		}
		st.Close()
		err = fmt.Errorf("%w: seed: %w", ErrStoreUnavailable, seedErr)
	}

	slog.Warn("store_degraded", "backend", BackendMemory, "driver", driverOrDefault(opts.Driver),
		"path", opts.Path, "error", err)
	return OpenResult{Store: NewMemoryStore(opts.Seeds), Degraded: true, Cause: err}
}

// OpenSQLite opens, pings and initializes the relational backend. It does
// not seed.
// PRE: opts.Path is a file path or ":memory:"
// POST: On success the schema exists; errors wrap ErrStoreUnavailable
func OpenSQLite(ctx context.Context, opts Options) (*SQLiteStore, error) {
	driver := driverOrDefault(opts.Driver)
	dsn, err := dataSourceName(driver, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStoreUnavailable, driver, err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrStoreUnavailable, driver, err)
	}

	timed := storage.NewTimedDB(db, opts.Collector)
	if err := storage.InitDB(ctx, timed); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return NewSQLiteStore(timed, timed.Close), nil
}

func driverOrDefault(driver string) string {
	if driver == "" {
		return DriverModernc
	}
	return driver
}

func dataSourceName(driver, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty database path")
	}
	switch driver {
	case DriverModernc:
		return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", nil
	case DriverMattn:
		if !strings.HasPrefix(path, "file:") {
			path = "file:" + path
		}
		return path + "?_busy_timeout=5000&_foreign_keys=on", nil
	default:
		return "", fmt.Errorf("unknown driver %q", driver)
	}
}
