package hub

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs routes the default logger to a JSON buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func countEvents(buf *bytes.Buffer, msg string) int {
	return strings.Count(buf.String(), `"msg":"`+msg+`"`)
}

func TestOpen_SQLiteSeedsOnce(t *testing.T) {
	logs := captureLogs(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hub.sqlite")
	opts := Options{Driver: DriverModernc, Path: path, Seeds: testFixtures()}

	first := Open(ctx, opts)
	require.False(t, first.Degraded, "cause: %v", first.Cause)
	assert.Equal(t, BackendSQLite, first.Store.Backend())
	_, err := first.Store.CreateParticipation(ctx, 1, 1)
	require.NoError(t, err)
	require.NoError(t, first.Store.Close())

	second := Open(ctx, opts)
	require.False(t, second.Degraded)
	defer second.Store.Close()

	stats, err := second.Store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalStudents: 3, TotalActivities: 2, TotalParticipations: 1}, stats)
	assert.Equal(t, 0, countEvents(logs, "store_degraded"))
	assert.Equal(t, 2, countEvents(logs, "store_opened"))
}

func TestOpen_FallsBackToMemory(t *testing.T) {
	// A regular file cannot be a parent directory, so the open fails.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	cases := []struct {
		name string
		opts Options
	}{
		{"unopenable path", Options{Driver: DriverModernc, Path: filepath.Join(blocker, "hub.sqlite")}},
		{"unknown driver", Options{Driver: "postgres", Path: "hub.sqlite"}},
		{"empty path", Options{Driver: DriverModernc}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)
			tc.opts.Seeds = testFixtures()
			res := Open(context.Background(), tc.opts)

			assert.Equal(t, 1, countEvents(logs, "store_degraded"), logs.String())
			assert.Contains(t, logs.String(), `"level":"WARN","msg":"store_degraded"`)

			assert.True(t, res.Degraded)
			assert.ErrorIs(t, res.Cause, ErrStoreUnavailable)
			require.NotNil(t, res.Store)
			assert.Equal(t, BackendMemory, res.Store.Backend())

			stats, err := res.Store.Stats(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 3, stats.TotalStudents)
		})
	}
}

func TestOpen_MemoryDriverIsNotDegraded(t *testing.T) {
	logs := captureLogs(t)
	res := Open(context.Background(), Options{Driver: DriverMemory, Seeds: testFixtures()})
	assert.Equal(t, 0, countEvents(logs, "store_degraded"))
	assert.False(t, res.Degraded)
	assert.NoError(t, res.Cause)
	assert.Equal(t, BackendMemory, res.Store.Backend())
}

func TestDataSourceName(t *testing.T) {
	cases := []struct {
		driver, path, want string
	}{
		{DriverModernc, "db.sqlite", "db.sqlite?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"},
		{DriverMattn, "db.sqlite", "file:db.sqlite?_busy_timeout=5000&_foreign_keys=on"},
		{DriverMattn, "file:db.sqlite", "file:db.sqlite?_busy_timeout=5000&_foreign_keys=on"},
	}
	for _, tc := range cases {
		got, err := dataSourceName(tc.driver, tc.path)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}
