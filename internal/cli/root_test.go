package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activityhub/internal/adapters/storage/hub"
	"activityhub/internal/config"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand("test")
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestMigrateThenSeedThenStats(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hub.sqlite")

	out, err := run(t, "migrate", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "schema ready")

	out, err = run(t, "seed", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "inserted 5 students and 3 activities\n", out)

	out, err = run(t, "seed", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "inserted 0 students and 0 activities\n", out)

	out, err = run(t, "stats", "--db", db)
	require.NoError(t, err)
	var stats hub.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, hub.Stats{TotalStudents: 5, TotalActivities: 3}, stats)
}

func TestSeed_CustomFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hub.sqlite")
	fixture := filepath.Join(t.TempDir(), "fair.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte(`
students:
  - {name: Mere, email: mere@gmail.com, password: x}
activities:
  - {name: Kapa Haka, type: Club, subcategory: Culture, date: "2024-07-04"}
  - {name: Debate, type: Club, subcategory: Speech, date: "2024-07-05"}
`), 0o600))

	out, err := run(t, "seed", "--db", db, "--file", fixture)
	require.NoError(t, err)
	assert.Equal(t, "inserted 1 students and 2 activities\n", out)
}

func TestStats_MemoryDriver(t *testing.T) {
	out, err := run(t, "stats", "--driver", "memory")
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalStudents":5,"totalActivities":3,"totalParticipations":0}`, out)
}

func TestMigrate_RejectsMemoryDriver(t *testing.T) {
	_, err := run(t, "migrate", "--driver", "memory")
	assert.Error(t, err)
}

func TestInvalidDriverFlag(t *testing.T) {
	_, err := run(t, "stats", "--driver", "postgres")
	require.Error(t, err)
}

func TestServe_StartsAndStops(t *testing.T) {
	cfg := config.Config{
		Addr:        "127.0.0.1:0",
		DBDriver:    hub.DriverModernc,
		DBPath:      filepath.Join(t.TempDir(), "hub.sqlite"),
		CORSOrigins: []string{"*"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, "test", ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/api/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","backend":"sqlite","degraded":false}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}
