package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/gopool/pkg/gopool"
)

func TestBuildCLI(t *testing.T) {
	vi := VersionInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}
	cmd := BuildCLI(vi)

	require.NotNil(t, cmd)
	assert.Equal(t, "gopool", cmd.Use)
	assert.Equal(t, vi.String(), cmd.Version)

	commands := cmd.Commands()
	assert.Len(t, commands, 4)

	names := make(map[string]bool)
	for _, c := range commands {
		names[c.Use] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["bench"])
	assert.True(t, names["status"])
	assert.True(t, names["version"])

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "configs/default.yaml", configFlag.DefValue)
}

func TestVersionInfoString(t *testing.T) {
	vi := VersionInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2026-01-01)", vi.String())
}

func TestBuildVersionCommand(t *testing.T) {
	cmd := buildVersionCommand(VersionInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"})
	require.NotNil(t, cmd)
	assert.Equal(t, "version", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestBuildRunCommand(t *testing.T) {
	cmd := buildRunCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "run", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	fileFlag := cmd.Flags().Lookup("file")
	require.NotNil(t, fileFlag)
	assert.Equal(t, "f", fileFlag.Shorthand)
}

func TestBuildBenchCommand(t *testing.T) {
	cmd := buildBenchCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "bench", cmd.Use)

	tasksFlag := cmd.Flags().Lookup("tasks")
	require.NotNil(t, tasksFlag)
	assert.Equal(t, "n", tasksFlag.Shorthand)
	assert.NotNil(t, cmd.RunE)
}

func TestBuildStatusCommand(t *testing.T) {
	cmd := buildStatusCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "status", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func withConfigFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := withConfigFile(t, `
pool:
  mode: cached
  initial_size: 2
  max_workers: 32
  queue_capacity: 50
`)

	old := configFile
	configFile = path
	defer func() { configFile = old }()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Pool.InitialSize)
	assert.Equal(t, 32, cfg.Pool.MaxWorkers)
	assert.Equal(t, 50, cfg.Pool.QueueCapacity)
}

func TestLoadConfigMissingFile(t *testing.T) {
	old := configFile
	configFile = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { configFile = old }()

	_, err := loadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := withConfigFile(t, `
pool:
  queue_capacity: 0
`)
	old := configFile
	configFile = path
	defer func() { configFile = old }()

	_, err := loadConfig()
	assert.Error(t, err)
}

func TestShowStatusDoesNotError(t *testing.T) {
	path := withConfigFile(t, `
pool:
  mode: fixed
  max_workers: 16
  queue_capacity: 100
`)
	old := configFile
	configFile = path
	defer func() { configFile = old }()

	assert.NoError(t, showStatus())
}

func TestRunBenchSubmitsAndCollectsAllResults(t *testing.T) {
	path := withConfigFile(t, `
pool:
  mode: fixed
  initial_size: 2
  max_workers: 16
  queue_capacity: 1000
`)
	old := configFile
	configFile = path
	defer func() { configFile = old }()

	assert.NoError(t, runBench(100))
}

func TestLoadTaskBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "task-1", "payload": {"n": 1}},
		{"id": "task-2", "payload": {"n": 2}}
	]`), 0o644))

	batch, err := loadTaskBatch(path)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "task-1", batch[0].ID)
	assert.Equal(t, float64(1), batch[0].Payload["n"])
}

func TestLoadTaskBatchMissingFile(t *testing.T) {
	_, err := loadTaskBatch(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadTaskBatchInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := loadTaskBatch(path)
	assert.Error(t, err)
}

func TestSubmitTaskBatchRunsAllTasks(t *testing.T) {
	p := gopool.New()
	p.SetMode(gopool.Fixed)
	p.SetQueueCapacity(10)
	require.NoError(t, p.Start(2))
	defer p.Close()

	batch := []taskInput{
		{ID: "a", Payload: map[string]interface{}{"n": float64(1)}},
		{ID: "b", Payload: map[string]interface{}{"n": float64(2)}},
	}
	assert.NotPanics(t, func() { submitTaskBatch(p, batch) })
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, time.Duration(0), percentile(nil, 0.95))

	durations := []time.Duration{
		5 * time.Millisecond,
		1 * time.Millisecond,
		4 * time.Millisecond,
		2 * time.Millisecond,
		3 * time.Millisecond,
	}
	assert.Equal(t, 5*time.Millisecond, percentile(durations, 0.95))
	assert.Equal(t, 3*time.Millisecond, percentile(durations, 0.5))
}
