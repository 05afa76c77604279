// ============================================================================
// gopool CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra-based command line interface over pkg/gopool
//
// Command Structure:
//   gopool                    # Root command
//   ├── run                   # Start a pool and keep it running
//   │   ├── --config, -c      # Specify config file
//   │   └── --file, -f        # Optional JSON task batch to submit on startup
//   ├── bench                 # Submit synthetic tasks, report throughput/p95
//   │   └── --tasks, -n       # Number of tasks to submit
//   ├── status                # Show current pool saturation
//   ├── version               # Print version information
//   ├── --version             # Display version information (root flag)
//   └── --help                # Display help information
//
// Configuration Management:
//   Uses YAML format config file (default: configs/default.yaml). See
//   internal/config for the schema: pool mode/sizing and metrics exposure.
//
// run Command:
//   Starts a Pool in the configured mode, optionally submits a JSON task
//   batch and prints its results, optionally starts the Prometheus metrics
//   server, listens for SIGINT/SIGTERM, then closes the pool.
//
//   Task batch format (--file):
//     [{"id": "task-1", "payload": {"n": 3}}, ...]
//
// bench Command:
//   Submits a configurable number of no-op tasks through the pool and
//   reports wall-clock throughput and p95 submit-to-completion latency —
//   useful for sanity-checking a mode or capacity change before deploying.
//
// status Command:
//   Starts a pool from the resolved config, reads its Stats() once, and
//   prints current saturation (workers, idle workers, queue depth).
//
// Signal Handling:
//   run captures SIGINT and SIGTERM and calls Pool.Close, which blocks
//   until every worker has exited.
//
// ============================================================================

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/gopool/internal/config"
	"github.com/ChuLiYu/gopool/internal/metrics"
	"github.com/ChuLiYu/gopool/pkg/gopool"
)

var configFile string

// VersionInfo carries the ldflags-injected build identity from cmd/gopool
// into the command tree, so both `--version` and the `version` subcommand
// report the same values.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", v.Version, v.Commit, v.Date)
}

// BuildCLI constructs the gopool command tree.
func BuildCLI(vi VersionInfo) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gopool",
		Short: "gopool: a configurable in-process worker pool",
		Long: `gopool runs a worker pool as a standalone process for load
testing and operational inspection: fixed or cached worker modes, a
bounded task queue, and optional Prometheus metrics.`,
		Version: vi.String(),
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildBenchCommand())
	rootCmd.AddCommand(buildStatusCommand())
	rootCmd.AddCommand(buildVersionCommand(vi))

	return rootCmd
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func buildPool(cfg config.Config, collector *metrics.Collector) *gopool.Pool {
	var opts []gopool.Option
	if collector != nil {
		opts = append(opts, gopool.WithHooks(collector.Hooks()))
	}
	p := gopool.New(opts...)
	p.SetMode(cfg.Mode())
	p.SetQueueCapacity(cfg.Pool.QueueCapacity)
	p.SetMaxWorkers(cfg.Pool.MaxWorkers)
	return p
}

// taskInput is one entry of a JSON task batch submitted via `run --file`.
// payload is returned verbatim by the task's Run, so the batch doubles as
// an echo test of the pool's submit/execute/collect path.
type taskInput struct {
	ID      string                 `json:"id"`
	Payload map[string]interface{} `json:"payload"`
}

func loadTaskBatch(path string) ([]taskInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gopool: read task batch %q: %w", path, err)
	}
	var batch []taskInput
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("gopool: parse task batch %q: %w", path, err)
	}
	return batch, nil
}

// submitTaskBatch submits every entry in batch, then collects and prints
// each result in submission order.
func submitTaskBatch(p *gopool.Pool, batch []taskInput) {
	results := make([]*gopool.Result, len(batch))
	for i, in := range batch {
		in := in
		results[i] = p.Submit(gopool.NewTaskFunc(func() (gopool.Value, error) {
			return gopool.NewValue[map[string]interface{}](in.Payload), nil
		}))
	}

	for i, r := range results {
		v := r.Get()
		if v.IsEmpty() {
			fmt.Printf("task %s: rejected (queue full)\n", batch[i].ID)
			continue
		}
		payload, err := gopool.ExtractValue[map[string]interface{}](v)
		if err != nil {
			fmt.Printf("task %s: error: %v\n", batch[i].ID, err)
			continue
		}
		fmt.Printf("task %s: %v\n", batch[i].ID, payload)
	}
}

func buildRunCommand() *cobra.Command {
	var taskFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a pool and keep it running",
		Long:  "Start a pool in the configured mode, optionally submit a JSON task batch, and block until SIGINT/SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPool(taskFile)
		},
	}
	cmd.Flags().StringVarP(&taskFile, "file", "f", "", "JSON file containing a task batch to submit on startup")
	return cmd
}

func runPool(taskFile string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("gopool: load config: %w", err)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
	}

	p := buildPool(cfg, collector)
	if err := p.Start(cfg.Pool.InitialSize); err != nil {
		return fmt.Errorf("gopool: start pool: %w", err)
	}
	slog.Info("pool started", "mode", cfg.Mode().String(), "initial_size", cfg.Pool.InitialSize)

	if taskFile != "" {
		batch, err := loadTaskBatch(taskFile)
		if err != nil {
			p.Close()
			return err
		}
		slog.Info("submitting task batch", "file", taskFile, "tasks", len(batch))
		submitTaskBatch(p, batch)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if collector != nil {
		go collector.WatchStats(ctx, p, cfg.Metrics.PollInterval)
		go func() {
			slog.Info("metrics server starting", "port", cfg.Metrics.Port)
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutdown signal received, closing pool")
	p.Close()
	slog.Info("pool closed")
	return nil
}

func buildBenchCommand() *cobra.Command {
	var taskCount int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Submit synthetic tasks and report throughput and p95 latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(taskCount)
		},
	}
	cmd.Flags().IntVarP(&taskCount, "tasks", "n", 10000, "number of synthetic tasks to submit")
	return cmd
}

type benchSubmission struct {
	result      *gopool.Result
	submittedAt time.Time
	completedAt time.Time
}

func runBench(taskCount int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("gopool: load config: %w", err)
	}

	p := buildPool(cfg, nil)
	if err := p.Start(cfg.Pool.InitialSize); err != nil {
		return fmt.Errorf("gopool: start pool: %w", err)
	}
	defer p.Close()

	submissions := make([]benchSubmission, taskCount)
	start := time.Now()
	for i := 0; i < taskCount; i++ {
		s := &submissions[i]
		s.submittedAt = time.Now()
		s.result = p.Submit(gopool.NewTaskFunc(func() (gopool.Value, error) {
			s.completedAt = time.Now()
			return gopool.NewValue[int](1), nil
		}))
	}

	rejected := 0
	latencies := make([]time.Duration, 0, taskCount)
	for i := range submissions {
		s := &submissions[i]
		if !s.result.Valid() {
			rejected++
			continue
		}
		s.result.Get()
		latencies = append(latencies, s.completedAt.Sub(s.submittedAt))
	}
	elapsed := time.Since(start)

	fmt.Printf("submitted %d tasks in %s (%.0f tasks/sec), %d rejected, p95 latency %s\n",
		taskCount, elapsed, float64(taskCount)/elapsed.Seconds(), rejected, percentile(latencies, 0.95))
	return nil
}

// percentile returns the p-th percentile (0 < p <= 1) of durations, sorting
// them in place. An empty slice returns 0.
func percentile(durations []time.Duration, p float64) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	idx := int(math.Ceil(p*float64(len(durations)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(durations) {
		idx = len(durations) - 1
	}
	return durations[idx]
}

func buildStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current pool saturation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus()
		},
	}
	return cmd
}

func showStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("gopool: load config: %w", err)
	}

	p := buildPool(cfg, nil)
	if err := p.Start(cfg.Pool.InitialSize); err != nil {
		return fmt.Errorf("gopool: start pool: %w", err)
	}
	defer p.Close()

	stats := p.Stats()

	fmt.Println("gopool status")
	fmt.Printf("  config file:      %s\n", configFile)
	fmt.Printf("  mode:             %s\n", stats.Mode.String())
	fmt.Printf("  current workers:  %d\n", stats.CurrentWorkers)
	fmt.Printf("  idle workers:     %d\n", stats.IdleWorkers)
	fmt.Printf("  queue depth:      %d\n", stats.QueueDepth)
	fmt.Printf("  task count:       %d\n", stats.TaskCount)
	if cfg.Metrics.Enabled {
		fmt.Printf("  metrics:          enabled on :%d/metrics\n", cfg.Metrics.Port)
	} else {
		fmt.Println("  metrics:          disabled")
	}
	return nil
}

func buildVersionCommand(vi VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("gopool " + vi.String())
			return nil
		},
	}
}
