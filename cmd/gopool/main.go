// ============================================================================
// gopool - Main Entry Point
// ============================================================================
//
// File: cmd/gopool/main.go
// Purpose: Application entry point and CLI initialization
//
// Responsibilities:
//   1. Version Management - Inject build info via ldflags
//   2. Panic Recovery - Catch unexpected panics gracefully
//   3. CLI Setup - Build and configure Cobra command interface
//   4. Error Handling - Unified command execution error handling
//
// Version Injection:
//   Variables injected at build time via -ldflags:
//   go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
//
// Usage:
//   ./gopool --help              # Show help
//   ./gopool --version           # Show version
//   ./gopool run                 # Start a pool and block until signalled
//   ./gopool bench -n 50000      # Submit synthetic tasks and report throughput
//   ./gopool status              # Show pool saturation for the resolved config
//   ./gopool version             # Show version as a subcommand
//
// ============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/gopool/internal/cli"
)

// Build-time version injection via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	rootCmd := cli.BuildCLI(cli.VersionInfo{Version: version, Commit: commit, Date: date})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
