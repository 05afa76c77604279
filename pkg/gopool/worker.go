// ============================================================================
// gopool workerRecord - One Worker's Identity and Start Routine
// ============================================================================
//
// Package: pkg/gopool
// File: worker.go
// Function: Metadata for one worker goroutine — a stable id and the
//   routine it runs. Mirrors the source's Thread class; a detached
//   std::thread is the C++ analogue of a started goroutine.
//
// ============================================================================

package gopool

import "sync/atomic"

// nextWorkerID is a process-wide counter; ids are monotonic and need not be
// reused across Pools.
var nextWorkerID atomic.Int64

// workerRecord holds one worker's identity and start routine. The routine
// receives the worker's own id so it can remove itself from the registry on
// exit.
type workerRecord struct {
	workerID int64
	routine  func(id int64)
}

func newWorkerRecord(routine func(id int64)) *workerRecord {
	return &workerRecord{
		workerID: nextWorkerID.Add(1),
		routine:  routine,
	}
}

func (w *workerRecord) id() int64 {
	return w.workerID
}

// start spawns the worker goroutine, which outlives this call.
func (w *workerRecord) start() {
	go w.routine(w.workerID)
}
