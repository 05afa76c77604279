// ============================================================================
// gopool Result - One-Shot Future
// ============================================================================
//
// Package: pkg/gopool
// File: result.go
// Function: The submitter's one-shot view into a Task's completion.
//
// Source note (spec.md §9): the C++ source stores a raw Result* back-pointer
// on Task, which can dangle if the Result is destroyed before the worker
// runs the task. Here the Task is held by the queue (via the Pool) and by
// whatever the submitter does with the Result — both are plain interface
// values managed by the garbage collector, so there is no dangling-handle
// hazard to begin with; the back-pointer only needs to exist long enough
// for exec() to call setVal, which it always can.
//
// The source declares isValid_ as std::atomic_bool, since a Result may be
// read from the submitter's goroutine while the pool poisons it from
// another during shutdown; valid is an atomic.Bool here for the same
// reason.
//
// ============================================================================

package gopool

import "sync/atomic"

// Result is the submitter's handle to a Task's eventual output.
type Result struct {
	val   Value
	sem   *semaphore
	task  Task
	valid atomic.Bool
}

// newResult binds result to task (via task.setResult) and returns the
// submitter's handle. When valid is false, Get returns the empty sentinel
// Value without blocking — this is the "poisoned" Result returned when
// submission is rejected.
func newResult(task Task, valid bool) *Result {
	r := &Result{
		sem:  newSemaphore(0),
		task: task,
	}
	r.valid.Store(valid)
	task.setResult(r)
	return r
}

// setVal stores v and wakes any caller blocked in Get. Called at most once,
// by the worker goroutine executing the bound Task.
func (r *Result) setVal(v Value) {
	r.val = v
	r.sem.post()
}

// poison marks the Result invalid and unblocks any caller already waiting
// in Get (used when Close drains tasks still sitting in the queue). The
// value is written before the semaphore post, exactly as in setVal, so the
// post/wait pair establishes happens-before for a Get call that had already
// passed the validity check before poison ran.
func (r *Result) poison() {
	r.val = emptyValue()
	r.valid.Store(false)
	r.sem.post()
}

// Get blocks until the bound Task has completed (or returns immediately if
// the Result was poisoned) and returns its Value.
func (r *Result) Get() Value {
	if !r.valid.Load() {
		return emptyValue()
	}
	r.sem.wait()
	return r.val
}

// Valid reports whether the submission that produced this Result was
// accepted by the Pool.
func (r *Result) Valid() bool {
	return r.valid.Load()
}
