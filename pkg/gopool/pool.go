// ============================================================================
// gopool Pool - Worker Pool Engine
// ============================================================================
//
// Package: pkg/gopool
// File: pool.go
// Function: Queue, worker registry, mode logic, spawn/evict policy, and the
//   shutdown rendezvous. This is the core of the package — everything else
//   in pkg/gopool exists to support this type.
//
// Concurrency Control:
//   - mu guards queue, workers, and the three condition variables below.
//   - notEmpty: signalled when a task is enqueued, or on shutdown.
//   - notFull: signalled when a task is dequeued.
//   - exitCond: signalled by a worker as it removes itself from workers;
//     Close waits on this until workers is empty (the "exit rendezvous").
//   - currentSize, idleSize, taskCount, running are atomic for lock-free
//     advisory reads; decisions that affect correctness are always made
//     under mu.
//
// Go has no native timed condition-variable wait, unlike C++'s
// condition_variable::wait_for. waitTimedLocked below reproduces it with a
// one-shot timer that broadcasts after the deadline — a standard idiom for
// porting timed-wait protocols to sync.Cond.
//
// ============================================================================

package gopool

import (
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Mode selects how the Pool manages its worker count.
type Mode int

const (
	// Fixed keeps the worker count equal to the size passed to Start for
	// the Pool's lifetime.
	Fixed Mode = iota
	// Cached grows the worker count under load, up to MaxWorkers, and
	// shrinks idle workers back down to the Start size after IdleTimeout.
	Cached
)

func (m Mode) String() string {
	if m == Cached {
		return "cached"
	}
	return "fixed"
}

const (
	// defaultQueueCapacity matches the source's use of INT32_MAX as an
	// effectively unbounded default queue.
	defaultQueueCapacity = math.MaxInt32
	// defaultMaxWorkers is a generous upper bound for Cached mode,
	// consistent with spec.md's "200-1024" guidance.
	defaultMaxWorkers = 1024
	// IdleTimeout is the duration a Cached worker above the Start size may
	// sit without work before self-terminating. Not configurable: spec.md
	// lists no setter for it.
	IdleTimeout = 60 * time.Second
	// submitTimeout bounds how long Submit waits for queue space.
	submitTimeout = 1 * time.Second
	// idleCheckInterval is the tick used by Cached-mode idle eviction.
	idleCheckInterval = 1 * time.Second
)

type taskEntry struct {
	task   Task
	result *Result
}

// Hooks lets an embedder observe Pool internals (for metrics, logging, etc.)
// without the core depending on any particular observability stack. Every
// field is optional; a nil hook is simply not called.
type Hooks struct {
	OnSubmit      func()
	OnReject      func()
	OnWorkerSpawn func()
	OnWorkerEvict func()
	OnTaskDone    func(d time.Duration, err error)
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithHooks attaches observability hooks to the Pool.
func WithHooks(h Hooks) Option {
	return func(p *Pool) { p.hooks = h }
}

// WithLogger overrides the Pool's diagnostic logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// Pool is a process-local worker pool: callers Submit Tasks and receive a
// Result; workers dequeue and execute Tasks, writing their output back into
// the Result.
type Pool struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	exitCond *sync.Cond

	workers map[int64]*workerRecord
	queue   []taskEntry

	initSize      int
	currentSize   atomic.Int64
	idleSize      atomic.Int64
	maxSize       int
	queueCapacity int
	mode          Mode
	running       atomic.Bool
	taskCount     atomic.Int64

	hooks Hooks
	log   *slog.Logger
}

// New creates a Pool in Fixed mode with spec.md's default capacities.
// Configure it with SetMode/SetQueueCapacity/SetMaxWorkers before Start.
func New(opts ...Option) *Pool {
	p := &Pool{
		workers:       make(map[int64]*workerRecord),
		queueCapacity: defaultQueueCapacity,
		maxSize:       defaultMaxWorkers,
		mode:          Fixed,
		log:           slog.Default(),
	}
	p.notEmpty = sync.NewCond(&p.mu)
	p.notFull = sync.NewCond(&p.mu)
	p.exitCond = sync.NewCond(&p.mu)

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetMode sets the Pool's worker-count strategy. Ignored once Start has
// been called (spec.md's ConfigIgnored behaviour).
func (p *Pool) SetMode(m Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running.Load() {
		return
	}
	p.mode = m
}

// SetQueueCapacity bounds how many tasks may be queued awaiting a worker.
// Ignored once Start has been called.
func (p *Pool) SetQueueCapacity(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running.Load() {
		return
	}
	p.queueCapacity = n
}

// SetMaxWorkers bounds how large the worker count may grow in Cached mode.
// Ignored once Start has been called, and has no effect in Fixed mode.
func (p *Pool) SetMaxWorkers(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running.Load() {
		return
	}
	p.maxSize = n
}

// Start launches the Pool with `initial` workers. initial <= 0 defaults to
// runtime.NumCPU(), the Go analogue of std::thread::hardware_concurrency()
// used by the original source. Start may be called only once.
func (p *Pool) Start(initial int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return ErrAlreadyStarted
	}
	if initial <= 0 {
		initial = runtime.NumCPU()
	}

	p.initSize = initial
	p.running.Store(true)

	for i := 0; i < initial; i++ {
		p.spawnWorkerLocked()
	}
	return nil
}

// Submit enqueues task and returns a Result bound to it. If the queue
// remains full for a full second, Submit gives up and returns a poisoned
// Result instead of blocking indefinitely (spec.md §4.6 Submission).
func (p *Pool) Submit(task Task) *Result {
	p.mu.Lock()

	deadline := time.Now().Add(submitTimeout)
	for len(p.queue) >= p.queueCapacity {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			p.mu.Unlock()
			p.log.Warn("gopool: task queue full, submit rejected")
			if p.hooks.OnReject != nil {
				p.hooks.OnReject()
			}
			return newResult(task, false)
		}
		p.waitTimedLocked(p.notFull, remaining)
	}

	// newResult wires task.setResult before the task is appended to the
	// queue, so the back-pointer is non-nil before any worker can observe
	// the task (spec.md §3's Task invariant).
	result := newResult(task, true)
	p.queue = append(p.queue, taskEntry{task: task, result: result})
	p.taskCount.Add(1)

	p.notEmpty.Broadcast()

	if p.mode == Cached && p.taskCount.Load() > p.idleSize.Load() && p.currentSize.Load() < int64(p.maxSize) {
		p.spawnWorkerLocked()
	}

	p.mu.Unlock()

	if p.hooks.OnSubmit != nil {
		p.hooks.OnSubmit()
	}
	return result
}

// spawnWorkerLocked constructs and starts one worker. Caller must hold mu.
func (p *Pool) spawnWorkerLocked() {
	wr := newWorkerRecord(p.workerLoop)
	p.workers[wr.id()] = wr
	p.currentSize.Add(1)
	p.idleSize.Add(1)
	wr.start()
	if p.hooks.OnWorkerSpawn != nil {
		p.hooks.OnWorkerSpawn()
	}
}

// workerLoop is the per-worker routine described in spec.md §4.6.
func (p *Pool) workerLoop(id int64) {
	lastActive := time.Now()

	for {
		p.mu.Lock()

		for len(p.queue) == 0 {
			if !p.running.Load() {
				p.removeWorkerLocked(id)
				p.exitCond.Broadcast()
				p.mu.Unlock()
				return
			}

			if p.mode == Cached {
				p.waitTimedLocked(p.notEmpty, idleCheckInterval)
				if len(p.queue) == 0 &&
					time.Since(lastActive) >= IdleTimeout &&
					p.currentSize.Load() > int64(p.initSize) {
					p.removeWorkerLocked(id)
					p.exitCond.Broadcast()
					p.mu.Unlock()
					if p.hooks.OnWorkerEvict != nil {
						p.hooks.OnWorkerEvict()
					}
					return
				}
				continue
			}

			p.notEmpty.Wait()
		}

		p.idleSize.Add(-1)
		entry := p.queue[0]
		p.queue = p.queue[1:]
		p.taskCount.Add(-1)

		if len(p.queue) > 0 {
			p.notEmpty.Broadcast()
		}
		p.notFull.Broadcast()
		p.mu.Unlock()

		start := time.Now()
		entry.task.exec()
		if p.hooks.OnTaskDone != nil {
			p.hooks.OnTaskDone(time.Since(start), execError(entry.result))
		}

		p.idleSize.Add(1)
		lastActive = time.Now()
	}
}

// execError extracts the error stored by execTask, if any, purely for
// observability hooks — it does not consume the Result's Value for the
// submitter, since Get has not necessarily been called yet; it peeks the
// already-set Value without blocking.
func execError(r *Result) error {
	if r == nil || !r.valid.Load() {
		return nil
	}
	if err, ok := r.val.v.(error); ok {
		return err
	}
	return nil
}

// removeWorkerLocked removes a worker from the registry, whether it is
// retiring at shutdown or self-evicting after an idle timeout. Caller must
// hold mu and is responsible for any post-removal broadcast/unlock.
func (p *Pool) removeWorkerLocked(id int64) {
	delete(p.workers, id)
	p.currentSize.Add(-1)
	p.idleSize.Add(-1)
}

// waitTimedLocked waits on cond for up to timeout, then returns — whether
// because of a real signal or because the timeout elapsed. Callers must
// hold mu and re-check their predicate in a loop, exactly as with an
// untimed Cond.Wait. mu is released while waiting and re-acquired before
// return, matching sync.Cond.Wait's contract.
func (p *Pool) waitTimedLocked(cond *sync.Cond, timeout time.Duration) {
	timer := time.AfterFunc(timeout, func() {
		p.mu.Lock()
		cond.Broadcast()
		p.mu.Unlock()
	})
	cond.Wait()
	timer.Stop()
}

// Close signals shutdown and blocks until every worker has removed itself
// from the registry (spec.md §4.6 Shutdown, the "destructor"). Tasks still
// queued at this point are poisoned rather than silently abandoned — see
// SPEC_FULL.md §9 for why this departs from the literal source behaviour.
func (p *Pool) Close() {
	p.running.Store(false)

	p.mu.Lock()
	for _, entry := range p.queue {
		entry.result.poison()
	}
	p.queue = nil

	p.notEmpty.Broadcast()
	for len(p.workers) > 0 {
		p.exitCond.Wait()
	}
	p.mu.Unlock()
}

// Stats is a point-in-time snapshot of Pool saturation, used by
// internal/metrics and internal/cli's status command.
type Stats struct {
	CurrentWorkers int
	IdleWorkers    int
	QueueDepth     int
	TaskCount      int64
	Mode           Mode
}

// Stats returns a snapshot of the Pool's current saturation.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	depth := len(p.queue)
	mode := p.mode
	p.mu.Unlock()

	return Stats{
		CurrentWorkers: int(p.currentSize.Load()),
		IdleWorkers:    int(p.idleSize.Load()),
		QueueDepth:     depth,
		TaskCount:      p.taskCount.Load(),
		Mode:           mode,
	}
}
