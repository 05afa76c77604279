package gopool

import "errors"

// Error kinds surfaced by gopool. See SPEC_FULL.md §7 for the propagation
// policy: none of these ever escape a worker goroutine directly. Start and
// ExtractValue return theirs; a queue-full submission is reported through a
// poisoned Result, which carries the empty Value rather than an error.
var (
	// ErrQueueFull names the queue-full rejection: the queue stayed full for
	// a full second. Submit never returns it and does not store it in the
	// poisoned Result; it logs a warning instead. Submit's signature is
	// submit(task) -> *Result, matching spec.md.
	ErrQueueFull = errors.New("gopool: task queue full, submission rejected")

	// ErrTypeMismatch is returned by ExtractValue when the requested type
	// does not match the type stored in the Value.
	ErrTypeMismatch = errors.New("gopool: type mismatch")

	// ErrAlreadyStarted is returned by Start when called more than once.
	ErrAlreadyStarted = errors.New("gopool: pool already started")

	// ErrConfigIgnored documents (but is never returned by) SetMode,
	// SetQueueCapacity and SetMaxWorkers once the pool is running: those
	// calls are silent no-ops per spec.md's ConfigIgnored behaviour.
	ErrConfigIgnored = errors.New("gopool: configuration change ignored after start")
)
