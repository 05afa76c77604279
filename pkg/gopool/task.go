// ============================================================================
// gopool Task - Caller-Subclassable Unit of Work
// ============================================================================
//
// Package: pkg/gopool
// File: task.go
// Function: Defines the contract a caller fulfils to hand work to the Pool,
//   and the back-pointer wiring that links a Task to its Result.
//
// ============================================================================

package gopool

// Task is one unit of work. Callers implement Run; the Pool calls exec on a
// worker goroutine, which in turn calls Run and forwards its outcome to the
// bound Result.
type Task interface {
	// Run performs the caller's computation. It must be safe to invoke from
	// a worker goroutine and should not retain references to the Task
	// beyond its return.
	Run() (Value, error)

	// setResult wires the Task to the Result that will receive its output.
	// Called exactly once, by Submit, before the task is enqueued.
	setResult(r *Result)

	// exec is invoked by a worker. It calls Run and forwards the outcome
	// to the bound Result.
	exec()
}

// BaseTask is embedded by callers who subclass Task directly, mirroring the
// source's Task base class. Embedders must call Init(self) from their own
// constructor so exec() dispatches to the embedding type's Run override —
// Go has no virtual dispatch through embedding, so the self-reference is
// captured explicitly instead.
type BaseTask struct {
	result *Result
	self   Task
}

// Init records the concrete Task so BaseTask's exec can call its Run.
func (t *BaseTask) Init(self Task) {
	t.self = self
}

func (t *BaseTask) setResult(r *Result) {
	t.result = r
}

func (t *BaseTask) exec() {
	execTask(t.self, t.result)
}

// TaskFunc adapts a plain closure to the Task interface — the lighter-weight
// alternative to subclassing BaseTask, per spec.md §9's note that an
// equivalent design passes a callable of signature () -> (Value, error)
// directly.
type TaskFunc struct {
	BaseTask
	fn func() (Value, error)
}

// NewTaskFunc wraps fn as a Task.
func NewTaskFunc(fn func() (Value, error)) *TaskFunc {
	t := &TaskFunc{fn: fn}
	t.Init(t)
	return t
}

func (t *TaskFunc) Run() (Value, error) {
	return t.fn()
}

// execTask runs task.Run, recovering any panic, and forwards exactly one
// Value to result via setVal. This is the resolution of spec.md §9's open
// question: Get must never block forever because Run threw — here a panic
// is caught at the worker boundary and folded into the same error-Value
// path used for an ordinary returned error.
func execTask(task Task, result *Result) {
	if result == nil {
		return
	}

	v, err := runRecovered(task)
	if err != nil {
		result.setVal(NewValue[error](err))
		return
	}
	result.setVal(v)
}

func runRecovered(task Task) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{r}
		}
	}()
	return task.Run()
}

// panicError wraps a recovered panic value so it can travel through the
// same error channel as an ordinary Task failure.
type panicError struct {
	recovered any
}

func (p panicError) Error() string {
	return "gopool: task panicked: " + formatRecovered(p.recovered)
}

func formatRecovered(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "non-error panic value"
}
