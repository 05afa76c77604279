// ============================================================================
// gopool semaphore - Counting Semaphore
// ============================================================================
//
// Package: pkg/gopool
// File: semaphore.go
// Function: A non-negative counter with blocking wait/post, used exclusively
//   by Result for the one producer (worker) / one consumer (submitter)
//   result handoff.
//
// ============================================================================

package gopool

import "sync"

// semaphore is a classic counting semaphore: wait blocks while count == 0,
// post increments count and wakes a waiter. Safe under spurious wakeups
// because wait always re-checks the predicate in a loop.
type semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func newSemaphore(initial int) *semaphore {
	s := &semaphore{count: initial}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *semaphore) wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
}

func (s *semaphore) post() {
	s.mu.Lock()
	s.count++
	s.cond.Signal()
	s.mu.Unlock()
}
