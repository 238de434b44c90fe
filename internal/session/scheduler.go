package session

import (
	"context"
	"sync"
)

// Loop is a Scheduler that runs steps on the goroutine calling Run.
type Loop struct {
	mu    sync.Mutex
	queue []func(context.Context)
	wake  chan struct{}
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Schedule queues step and wakes the loop.
func (l *Loop) Schedule(step func(context.Context)) {
	l.mu.Lock()
	l.queue = append(l.queue, step)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes queued steps until ctx is done, waiting for new work when the
// queue is empty. Context cancellation is observed between steps.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		step, ok := l.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.wake:
			}
			continue
		}
		step(ctx)
	}
}

// RunUntilIdle executes queued steps until the queue is empty.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		step, ok := l.pop()
		if !ok {
			return nil
		}
		step(ctx)
	}
}

func (l *Loop) pop() (func(context.Context), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	step := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return step, true
}

// ManualScheduler records scheduled steps and runs them only when asked.
type ManualScheduler struct {
	mu    sync.Mutex
	steps []func(context.Context)
}

// Schedule records step.
func (m *ManualScheduler) Schedule(step func(context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step)
}

// Pending reports the number of queued steps.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}

// Step runs the oldest queued step. It returns false when nothing was queued.
func (m *ManualScheduler) Step(ctx context.Context) bool {
	m.mu.Lock()
	if len(m.steps) == 0 {
		m.mu.Unlock()
		return false
	}
	step := m.steps[0]
	m.steps = m.steps[1:]
	m.mu.Unlock()
	step(ctx)
	return true
}

// Drain runs steps until none remain and returns how many ran.
func (m *ManualScheduler) Drain(ctx context.Context) int {
	n := 0
	for m.Step(ctx) {
		n++
	}
	return n
}
