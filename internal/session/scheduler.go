package session

import (
	"sync"
	"time"
)

// Timer is a cancellable scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d without blocking the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type wallScheduler struct{}

// WallScheduler schedules on real time.
func WallScheduler() Scheduler { return wallScheduler{} }

func (wallScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// ManualScheduler fires callbacks only when Advance moves its virtual clock past their
// due time. Callbacks run on the goroutine calling Advance.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	s    *ManualScheduler
	at   time.Duration
	fn   func()
	done bool
}

func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{s: m, at: m.now + d, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance moves virtual time forward and runs every callback that became due, in due order.
func (m *ManualScheduler) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now += d
	var due []*manualTask
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		switch {
		case t.done:
		case t.at <= m.now:
			t.done = true
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	m.tasks = kept
	m.mu.Unlock()

	for i := 1; i < len(due); i++ {
		for j := i; j > 0 && due[j].at < due[j-1].at; j-- {
			due[j], due[j-1] = due[j-1], due[j]
		}
	}
	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// Pending counts callbacks that are scheduled and not yet stopped or fired.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.done {
			n++
		}
	}
	return n
}
