package ledger

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// TimerScheduler schedules callbacks on wall-clock timers.
type TimerScheduler struct {
	mu     sync.Mutex
	nextID int
	timers map[int]*time.Timer
}

// NewTimerScheduler creates a TimerScheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[int]*time.Timer)}
}

// After runs fn on its own goroutine once d has elapsed.
func (s *TimerScheduler) After(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
}

// Pending returns the number of callbacks that have not fired yet.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending callback.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// ManualScheduler is a deterministic Scheduler driven by Advance. It keeps
// its own virtual clock and never starts goroutines.
type ManualScheduler struct {
	mu      sync.Mutex
	elapsed time.Duration
	seq     int
	tasks   []manualTask
}

type manualTask struct {
	due time.Duration
	seq int
	fn  func()
}

// NewManualScheduler creates a ManualScheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// After queues fn to run once the virtual clock reaches now+d.
func (m *ManualScheduler) After(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.tasks = append(m.tasks, manualTask{due: m.elapsed + d, seq: m.seq, fn: fn})
}

// Advance moves the virtual clock forward by d and runs every task that
// became due, in due order. Returns the number of tasks run.
func (m *ManualScheduler) Advance(d time.Duration) int {
	m.mu.Lock()
	m.elapsed += d
	now := m.elapsed
	m.mu.Unlock()

	ran := 0
	for {
		task, ok := m.popDue(now)
		if !ok {
			return ran
		}
		task.fn()
		ran++
	}
}

// Pending returns the number of queued tasks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *ManualScheduler) popDue(now time.Duration) (manualTask, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due != m.tasks[j].due {
			return m.tasks[i].due < m.tasks[j].due
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})
	if len(m.tasks) == 0 || m.tasks[0].due > now {
		return manualTask{}, false
	}
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	return task, true
}
