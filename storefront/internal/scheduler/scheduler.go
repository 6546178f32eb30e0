// Package scheduler runs cancellable repeating tasks. Components that tick
// (the OTP countdown, payment polling) take a Scheduler so tests can drive
// virtual time with ManualScheduler.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

type Task interface {
	// Cancel stops future runs. It is safe to call more than once and from
	// inside the task's own callback.
	Cancel()
}

type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
}

type TimeScheduler struct{}

func NewTimeScheduler() *TimeScheduler {
	return &TimeScheduler{}
}

type tickerTask struct {
	once sync.Once
	stop chan struct{}
}

func (t *tickerTask) Cancel() {
	t.once.Do(func() { close(t.stop) })
}

func (s *TimeScheduler) Every(interval time.Duration, fn func()) Task {
	task := &tickerTask{stop: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-task.stop:
				return
			case <-ticker.C:
				select {
				case <-task.stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return task
}

// ManualScheduler fires tasks only when Advance is called.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	tasks  map[int]*manualTask
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]*manualTask)}
}

type manualTask struct {
	id       int
	interval time.Duration
	next     time.Duration
	fn       func()
	owner    *ManualScheduler
}

func (t *manualTask) Cancel() {
	t.owner.mu.Lock()
	delete(t.owner.tasks, t.id)
	t.owner.mu.Unlock()
}

func (s *ManualScheduler) Every(interval time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	task := &manualTask{id: s.nextID, interval: interval, next: s.now + interval, fn: fn, owner: s}
	s.tasks[task.id] = task
	return task
}

// Active reports how many tasks are still scheduled.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Advance moves virtual time forward by d, running due callbacks in order.
// Callbacks run without the scheduler lock held.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		task := s.nextDue(target)
		if task == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = task.next
		task.next += task.interval
		fn := task.fn
		s.mu.Unlock()

		fn()
	}
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTask {
	due := make([]*manualTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		if task.next <= target {
			due = append(due, task)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].next == due[j].next {
			return due[i].id < due[j].id
		}
		return due[i].next < due[j].next
	})
	return due[0]
}
