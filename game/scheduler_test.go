package game

import (
	"sort"
	"time"
)

// manualScheduler is a Scheduler driven by Advance instead of the wall clock.
type manualScheduler struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due     time.Duration
	seq     int
	f       func()
	stopped bool
}

func (t *manualTask) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Task {
	s.seq++
	t := &manualTask{due: s.now + d, seq: s.seq, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward, running every task that becomes due in
// order, including tasks scheduled by earlier ones.
func (s *manualScheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		next := s.popDue(end)
		if next == nil {
			break
		}
		s.now = next.due
		next.f()
	}
	s.now = end
}

func (s *manualScheduler) popDue(end time.Duration) *manualTask {
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due == s.tasks[j].due {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due < s.tasks[j].due
	})
	for i, t := range s.tasks {
		if t.stopped {
			continue
		}
		if t.due > end {
			return nil
		}
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		t.stopped = true
		return t
	}
	return nil
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}
