/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "time"

const tickInterval = time.Second

// RoundTimer counts down whole seconds. It fires OnTick after every
// decrement and OnExpire exactly once when the count reaches zero, then
// stops itself. There is no pause: Start always resets the count.
type RoundTimer struct {
	sched Scheduler

	OnTick   func(remaining int)
	OnExpire func()

	remaining int
	running   bool
	gen       uint64
	task      Task
}

func NewRoundTimer(sched Scheduler) *RoundTimer {
	return &RoundTimer{sched: sched}
}

// Start (re)starts the countdown from seconds.
func (t *RoundTimer) Start(seconds int) {
	t.Stop()

	t.remaining = seconds
	t.running = true
	t.schedule()
}

// Stop halts the countdown. Calling it when not running is a no-op.
func (t *RoundTimer) Stop() {
	t.gen++
	t.running = false
	if t.task != nil {
		t.task.Stop()
		t.task = nil
	}
}

func (t *RoundTimer) Running() bool {
	return t.running
}

func (t *RoundTimer) Remaining() int {
	return t.remaining
}

func (t *RoundTimer) schedule() {
	gen := t.gen
	t.task = t.sched.AfterFunc(tickInterval, func() {
		t.tick(gen)
	})
}

func (t *RoundTimer) tick(gen uint64) {
	// A tick queued before Stop or a restart belongs to a stale countdown.
	if gen != t.gen || !t.running {
		return
	}

	t.task = nil
	if t.remaining > 0 {
		t.remaining--
	}

	if t.OnTick != nil {
		t.OnTick(t.remaining)
		if gen != t.gen {
			return
		}
	}

	if t.remaining > 0 {
		t.schedule()
		return
	}

	t.Stop()
	if t.OnExpire != nil {
		t.OnExpire()
	}
}
