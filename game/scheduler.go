/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "time"

// Task is a pending scheduled callback.
type Task interface {
	Stop() bool
}

// Scheduler runs f once after d. Implementations used with an Engine must
// deliver f on the same goroutine that drives the engine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, f func()) Task

func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Task {
	return fn(d, f)
}
