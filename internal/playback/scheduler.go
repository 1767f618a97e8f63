package playback

import "time"

// Timer is a pending delayed task.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Implementations must allow the task to be cancelled.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WallClock schedules on real timers.
func WallClock() Scheduler {
	return wallScheduler{}
}
