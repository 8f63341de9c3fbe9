package notify

import "time"

// Timer is a one-shot timer that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock arms timers. Banner callbacks run on the clock's goroutine.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock uses time.AfterFunc.
func RealClock() Clock { return realClock{} }
