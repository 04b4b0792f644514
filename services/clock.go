package services

import "time"

// Clock is the single time source for scheduling decisions. Everything that
// compares timestamps takes a Clock so tests can pin the current time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
