// Package system provides the real clock used outside tests.
package system

import "time"

// Clock implements crawler.Clock with the system time in UTC.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
