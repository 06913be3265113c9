package service

import "time"

// Clock supplies "now" so timing-sensitive logic is testable. All
// comparisons in this package are done in UTC.
type Clock interface {
	Now() time.Time
}

type utcClock struct{}

func (utcClock) Now() time.Time {
	return time.Now().UTC()
}
