package service

import "time"

// Clock supplies "now"; services default to UTC wall time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
