package support

import "time"

// Clock returns now() in UTC, defaulting to the wall clock.
func Clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
