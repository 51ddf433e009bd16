package detection

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration renders d as "H Hours MM Minutes S.SS Seconds", dropping
// leading zero units.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	m := math.Floor(secs / 60)
	s := secs - 60*m
	h := math.Floor(m / 60)
	m -= 60 * h

	switch {
	case h > 0:
		return fmt.Sprintf("%d Hours %02d Minutes %02.2f Seconds", int(h), int(m), s)
	case m > 0:
		return fmt.Sprintf("%2d Minutes %02.2f Seconds", int(m), s)
	default:
		return fmt.Sprintf("%2.2f Seconds", s)
	}
}
