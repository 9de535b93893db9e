package stream

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Stats is a snapshot of a session's counters.
type Stats struct {
	Sent    int
	Errors  int
	Elapsed time.Duration
}

// Rate is sends per second over Elapsed, with Elapsed rounded to a tenth of
// a second the same way String prints it. It is 0 when nothing was sent.
func (s Stats) Rate() float64 {
	secs := math.Round(s.Elapsed.Seconds()*10) / 10
	if s.Sent == 0 || secs <= 0 {
		return 0
	}
	return float64(s.Sent) / secs
}

func (s Stats) String() string {
	rate := "0"
	if r := s.Rate(); r > 0 {
		rate = strconv.FormatFloat(r, 'f', 1, 64)
	}
	return fmt.Sprintf("Stats: sent=%d errors=%d elapsed=%.1fs rate=%s/s",
		s.Sent, s.Errors, s.Elapsed.Seconds(), rate)
}
