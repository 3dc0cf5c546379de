package report

import (
	"time"

	"storemon/app/internal/models"
)

// Interval is an absolute UTC time range
type Interval struct {
	Start time.Time
	End   time.Time
}

// StatusInterval is a time range during which one observed status held
type StatusInterval struct {
	Start  time.Time
	End    time.Time
	Status models.Status
}

// overlapSeconds returns the length in seconds of the intersection of
// [aStart, aEnd] and [bStart, bEnd]. Disjoint or degenerate ranges yield 0.
func overlapSeconds(aStart, aEnd, bStart, bEnd time.Time) float64 {
	start := maxTime(aStart, bStart)
	end := minTime(aEnd, bEnd)
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Seconds()
}

// StatusIntervals turns a time-ordered sample sequence into contiguous
// intervals: each sample's status holds from its own timestamp until the next
// sample, and the final interval is clamped to the snapshot timestamp.
func StatusIntervals(samples []models.StatusSample, snapshot time.Time) []StatusInterval {
	out := make([]StatusInterval, 0, len(samples))
	for i, s := range samples {
		end := snapshot
		if i+1 < len(samples) {
			end = samples[i+1].TimestampUTC
		}
		out = append(out, StatusInterval{
			Start:  s.TimestampUTC,
			End:    end,
			Status: s.Status,
		})
	}
	return out
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
