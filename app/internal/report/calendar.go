package report

import (
	"fmt"
	"time"

	"storemon/app/internal/models"
)

// localClock is a naive local time of day
type localClock struct {
	hour, min, sec int
}

func (c localClock) before(o localClock) bool {
	if c.hour != o.hour {
		return c.hour < o.hour
	}
	if c.min != o.min {
		return c.min < o.min
	}
	return c.sec < o.sec
}

// parseLocalTime parses "HH:MM:SS" (or "HH:MM") as stored in business_hours
func parseLocalTime(s string) (localClock, error) {
	var c localClock
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &c.hour, &c.min, &c.sec); err != nil {
		c.sec = 0
		if _, err := fmt.Sscanf(s, "%d:%d", &c.hour, &c.min); err != nil {
			return localClock{}, fmt.Errorf("invalid local time %q", s)
		}
	}
	if c.hour < 0 || c.hour > 23 || c.min < 0 || c.min > 59 || c.sec < 0 || c.sec > 59 {
		return localClock{}, fmt.Errorf("invalid local time %q", s)
	}
	return c, nil
}

// mondayWeekday converts time.Weekday (Sunday=0) to the 0=Monday..6=Sunday
// numbering used by business_hours rows.
func mondayWeekday(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// utcDate truncates a timestamp to its UTC calendar date
func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BusinessIntervals resolves a store's weekly business-hour rules into
// concrete UTC open intervals covering [horizonStart, horizonEnd].
//
// A store with no rules is always open: the whole horizon is one interval.
// Otherwise the horizon is walked one day at a time; for each step the
// open/close decision is made in the store's local time. A rule whose end
// clock is earlier than its start clock spans local midnight into the next
// day. Rules with a missing start or end contribute nothing for that day.
// When several rules share a day of week, the last one wins.
func BusinessIntervals(rules []models.BusinessHourRule, loc *time.Location, horizonStart, horizonEnd time.Time) ([]Interval, error) {
	if len(rules) == 0 {
		return []Interval{{Start: horizonStart, End: horizonEnd}}, nil
	}

	byDay := make(map[int]models.BusinessHourRule, len(rules))
	for _, r := range rules {
		byDay[r.DayOfWeek] = r
	}

	var out []Interval
	endDate := utcDate(horizonEnd)
	for cur := horizonStart; !utcDate(cur).After(endDate); cur = cur.Add(24 * time.Hour) {
		local := cur.In(loc)
		rule, ok := byDay[mondayWeekday(local.Weekday())]
		if !ok || rule.StartTimeLocal == nil || rule.EndTimeLocal == nil {
			continue
		}

		startClock, err := parseLocalTime(*rule.StartTimeLocal)
		if err != nil {
			return nil, err
		}
		endClock, err := parseLocalTime(*rule.EndTimeLocal)
		if err != nil {
			return nil, err
		}

		y, m, d := local.Date()
		start := time.Date(y, m, d, startClock.hour, startClock.min, startClock.sec, 0, loc)
		end := time.Date(y, m, d, endClock.hour, endClock.min, endClock.sec, 0, loc)
		if endClock.before(startClock) {
			// Window spans local midnight into the following day
			end = end.AddDate(0, 0, 1)
		}

		out = append(out, Interval{Start: start.UTC(), End: end.UTC()})
	}
	return out, nil
}
