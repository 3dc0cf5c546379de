package report

import (
	"fmt"
	"math"
	"time"

	"storemon/app/internal/database"
	"storemon/app/internal/models"
)

// trailingWindows are the three lookback periods ending at the snapshot
var trailingWindows = [3]time.Duration{
	time.Hour,
	24 * time.Hour,
	7 * 24 * time.Hour,
}

// StoreMetricsFor computes one store's uptime/downtime totals over the three
// trailing windows, restricted to the store's business hours in its own
// timezone. snapshot is the global maximum sample timestamp and acts as "now".
//
// Samples are read from one hour before the week horizon so the hour window
// has pre-horizon coverage. A store with no samples in range yields an
// all-zero row.
func StoreMetricsFor(db *database.DB, storeID string, snapshot time.Time, defaultTZ string) (*models.StoreMetrics, error) {
	horizonStart := snapshot.Add(-7 * 24 * time.Hour)

	tzStr, err := db.TimezoneForStore(storeID)
	if err != nil {
		return nil, err
	}
	if tzStr == "" {
		tzStr = defaultTZ
	}
	loc, err := time.LoadLocation(tzStr)
	if err != nil {
		return nil, fmt.Errorf("store %s: invalid timezone %q: %w", storeID, tzStr, err)
	}

	rules, err := db.BusinessHoursForStore(storeID)
	if err != nil {
		return nil, err
	}

	samples, err := db.SamplesSince(storeID, horizonStart.Add(-time.Hour))
	if err != nil {
		return nil, err
	}

	row := &models.StoreMetrics{StoreID: storeID}
	if len(samples) == 0 {
		return row, nil
	}

	bizIntervals, err := BusinessIntervals(rules, loc, horizonStart, snapshot)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", storeID, err)
	}

	// Triple intersection: every (sample interval x business interval x
	// trailing window) combination contributes its own overlap. Partial
	// overlaps across multiple business intervals for one sample all count.
	var up, down [3]float64
	for _, si := range StatusIntervals(samples, snapshot) {
		for _, biz := range bizIntervals {
			for w, dur := range trailingWindows {
				clampStart := maxTime(biz.Start, snapshot.Add(-dur))
				clampEnd := minTime(biz.End, snapshot)
				secs := overlapSeconds(si.Start, si.End, clampStart, clampEnd)
				if si.Status == models.StatusActive {
					up[w] += secs
				} else {
					down[w] += secs
				}
			}
		}
	}

	// Hour window reported in minutes, day and week in hours.
	// Rounding is half-away-from-zero (math.Round), applied once here.
	row.UptimeLastHour = int(math.Round(up[0] / 60))
	row.UptimeLastDay = int(math.Round(up[1] / 3600))
	row.UptimeLastWeek = int(math.Round(up[2] / 3600))
	row.DowntimeLastHour = int(math.Round(down[0] / 60))
	row.DowntimeLastDay = int(math.Round(down[1] / 3600))
	row.DowntimeLastWeek = int(math.Round(down[2] / 3600))
	return row, nil
}
