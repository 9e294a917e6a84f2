package monitoring

import "time"

// UptimePolicy holds the rollup thresholds. Zero value gives the defaults.
type UptimePolicy struct {
	// DegradedFraction marks a day degraded when the fraction of degraded
	// checks strictly exceeds it. Default 0.10.
	DegradedFraction float64
}

func (p UptimePolicy) degradedFraction() float64 {
	if p.DegradedFraction <= 0 {
		return 0.10
	}
	return p.DegradedFraction
}

// Rollup aggregates checks into one status per calendar day for the last
// `days` days ending at now, oldest first. Days are resolved in now's
// location. The ordering is a strict priority: a single down check marks the
// whole day down, then the degraded fraction, then up. Days without checks
// are no-data.
func (p UptimePolicy) Rollup(checks []UptimeCheck, days int, now time.Time) []DayStatus {
	if days <= 0 {
		return nil
	}

	type dayCounts struct {
		total    int
		down     int
		degraded int
	}
	byDay := make(map[string]*dayCounts)
	for _, check := range checks {
		key := check.Timestamp.In(now.Location()).Format("2006-01-02")
		counts := byDay[key]
		if counts == nil {
			counts = &dayCounts{}
			byDay[key] = counts
		}
		counts.total++
		switch check.Status {
		case CheckDown:
			counts.down++
		case CheckDegraded:
			counts.degraded++
		}
	}

	threshold := p.degradedFraction()
	result := make([]DayStatus, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		counts := byDay[date]

		state := DayNoData
		switch {
		case counts == nil || counts.total == 0:
			state = DayNoData
		case counts.down > 0:
			state = DayDown
		case float64(counts.degraded)/float64(counts.total) > threshold:
			state = DayDegraded
		default:
			state = DayUp
		}

		result = append(result, DayStatus{Date: date, Status: state})
	}
	return result
}

// UptimePercent returns the fraction of up checks as a percentage. No checks
// means nothing observed down, reported as 100.
func UptimePercent(checks []UptimeCheck) float64 {
	if len(checks) == 0 {
		return 100
	}
	up := 0
	for _, check := range checks {
		if check.Status == CheckUp {
			up++
		}
	}
	return float64(up) / float64(len(checks)) * 100
}
