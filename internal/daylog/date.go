package daylog

import "time"

const isoLayout = "2006-01-02T15:04:05.000Z"

// NormalizeDate returns the local calendar day of t, in loc, as a UTC midnight
// ISO timestamp. Two instants on the same local day normalize identically.
func NormalizeDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(isoLayout)
}

// NormalizeDateOffset is NormalizeDate for a browser style offset, i.e. the
// minutes to add to local time to get UTC (negative east of Greenwich).
func NormalizeDateOffset(t time.Time, offsetMinutes int) string {
	return NormalizeDate(t, time.FixedZone("", -offsetMinutes*60))
}
