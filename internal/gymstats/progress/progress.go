package progress

import "time"

// Comparison holds a metric for the current period and the one before it.
type Comparison struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

// Change is the percent change from the previous to the current period.
func (c Comparison) Change() float64 {
	return PercentChange(c.Previous, c.Current)
}

type Summary struct {
	WeeklyVolume    Comparison `json:"weeklyVolume"`
	WeeklyRPE       Comparison `json:"weeklyRpe"`
	MonthlySessions Comparison `json:"monthlySessions"`
}

// PercentChange returns 0 when both values are zero and 100 when growing from zero.
func PercentChange(previous, current float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date time.Time) time.Time {
	day := truncateToDay(date)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns the first day of the month containing date.
func MonthStart(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func truncateToDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}
