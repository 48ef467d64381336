// Package dashboard turns the backend progress summary into the comparisons
// shown on the dashboard.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/gymstats/progress"
	"github.com/2beens/fittrack/internal/gymstats/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=dashboard_mocks_test.go -package=dashboard_test

const (
	NameWeeklyVolume    = "Weekly volume"
	NameWeeklyRPE       = "Weekly average RPE"
	NameMonthlySessions = "Monthly sessions"
)

type progressStore interface {
	GetProgress(ctx context.Context, date string) (*progress.Summary, error)
}

type Comparison struct {
	Name     string
	Current  float64
	Previous float64
	// Change is the percent change from Previous to Current.
	Change float64
}

func newComparison(name string, c progress.Comparison) Comparison {
	return Comparison{
		Name:     name,
		Current:  c.Current,
		Previous: c.Previous,
		Change:   c.Change(),
	}
}

type Dashboard struct {
	store progressStore
}

func New(store progressStore) *Dashboard {
	return &Dashboard{store: store}
}

// Load returns weekly volume, weekly RPE and monthly sessions for the period of date,
// each against the period before.
func (d *Dashboard) Load(ctx context.Context, date time.Time) ([]Comparison, error) {
	day := date.Format(workouts.DateLayout)
	summary, err := d.store.GetProgress(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("get progress [%s]: %w", day, err)
	}

	return []Comparison{
		newComparison(NameWeeklyVolume, summary.WeeklyVolume),
		newComparison(NameWeeklyRPE, summary.WeeklyRPE),
		newComparison(NameMonthlySessions, summary.MonthlySessions),
	}, nil
}
