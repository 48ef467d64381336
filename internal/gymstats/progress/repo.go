package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Summary aggregates the weeks (Monday start) and months around the reference date.
func (r *Repo) Summary(ctx context.Context, userID int64, date time.Time) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("date", date.Format(time.DateOnly)),
	)

	weekStart := WeekStart(date)
	prevWeekStart := weekStart.AddDate(0, 0, -7)
	nextWeekStart := weekStart.AddDate(0, 0, 7)

	summary := &Summary{}
	if err := r.db.QueryRow(
		ctx,
		`SELECT
				COALESCE(SUM(s.weight * s.reps) FILTER (WHERE w.workout_date >= $2), 0),
				COALESCE(SUM(s.weight * s.reps) FILTER (WHERE w.workout_date < $2), 0),
				COALESCE(AVG(s.rpe) FILTER (WHERE w.workout_date >= $2), 0),
				COALESCE(AVG(s.rpe) FILTER (WHERE w.workout_date < $2), 0)
			FROM workouts w
			JOIN exercises e ON e.workout_id = w.id
			JOIN sets s ON s.exercise_id = e.id
			WHERE w.user_id = $1 AND w.workout_date >= $3 AND w.workout_date < $4;`,
		userID, weekStart, prevWeekStart, nextWeekStart,
	).Scan(
		&summary.WeeklyVolume.Current, &summary.WeeklyVolume.Previous,
		&summary.WeeklyRPE.Current, &summary.WeeklyRPE.Previous,
	); err != nil {
		return nil, fmt.Errorf("weekly aggregates: %w", err)
	}

	monthStart := MonthStart(date)
	prevMonthStart := monthStart.AddDate(0, -1, 0)
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	var sessionsCurrent, sessionsPrevious int64
	if err := r.db.QueryRow(
		ctx,
		`SELECT
				COUNT(DISTINCT w.workout_date) FILTER (WHERE w.workout_date >= $2),
				COUNT(DISTINCT w.workout_date) FILTER (WHERE w.workout_date < $2)
			FROM workouts w
			WHERE w.user_id = $1 AND w.workout_date >= $3 AND w.workout_date < $4
				AND EXISTS (SELECT 1 FROM exercises e WHERE e.workout_id = w.id);`,
		userID, monthStart, prevMonthStart, nextMonthStart,
	).Scan(&sessionsCurrent, &sessionsPrevious); err != nil {
		return nil, fmt.Errorf("monthly sessions: %w", err)
	}
	summary.MonthlySessions = Comparison{
		Current:  float64(sessionsCurrent),
		Previous: float64(sessionsPrevious),
	}

	return summary, nil
}
