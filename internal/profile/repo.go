package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
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

func (r *Repo) Get(ctx context.Context, userID int64) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	var p Profile
	var goals []string
	var units string
	if err := r.db.QueryRow(
		ctx,
		`SELECT full_name, age, height_cm, height_ft, height_in, weight, gender, goals, units
			FROM profiles
			WHERE user_id = $1;`,
		userID,
	).Scan(
		&p.FullName, &p.Age, &p.Height.CM, &p.Height.Feet, &p.Height.Inches,
		&p.Weight, &p.Gender, &goals, &units,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p.Goals = Goals(goals)
	p.Units = Units(units)
	return &p, nil
}

// Save upserts the whole profile and marks the user onboarding as completed.
func (r *Repo) Save(ctx context.Context, userID int64, p Profile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// no-op if already committed
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(
		ctx,
		`INSERT INTO profiles (user_id, full_name, age, height_cm, height_ft, height_in, weight, gender, goals, units, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			ON CONFLICT (user_id) DO UPDATE SET
				full_name = EXCLUDED.full_name,
				age = EXCLUDED.age,
				height_cm = EXCLUDED.height_cm,
				height_ft = EXCLUDED.height_ft,
				height_in = EXCLUDED.height_in,
				weight = EXCLUDED.weight,
				gender = EXCLUDED.gender,
				goals = EXCLUDED.goals,
				units = EXCLUDED.units,
				updated_at = NOW();`,
		userID, p.FullName, p.Age, p.Height.CM, p.Height.Feet, p.Height.Inches,
		p.Weight, p.Gender, []string(p.Goals), string(p.Units),
	); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	if _, err := tx.Exec(
		ctx,
		`UPDATE users SET onboarding_completed = TRUE, full_name = $2 WHERE id = $1;`,
		userID, p.FullName,
	); err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}

	return tx.Commit(ctx)
}
