package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const rowColumns = `r.id, r.plan_id, r.day, r.exercise_name, r.sets, r.reps, r.weight, r.position`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, userID int64) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	var plan Plan
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, name FROM workout_plans WHERE user_id = $1;`,
		userID,
	).Scan(&plan.ID, &plan.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+rowColumns+`
			FROM workout_plan_rows r
			WHERE r.plan_id = $1
			ORDER BY r.day, r.position, r.id;`,
		plan.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query plan rows: %w", err)
	}
	defer rows.Close()

	plan.Rows = []Row{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan row: %w", err)
		}
		plan.Rows = append(plan.Rows, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan rows: %w", err)
	}

	span.SetAttributes(attribute.Int("rows.count", len(plan.Rows)))
	return &plan, nil
}

// Create makes a new plan for the user, or returns the one the user already has.
func (r *Repo) Create(ctx context.Context, userID int64, name string) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO workout_plans (user_id, name)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO NOTHING;`,
		userID, name,
	); err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}

	return r.Get(ctx, userID)
}

// UpsertRow inserts a new row (ID 0) or updates an existing one of a plan owned by the user.
func (r *Repo) UpsertRow(ctx context.Context, userID int64, row Row) (_ *Row, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.upsertrow")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("plan.id", row.PlanID),
		attribute.Bool("row.new", row.IsNew()),
	)

	var saved *Row
	if row.IsNew() {
		saved, err = scanRow(r.db.QueryRow(
			ctx,
			`INSERT INTO workout_plan_rows AS r (plan_id, day, exercise_name, sets, reps, weight, position)
				SELECT p.id, $3, $4, $5, $6, $7,
					(SELECT COALESCE(MAX(position) + 1, 0) FROM workout_plan_rows WHERE plan_id = p.id AND day = $3)
				FROM workout_plans p
				WHERE p.id = $1 AND p.user_id = $2
				RETURNING `+rowColumns+`;`,
			row.PlanID, userID, row.Day, row.ExerciseName, row.Sets, row.Reps, row.Weight,
		))
		if errors.Is(err, ErrRowNotFound) {
			return nil, ErrPlanNotFound
		}
		return saved, err
	}

	return scanRow(r.db.QueryRow(
		ctx,
		`UPDATE workout_plan_rows r
			SET day = $3, exercise_name = $4, sets = $5, reps = $6, weight = $7
			FROM workout_plans p
			WHERE r.id = $1 AND p.id = r.plan_id AND p.user_id = $2
			RETURNING `+rowColumns+`;`,
		row.ID, userID, row.Day, row.ExerciseName, row.Sets, row.Reps, row.Weight,
	))
}

func (r *Repo) DeleteRow(ctx context.Context, userID, rowID int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.deleterow")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("row.id", rowID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout_plan_rows r
			USING workout_plans p
			WHERE r.id = $1 AND p.id = r.plan_id AND p.user_id = $2;`,
		rowID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRowNotFound
	}
	return nil
}

// Delete removes the plan together with all its rows.
func (r *Repo) Delete(ctx context.Context, userID, planID int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("plan.id", planID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout_plans WHERE id = $1 AND user_id = $2;`,
		planID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func scanRow(row pgx.Row) (*Row, error) {
	var r Row
	if err := row.Scan(
		&r.ID, &r.PlanID, &r.Day, &r.ExerciseName,
		&r.Sets, &r.Reps, &r.Weight, &r.Position,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRowNotFound
		}
		return nil, err
	}
	return &r, nil
}
