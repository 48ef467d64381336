package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const setColumns = `s.id, s.exercise_id, s.weight, s.reps, s.rpe, s.position`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// GetDaily returns the workout of the given day, with no exercises when nothing was logged.
func (r *Repo) GetDaily(ctx context.Context, userID int64, date time.Time) (_ *DailyWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getdaily")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT e.id, e.name, e.position, s.id, s.weight, s.reps, s.rpe, s.position
			FROM workouts w
			JOIN exercises e ON e.workout_id = w.id
			LEFT JOIN sets s ON s.exercise_id = e.id
			WHERE w.user_id = $1 AND w.workout_date = $2
			ORDER BY e.position, e.id, s.position, s.id;`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily workout: %w", err)
	}
	defer rows.Close()

	workout := &DailyWorkout{
		Date:      date.Format(DateLayout),
		Exercises: []Exercise{},
	}
	for rows.Next() {
		var (
			ex                   Exercise
			setID                *int64
			setWeight            *float64
			setReps, setPosition *int
			setRPE               *float64
		)
		if err := rows.Scan(
			&ex.ID, &ex.Name, &ex.Position,
			&setID, &setWeight, &setReps, &setRPE, &setPosition,
		); err != nil {
			return nil, fmt.Errorf("scan daily workout row: %w", err)
		}

		last := len(workout.Exercises) - 1
		if last < 0 || workout.Exercises[last].ID != ex.ID {
			ex.Sets = []Set{}
			workout.Exercises = append(workout.Exercises, ex)
			last++
		}
		if setID == nil {
			continue
		}
		workout.Exercises[last].Sets = append(workout.Exercises[last].Sets, Set{
			ID:         *setID,
			ExerciseID: ex.ID,
			Weight:     *setWeight,
			Reps:       *setReps,
			RPE:        setRPE,
			Position:   *setPosition,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily workout rows: %w", err)
	}

	span.SetAttributes(attribute.Int("exercises.count", len(workout.Exercises)))
	return workout, nil
}

// AddExercise appends an exercise (and its sets) to the workout of the day, creating the workout if needed.
func (r *Repo) AddExercise(ctx context.Context, userID int64, date time.Time, newExercise NewExercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var workoutID int64
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO workouts (user_id, workout_date)
			VALUES ($1, $2)
			ON CONFLICT (user_id, workout_date) DO UPDATE SET workout_date = EXCLUDED.workout_date
			RETURNING id;`,
		userID, date,
	).Scan(&workoutID); err != nil {
		return nil, fmt.Errorf("upsert workout: %w", err)
	}

	ex := Exercise{
		Name: newExercise.Name,
		Sets: []Set{},
	}
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO exercises (workout_id, name, position)
			VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM exercises WHERE workout_id = $1))
			RETURNING id, position;`,
		workoutID, newExercise.Name,
	).Scan(&ex.ID, &ex.Position); err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	for i, newSet := range newExercise.Sets {
		s := Set{
			ExerciseID: ex.ID,
			Weight:     newSet.Weight,
			Reps:       newSet.Reps,
			RPE:        newSet.RPE,
			Position:   i,
		}
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO sets (exercise_id, weight, reps, rpe, position)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id;`,
			ex.ID, s.Weight, s.Reps, s.RPE, s.Position,
		).Scan(&s.ID); err != nil {
			return nil, fmt.Errorf("insert set %d: %w", i, err)
		}
		ex.Sets = append(ex.Sets, s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &ex, nil
}

func (r *Repo) DeleteExercise(ctx context.Context, userID, exerciseID int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("exercise.id", exerciseID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercises e
			USING workouts w
			WHERE e.id = $1 AND e.workout_id = w.id AND w.user_id = $2;`,
		exerciseID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *Repo) AddSet(ctx context.Context, userID, exerciseID int64, newSet NewSet) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("exercise.id", exerciseID))

	s, err := scanSet(r.db.QueryRow(
		ctx,
		`INSERT INTO sets (exercise_id, weight, reps, rpe, position)
			SELECT e.id, $3, $4, $5, (SELECT COALESCE(MAX(position) + 1, 0) FROM sets WHERE exercise_id = e.id)
			FROM exercises e
			JOIN workouts w ON w.id = e.workout_id
			WHERE e.id = $1 AND w.user_id = $2
			RETURNING id, exercise_id, weight, reps, rpe, position;`,
		exerciseID, userID, newSet.Weight, newSet.Reps, newSet.RPE,
	))
	if errors.Is(err, ErrSetNotFound) {
		return nil, ErrExerciseNotFound
	}
	return s, err
}

// UpdateSet changes a single column of the set, the other columns stay as they are.
func (r *Repo) UpdateSet(ctx context.Context, userID, setID int64, update SetUpdate) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("set.id", setID),
		attribute.String("set.field", string(update.Field)),
	)

	var value any
	var column string
	switch update.Field {
	case SetFieldWeight:
		column, value = "weight", *update.Value
	case SetFieldReps:
		column, value = "reps", int(*update.Value)
	case SetFieldRPE:
		column, value = "rpe", update.Value
	default:
		return nil, fmt.Errorf("%w: unknown field [%s]", ErrInvalidSet, update.Field)
	}

	return scanSet(r.db.QueryRow(
		ctx,
		`UPDATE sets s SET `+column+` = $1
			FROM exercises e, workouts w
			WHERE s.id = $2 AND e.id = s.exercise_id AND w.id = e.workout_id AND w.user_id = $3
			RETURNING `+setColumns+`;`,
		value, setID, userID,
	))
}

func (r *Repo) DeleteSet(ctx context.Context, userID, setID int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("set.id", setID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM sets s
			USING exercises e, workouts w
			WHERE s.id = $1 AND e.id = s.exercise_id AND w.id = e.workout_id AND w.user_id = $2;`,
		setID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}
	return nil
}

func scanSet(row pgx.Row) (*Set, error) {
	var s Set
	if err := row.Scan(&s.ID, &s.ExerciseID, &s.Weight, &s.Reps, &s.RPE, &s.Position); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	return &s, nil
}
