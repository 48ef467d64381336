package planbuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/2beens/fittrack/internal/gymstats/plans"
	"github.com/2beens/fittrack/internal/rowref"
)

var (
	ErrInvalidDay   = errors.New("day must be between 0 and 6")
	ErrRowIndex     = errors.New("row index out of range")
	ErrUnknownField = errors.New("unknown row field")
	ErrInvalidValue = errors.New("invalid row value")
)

type Field string

const (
	FieldExerciseName Field = "exerciseName"
	FieldSets         Field = "sets"
	FieldReps         Field = "reps"
	FieldWeight       Field = "weight"
)

type Row struct {
	Ref          rowref.Ref
	ExerciseName string
	Sets         *int
	Reps         *int
	Weight       *float64
}

func blankRow() Row {
	return Row{Ref: rowref.Pending()}
}

func rowFromPlan(r plans.Row) Row {
	return Row{
		Ref:          rowref.Persisted(r.ID),
		ExerciseName: r.ExerciseName,
		Sets:         r.Sets,
		Reps:         r.Reps,
		Weight:       r.Weight,
	}
}

// IsNew reports whether the row was never saved.
func (r Row) IsNew() bool {
	return r.Ref.IsPending()
}

func (r Row) IsBlank() bool {
	return strings.TrimSpace(r.ExerciseName) == ""
}

func (r Row) toPlanRow(planID int64, day int) plans.Row {
	id, _ := r.Ref.ServerID()
	return plans.Row{
		ID:           id,
		PlanID:       planID,
		Day:          day,
		ExerciseName: strings.TrimSpace(r.ExerciseName),
		Sets:         r.Sets,
		Reps:         r.Reps,
		Weight:       r.Weight,
	}
}

// with returns a copy of the row with the field set from its text form.
// An empty value clears the numeric fields.
func (r Row) with(field Field, value string) (Row, error) {
	value = strings.TrimSpace(value)
	switch field {
	case FieldExerciseName:
		r.ExerciseName = value
	case FieldSets, FieldReps:
		var n *int
		if value != "" {
			parsed, err := strconv.Atoi(value)
			if err != nil || parsed < 0 {
				return r, fmt.Errorf("%w: %s [%s]", ErrInvalidValue, field, value)
			}
			n = &parsed
		}
		if field == FieldSets {
			r.Sets = n
		} else {
			r.Reps = n
		}
	case FieldWeight:
		r.Weight = nil
		if value != "" {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil || parsed < 0 {
				return r, fmt.Errorf("%w: %s [%s]", ErrInvalidValue, field, value)
			}
			r.Weight = &parsed
		}
	default:
		return r, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return r, nil
}
