package workouts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrSetNotFound      = errors.New("set not found")
	ErrInvalidSet       = errors.New("invalid set")
	ErrInvalidDate      = errors.New("invalid date")
)

type Set struct {
	ID         int64    `json:"id"`
	ExerciseID int64    `json:"exerciseId"`
	Weight     float64  `json:"weight"`
	Reps       int      `json:"reps"`
	RPE        *float64 `json:"rpe"`
	Position   int      `json:"position"`
}

type Exercise struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Sets     []Set  `json:"sets"`
}

type DailyWorkout struct {
	Date      string     `json:"date"`
	Exercises []Exercise `json:"exercises"`
}

type NewSet struct {
	Weight float64  `json:"weight"`
	Reps   int      `json:"reps"`
	RPE    *float64 `json:"rpe"`
}

func (s NewSet) Validate() error {
	return validateSetValues(s.Weight, s.Reps, s.RPE)
}

type NewExercise struct {
	Name string   `json:"name"`
	Sets []NewSet `json:"sets"`
}

// SetField is one of the set columns that can be updated on its own.
type SetField string

const (
	SetFieldWeight SetField = "weight"
	SetFieldReps   SetField = "reps"
	SetFieldRPE    SetField = "rpe"
)

// SetUpdate changes a single set field. A nil Value is only allowed for rpe and clears it.
type SetUpdate struct {
	Field SetField
	Value *float64
}

func (u SetUpdate) Validate() error {
	switch u.Field {
	case SetFieldWeight:
		if u.Value == nil {
			return fmt.Errorf("%w: weight cannot be null", ErrInvalidSet)
		}
		return validateSetValues(*u.Value, 0, nil)
	case SetFieldReps:
		if u.Value == nil {
			return fmt.Errorf("%w: reps cannot be null", ErrInvalidSet)
		}
		if *u.Value != float64(int(*u.Value)) {
			return fmt.Errorf("%w: reps must be a whole number", ErrInvalidSet)
		}
		return validateSetValues(0, int(*u.Value), nil)
	case SetFieldRPE:
		return validateSetValues(0, 0, u.Value)
	default:
		return fmt.Errorf("%w: unknown field [%s]", ErrInvalidSet, u.Field)
	}
}

func validateSetValues(weight float64, reps int, rpe *float64) error {
	if weight < 0 {
		return fmt.Errorf("%w: weight must not be negative", ErrInvalidSet)
	}
	if reps < 0 {
		return fmt.Errorf("%w: reps must not be negative", ErrInvalidSet)
	}
	if rpe != nil && (*rpe < 1 || *rpe > 10) {
		return fmt.Errorf("%w: rpe must be between 1 and 10", ErrInvalidSet)
	}
	return nil
}

// ParseDate accepts a plain date or a normalized ISO timestamp and returns the calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	d, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return d, nil
}
