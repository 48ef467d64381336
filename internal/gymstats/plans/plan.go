package plans

import (
	"errors"
	"fmt"
	"strings"
)

// DaysInWeek rows are indexed Monday (0) to Sunday (6).
const DaysInWeek = 7

var (
	ErrPlanNotFound = errors.New("workout plan not found")
	ErrRowNotFound  = errors.New("workout plan row not found")
	ErrInvalidRow   = errors.New("invalid workout plan row")
)

type Plan struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

type Row struct {
	ID           int64    `json:"id"`
	PlanID       int64    `json:"planId"`
	Day          int      `json:"day"`
	ExerciseName string   `json:"exerciseName"`
	Sets         *int     `json:"sets"`
	Reps         *int     `json:"reps"`
	Weight       *float64 `json:"weight"`
	Position     int      `json:"position"`
}

// IsNew reports whether the row was never stored.
func (r Row) IsNew() bool {
	return r.ID == 0
}

func (r Row) Validate() error {
	if r.PlanID <= 0 {
		return fmt.Errorf("%w: plan id missing", ErrInvalidRow)
	}
	if r.Day < 0 || r.Day >= DaysInWeek {
		return fmt.Errorf("%w: day must be between 0 and 6", ErrInvalidRow)
	}
	if strings.TrimSpace(r.ExerciseName) == "" {
		return fmt.Errorf("%w: exercise name empty", ErrInvalidRow)
	}
	if r.Sets != nil && *r.Sets < 0 {
		return fmt.Errorf("%w: sets must not be negative", ErrInvalidRow)
	}
	if r.Reps != nil && *r.Reps < 0 {
		return fmt.Errorf("%w: reps must not be negative", ErrInvalidRow)
	}
	if r.Weight != nil && *r.Weight < 0 {
		return fmt.Errorf("%w: weight must not be negative", ErrInvalidRow)
	}
	return nil
}
