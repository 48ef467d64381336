package daylog

import (
	"github.com/2beens/fittrack/internal/gymstats/workouts"
	"github.com/2beens/fittrack/internal/rowref"
)

type Set struct {
	Ref    rowref.Ref
	Weight float64
	Reps   int
	RPE    *float64
}

// IsNew reports whether the set is the pending one, values are never looked at.
func (s Set) IsNew() bool {
	return s.Ref.IsPending()
}

func (s Set) isBlank() bool {
	return s.Weight == 0 && s.Reps == 0 && s.RPE == nil
}

type Exercise struct {
	Ref  rowref.Ref
	Name string
	Sets []Set
}

func (e Exercise) IsNew() bool {
	return e.Ref.IsPending()
}

func (e Exercise) clone() Exercise {
	sets := make([]Set, len(e.Sets))
	copy(sets, e.Sets)
	e.Sets = sets
	return e
}

// TempValues are the values of a set being composed, before it is committed.
type TempValues struct {
	Weight float64
	Reps   int
	RPE    *float64
}

func (v TempValues) newSet() workouts.NewSet {
	return workouts.NewSet{Weight: v.Weight, Reps: v.Reps, RPE: v.RPE}
}

func setFromServer(s workouts.Set) Set {
	return Set{
		Ref:    rowref.Persisted(s.ID),
		Weight: s.Weight,
		Reps:   s.Reps,
		RPE:    s.RPE,
	}
}

func exerciseFromServer(e workouts.Exercise) Exercise {
	sets := make([]Set, 0, len(e.Sets))
	for _, s := range e.Sets {
		sets = append(sets, setFromServer(s))
	}
	return Exercise{
		Ref:  rowref.Persisted(e.ID),
		Name: e.Name,
		Sets: sets,
	}
}
