package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidUnits    = errors.New("units must be metric or imperial")
)

type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

func (u Units) IsValid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// GoalOther is the goal tag that may come with a free text goal.
const GoalOther = "other"

// Height holds both representations, only the one matching the profile units is kept on save.
type Height struct {
	CM     *float64 `json:"cm,omitempty"`
	Feet   *int     `json:"feet,omitempty"`
	Inches *float64 `json:"inches,omitempty"`
}

// Normalize clears the representation not selected by units.
func (h Height) Normalize(units Units) Height {
	switch units {
	case UnitsMetric:
		return Height{CM: h.CM}
	case UnitsImperial:
		return Height{Feet: h.Feet, Inches: h.Inches}
	default:
		return h
	}
}

// Goals is a set of goal tags, kept sorted and without duplicates.
type Goals []string

func NewGoals(tags ...string) Goals {
	return Goals(nil).Add(tags...)
}

func (g Goals) Add(tags ...string) Goals {
	set := make(map[string]struct{}, len(g)+len(tags))
	for _, t := range g {
		set[t] = struct{}{}
	}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}

	out := make(Goals, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (g Goals) Remove(tag string) Goals {
	out := make(Goals, 0, len(g))
	for _, t := range g {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

func (g Goals) Has(tag string) bool {
	for _, t := range g {
		if t == tag {
			return true
		}
	}
	return false
}

// WithOther adds the "other" tag together with its free text companion.
func (g Goals) WithOther(text string) Goals {
	return g.Add(GoalOther, text)
}

type Profile struct {
	FullName string   `json:"fullName"`
	Age      *int     `json:"age,omitempty"`
	Height   Height   `json:"height"`
	Weight   *float64 `json:"weight,omitempty"`
	Gender   string   `json:"gender"`
	Goals    Goals    `json:"goals"`
	Units    Units    `json:"units"`
}

// Normalize returns the profile in the shape it is persisted in.
func (p Profile) Normalize() Profile {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Height = p.Height.Normalize(p.Units)
	p.Goals = NewGoals(p.Goals...)
	return p
}

func (p Profile) Validate() error {
	if !p.Units.IsValid() {
		return fmt.Errorf("%w: got [%s]", ErrInvalidUnits, p.Units)
	}
	if p.Age != nil && (*p.Age <= 0 || *p.Age > 150) {
		return fmt.Errorf("invalid age: %d", *p.Age)
	}
	if p.Weight != nil && *p.Weight <= 0 {
		return fmt.Errorf("invalid weight: %v", *p.Weight)
	}
	return nil
}
