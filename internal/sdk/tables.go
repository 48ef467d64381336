package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/2beens/fittrack/internal/gymstats/plans"
	"github.com/2beens/fittrack/internal/gymstats/progress"
	"github.com/2beens/fittrack/internal/gymstats/workouts"
	"github.com/2beens/fittrack/internal/profile"
)

func (c *Client) GetProfile(ctx context.Context) (*profile.Profile, error) {
	var p profile.Profile
	if err := c.do(ctx, request{method: http.MethodGet, path: "/profile", authed: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) SaveProfile(ctx context.Context, p profile.Profile) (*profile.Profile, error) {
	var saved profile.Profile
	if err := c.do(ctx, request{method: http.MethodPut, path: "/profile", body: p, authed: true}, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetWorkout takes the date as a plain day or a normalized ISO timestamp.
func (c *Client) GetWorkout(ctx context.Context, date string) (*workouts.DailyWorkout, error) {
	var workout workouts.DailyWorkout
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/workouts/" + url.PathEscape(date),
		authed: true,
	}, &workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

func (c *Client) AddExercise(ctx context.Context, date string, exercise workouts.NewExercise) (*workouts.Exercise, error) {
	var added workouts.Exercise
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/workouts/" + url.PathEscape(date) + "/exercises",
		body:   exercise,
		authed: true,
	}, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

func (c *Client) DeleteExercise(ctx context.Context, exerciseID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/exercises/%d", exerciseID),
		authed: true,
	}, nil)
}

func (c *Client) AddSet(ctx context.Context, exerciseID int64, set workouts.NewSet) (*workouts.Set, error) {
	var added workouts.Set
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/exercises/%d/sets", exerciseID),
		body:   set,
		authed: true,
	}, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateSet changes one field of a set. A nil value clears rpe.
func (c *Client) UpdateSet(ctx context.Context, setID int64, field workouts.SetField, value *float64) (*workouts.Set, error) {
	var updated workouts.Set
	if err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/sets/%d", setID),
		body:   map[string]*float64{string(field): value},
		authed: true,
	}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteSet(ctx context.Context, setID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/sets/%d", setID),
		authed: true,
	}, nil)
}

func (c *Client) GetPlan(ctx context.Context) (*plans.Plan, error) {
	var plan plans.Plan
	if err := c.do(ctx, request{method: http.MethodGet, path: "/plans", authed: true}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreatePlan returns the existing plan when the user already has one.
func (c *Client) CreatePlan(ctx context.Context, name string) (*plans.Plan, error) {
	var plan plans.Plan
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/plans",
		body:   map[string]string{"name": name},
		authed: true,
	}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) UpsertPlanRow(ctx context.Context, row plans.Row) (*plans.Row, error) {
	var saved plans.Row
	if err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/plans/rows",
		body:   row,
		authed: true,
	}, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeletePlanRow(ctx context.Context, rowID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/plans/rows/%d", rowID),
		authed: true,
	}, nil)
}

func (c *Client) DeletePlan(ctx context.Context, planID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/plans/%d", planID),
		authed: true,
	}, nil)
}

func (c *Client) GetProgress(ctx context.Context, date string) (*progress.Summary, error) {
	var summary progress.Summary
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/progress",
		query:  url.Values{"date": {date}},
		authed: true,
	}, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) SuggestExercises(ctx context.Context, query string, limit int) ([]string, error) {
	var names []string
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/exercises/suggest",
		query:  url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}},
		authed: true,
	}, &names); err != nil {
		return nil, err
	}
	return names, nil
}
