// Package planbuilder keeps the client side state of a 7 day workout plan
// and syncs it with the backend row by row.
package planbuilder

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/2beens/fittrack/internal/gymstats/plans"
	"github.com/2beens/fittrack/internal/rowref"
	"github.com/2beens/fittrack/internal/sdk"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=$GOFILE -destination=planbuilder_mocks_test.go -package=planbuilder_test

type planStore interface {
	GetPlan(ctx context.Context) (*plans.Plan, error)
	CreatePlan(ctx context.Context, name string) (*plans.Plan, error)
	UpsertPlanRow(ctx context.Context, row plans.Row) (*plans.Row, error)
	DeletePlanRow(ctx context.Context, rowID int64) error
	DeletePlan(ctx context.Context, planID int64) error
}

type SaveResult struct {
	Saved  int
	Failed int
	// Err combines the errors of all failed rows.
	Err error
}

func (r SaveResult) Success() bool {
	return r.Failed == 0
}

type Builder struct {
	store       planStore
	workoutName string

	mu     sync.Mutex
	planID int64
	day    int
	days   [plans.DaysInWeek][]Row

	listenersMu    sync.Mutex
	listeners      map[int]func()
	nextListenerID int
}

func New(store planStore, workoutName string) *Builder {
	b := &Builder{
		store:       store,
		workoutName: workoutName,
		listeners:   map[int]func(){},
	}
	b.resetDaysLocked()
	return b
}

// Load replaces the local state with the stored plan. A user without a plan
// gets blank days.
func (b *Builder) Load(ctx context.Context) error {
	plan, err := b.store.GetPlan(ctx)
	if err != nil && !sdk.IsNotFound(err) {
		return fmt.Errorf("get plan: %w", err)
	}

	b.mu.Lock()
	b.resetDaysLocked()
	b.planID = 0
	if plan != nil {
		b.planID = plan.ID
		if plan.Name != "" {
			b.workoutName = plan.Name
		}
		b.fillDaysLocked(plan.Rows)
	}
	b.mu.Unlock()

	b.notify()
	return nil
}

func (b *Builder) fillDaysLocked(rows []plans.Row) {
	sorted := make([]plans.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Day != sorted[j].Day {
			return sorted[i].Day < sorted[j].Day
		}
		return sorted[i].Position < sorted[j].Position
	})

	var byDay [plans.DaysInWeek][]Row
	for _, r := range sorted {
		if r.Day < 0 || r.Day >= plans.DaysInWeek {
			log.Warnf("plan row %d has invalid day %d, skipping", r.ID, r.Day)
			continue
		}
		byDay[r.Day] = append(byDay[r.Day], rowFromPlan(r))
	}
	for day := range byDay {
		if len(byDay[day]) == 0 {
			byDay[day] = []Row{blankRow()}
		}
	}
	b.days = byDay
}

func (b *Builder) resetDaysLocked() {
	for day := range b.days {
		b.days[day] = []Row{blankRow()}
	}
}

func (b *Builder) WorkoutName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.workoutName
}

// Day returns the currently selected day, 0 is Monday.
func (b *Builder) Day() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.day
}

// SelectDay moves the selected day by delta, wrapping around the week.
func (b *Builder) SelectDay(delta int) int {
	b.mu.Lock()
	b.day = ((b.day+delta)%plans.DaysInWeek + plans.DaysInWeek) % plans.DaysInWeek
	day := b.day
	b.mu.Unlock()

	b.notify()
	return day
}

func (b *Builder) NextDay() int {
	return b.SelectDay(1)
}

func (b *Builder) PrevDay() int {
	return b.SelectDay(-1)
}

// Rows returns a copy of the rows of the given day.
func (b *Builder) Rows(day int) ([]Row, error) {
	if err := checkDay(day); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rows := make([]Row, len(b.days[day]))
	copy(rows, b.days[day])
	return rows, nil
}

// StoredCount counts saved rows across the whole week.
func (b *Builder) StoredCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storedCountLocked()
}

func (b *Builder) storedCountLocked() int {
	count := 0
	for _, rows := range b.days {
		for _, r := range rows {
			if !r.IsNew() {
				count++
			}
		}
	}
	return count
}

func (b *Builder) HasStoredWorkout() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.planID != 0 && b.storedCountLocked() > 0
}

// AddRow appends a blank row to the day. Nothing is sent to the backend.
func (b *Builder) AddRow(day int) (rowref.Ref, error) {
	if err := checkDay(day); err != nil {
		return rowref.Ref{}, err
	}

	row := blankRow()
	b.mu.Lock()
	rows := make([]Row, 0, len(b.days[day])+1)
	rows = append(rows, b.days[day]...)
	b.days[day] = append(rows, row)
	b.mu.Unlock()

	b.notify()
	return row.Ref, nil
}

// EditRow sets one field of a row from its text form. The day gets a new row slice,
// rows handed out earlier are never changed.
func (b *Builder) EditRow(day, index int, field Field, value string) error {
	if err := checkDay(day); err != nil {
		return err
	}

	b.mu.Lock()
	current := b.days[day]
	if index < 0 || index >= len(current) {
		b.mu.Unlock()
		return fmt.Errorf("%w: day %d, index %d", ErrRowIndex, day, index)
	}
	edited, err := current[index].with(field, value)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	rows := make([]Row, len(current))
	copy(rows, current)
	rows[index] = edited
	b.days[day] = rows
	b.mu.Unlock()

	b.notify()
	return nil
}

// DeleteRow removes a row. A saved row is deleted on the backend first and stays
// in place if that fails. A day never ends up without rows.
func (b *Builder) DeleteRow(ctx context.Context, day, index int) error {
	row, err := b.rowAt(day, index)
	if err != nil {
		return err
	}

	if id, persisted := row.Ref.ServerID(); persisted {
		if err := b.store.DeletePlanRow(ctx, id); err != nil {
			return fmt.Errorf("delete plan row %d: %w", id, err)
		}
	}

	b.mu.Lock()
	rows := make([]Row, 0, len(b.days[day]))
	for _, r := range b.days[day] {
		if r.Ref != row.Ref {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		rows = append(rows, blankRow())
	}
	b.days[day] = rows
	b.mu.Unlock()

	b.notify()
	return nil
}

// SaveRow upserts a single row and marks it as saved.
func (b *Builder) SaveRow(ctx context.Context, day, index int) error {
	row, err := b.rowAt(day, index)
	if err != nil {
		return err
	}

	planID, err := b.ensurePlan(ctx)
	if err != nil {
		return err
	}

	saved, err := b.store.UpsertPlanRow(ctx, row.toPlanRow(planID, day))
	if err != nil {
		return fmt.Errorf("save plan row %s: %w", row.Ref, err)
	}

	b.mu.Lock()
	b.reconcileLocked(day, row.Ref, *saved)
	b.mu.Unlock()

	b.notify()
	return nil
}

// SaveAll upserts every non blank row of the day concurrently. Rows fail
// independently and successful ones stay saved.
func (b *Builder) SaveAll(ctx context.Context, day int) SaveResult {
	rows, err := b.Rows(day)
	if err != nil {
		return SaveResult{Err: err}
	}

	toSave := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !r.IsBlank() {
			toSave = append(toSave, r)
		}
	}
	if len(toSave) == 0 {
		return SaveResult{}
	}

	planID, err := b.ensurePlan(ctx)
	if err != nil {
		return SaveResult{Failed: len(toSave), Err: err}
	}

	type rowResult struct {
		ref   rowref.Ref
		saved *plans.Row
		err   error
	}
	results := make([]rowResult, len(toSave))

	var wg sync.WaitGroup
	for i, r := range toSave {
		wg.Add(1)
		go func(i int, r Row) {
			defer wg.Done()
			saved, err := b.store.UpsertPlanRow(ctx, r.toPlanRow(planID, day))
			results[i] = rowResult{ref: r.Ref, saved: saved, err: err}
		}(i, r)
	}
	wg.Wait()

	var result SaveResult
	b.mu.Lock()
	for _, res := range results {
		if res.err != nil {
			log.Debugf("save plan row %s failed: %s", res.ref, res.err)
			result.Failed++
			result.Err = multierr.Append(result.Err, fmt.Errorf("save plan row %s: %w", res.ref, res.err))
			continue
		}
		result.Saved++
		b.reconcileLocked(day, res.ref, *res.saved)
	}
	b.mu.Unlock()

	b.notify()
	return result
}

// DeletePlan removes the whole stored plan and resets every day.
func (b *Builder) DeletePlan(ctx context.Context) error {
	plan, err := b.store.GetPlan(ctx)
	if err != nil && !sdk.IsNotFound(err) {
		return fmt.Errorf("get plan: %w", err)
	}
	if plan != nil {
		if err := b.store.DeletePlan(ctx, plan.ID); err != nil {
			return fmt.Errorf("delete plan %d: %w", plan.ID, err)
		}
	}

	b.mu.Lock()
	b.planID = 0
	b.resetDaysLocked()
	b.mu.Unlock()

	b.notify()
	return nil
}

// Subscribe registers fn to be called after every change and returns the func that removes it.
func (b *Builder) Subscribe(fn func()) func() {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	id := b.nextListenerID
	b.nextListenerID++
	b.listeners[id] = fn
	return func() {
		b.listenersMu.Lock()
		defer b.listenersMu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *Builder) notify() {
	b.listenersMu.Lock()
	listeners := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.listenersMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (b *Builder) rowAt(day, index int) (Row, error) {
	if err := checkDay(day); err != nil {
		return Row{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.days[day]) {
		return Row{}, fmt.Errorf("%w: day %d, index %d", ErrRowIndex, day, index)
	}
	return b.days[day][index], nil
}

// ensurePlan returns the id of the user's plan, creating it on first save.
func (b *Builder) ensurePlan(ctx context.Context) (int64, error) {
	b.mu.Lock()
	planID, name := b.planID, b.workoutName
	b.mu.Unlock()
	if planID != 0 {
		return planID, nil
	}

	plan, err := b.store.CreatePlan(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("create plan: %w", err)
	}

	b.mu.Lock()
	b.planID = plan.ID
	b.mu.Unlock()
	return plan.ID, nil
}

// reconcileLocked swaps the row matching ref for the saved one. A row deleted
// meanwhile is left out.
func (b *Builder) reconcileLocked(day int, ref rowref.Ref, saved plans.Row) {
	current := b.days[day]
	for i, r := range current {
		if r.Ref != ref {
			continue
		}
		rows := make([]Row, len(current))
		copy(rows, current)
		rows[i] = rowFromPlan(saved)
		b.days[day] = rows
		return
	}
}

func checkDay(day int) error {
	if day < 0 || day >= plans.DaysInWeek {
		return fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}
	return nil
}
