// Package daylog keeps the exercises and sets logged for one calendar day and
// syncs them with the backend.
package daylog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/gymstats/workouts"
	"github.com/2beens/fittrack/internal/rowref"
	"github.com/2beens/fittrack/internal/sdk"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=daylog_mocks_test.go -package=daylog_test

var (
	ErrNoDate           = errors.New("no date loaded")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrSetNotFound      = errors.New("set not found")
	ErrExerciseSaved    = errors.New("exercise already saved")
	ErrExerciseNotSaved = errors.New("exercise not saved yet")
	ErrEmptyName        = errors.New("exercise name is empty")
	ErrNotAddingSet     = errors.New("not adding a set")
)

type workoutStore interface {
	GetWorkout(ctx context.Context, date string) (*workouts.DailyWorkout, error)
	AddExercise(ctx context.Context, date string, exercise workouts.NewExercise) (*workouts.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID int64) error
	AddSet(ctx context.Context, exerciseID int64, set workouts.NewSet) (*workouts.Set, error)
	UpdateSet(ctx context.Context, setID int64, field workouts.SetField, value *float64) (*workouts.Set, error)
	DeleteSet(ctx context.Context, setID int64) error
}

// addSetMode tracks the single set being composed.
type addSetMode struct {
	exercise rowref.Ref
	set      rowref.Ref
}

type Log struct {
	store workoutStore
	loc   *time.Location

	mu        sync.Mutex
	date      string
	exercises []Exercise
	adding    *addSetMode
	temp      TempValues

	listenersMu    sync.Mutex
	listeners      map[int]func()
	nextListenerID int
}

// New creates an empty log. Dates are normalized in loc, time.Local when nil.
func New(store workoutStore, loc *time.Location) *Log {
	if loc == nil {
		loc = time.Local
	}
	return &Log{
		store:     store,
		loc:       loc,
		listeners: map[int]func(){},
	}
}

// LoadForDate replaces the log with what is stored for the day of date.
// found is false when nothing is stored, which is not an error.
func (l *Log) LoadForDate(ctx context.Context, date time.Time) (found bool, err error) {
	normalized := NormalizeDate(date, l.loc)

	workout, err := l.store.GetWorkout(ctx, normalized)
	if err != nil && !sdk.IsNotFound(err) {
		return false, fmt.Errorf("get workout [%s]: %w", normalized, err)
	}

	var exercises []Exercise
	if workout != nil {
		for _, e := range workout.Exercises {
			exercises = append(exercises, exerciseFromServer(e))
		}
	}

	l.mu.Lock()
	l.date = normalized
	l.exercises = exercises
	l.adding = nil
	l.temp = TempValues{}
	l.mu.Unlock()

	l.notify()
	return len(exercises) > 0, nil
}

// Date returns the normalized date of the loaded day, empty before the first load.
func (l *Log) Date() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.date
}

// Exercises returns a copy of the log.
func (l *Log) Exercises() []Exercise {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Exercise, len(l.exercises))
	for i, e := range l.exercises {
		out[i] = e.clone()
	}
	return out
}

// StoredCount counts saved exercises only.
func (l *Log) StoredCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, e := range l.exercises {
		if !e.IsNew() {
			count++
		}
	}
	return count
}

// AddExercise appends an unsaved exercise with one blank set.
func (l *Log) AddExercise(name string) rowref.Ref {
	ex := Exercise{
		Ref:  rowref.Pending(),
		Name: strings.TrimSpace(name),
		Sets: []Set{{Ref: rowref.Pending()}},
	}

	l.mu.Lock()
	l.exercises = append(l.cloneExercisesLocked(), ex)
	l.mu.Unlock()

	l.notify()
	return ex.Ref
}

// RenameExercise changes the name of an unsaved exercise.
func (l *Log) RenameExercise(ref rowref.Ref, name string) error {
	l.mu.Lock()
	i := l.exerciseIndexLocked(ref)
	if i < 0 {
		l.mu.Unlock()
		return ErrExerciseNotFound
	}
	if !l.exercises[i].IsNew() {
		l.mu.Unlock()
		return ErrExerciseSaved
	}
	exercises := l.cloneExercisesLocked()
	exercises[i].Name = strings.TrimSpace(name)
	l.exercises = exercises
	l.mu.Unlock()

	l.notify()
	return nil
}

// AddDraftSet appends a blank set to an unsaved exercise.
func (l *Log) AddDraftSet(ref rowref.Ref) (rowref.Ref, error) {
	l.mu.Lock()
	i := l.exerciseIndexLocked(ref)
	if i < 0 {
		l.mu.Unlock()
		return rowref.Ref{}, ErrExerciseNotFound
	}
	if !l.exercises[i].IsNew() {
		l.mu.Unlock()
		return rowref.Ref{}, ErrExerciseSaved
	}
	set := Set{Ref: rowref.Pending()}
	exercises := l.cloneExercisesLocked()
	exercises[i].Sets = append(exercises[i].Sets, set)
	l.exercises = exercises
	l.mu.Unlock()

	l.notify()
	return set.Ref, nil
}

// UploadExercise saves an unsaved exercise with its non blank sets and puts
// the stored exercise in its place.
func (l *Log) UploadExercise(ctx context.Context, ref rowref.Ref) error {
	l.mu.Lock()
	date := l.date
	i := l.exerciseIndexLocked(ref)
	if i < 0 {
		l.mu.Unlock()
		return ErrExerciseNotFound
	}
	ex := l.exercises[i].clone()
	l.mu.Unlock()

	if date == "" {
		return ErrNoDate
	}
	if !ex.IsNew() {
		return ErrExerciseSaved
	}
	if ex.Name == "" {
		return ErrEmptyName
	}

	newExercise := workouts.NewExercise{Name: ex.Name}
	for _, s := range ex.Sets {
		if s.isBlank() {
			continue
		}
		newSet := workouts.NewSet{Weight: s.Weight, Reps: s.Reps, RPE: s.RPE}
		if err := newSet.Validate(); err != nil {
			return err
		}
		newExercise.Sets = append(newExercise.Sets, newSet)
	}

	stored, err := l.store.AddExercise(ctx, date, newExercise)
	if err != nil {
		return fmt.Errorf("upload exercise [%s]: %w", ex.Name, err)
	}

	l.mu.Lock()
	if i := l.exerciseIndexLocked(ref); i >= 0 {
		exercises := l.cloneExercisesLocked()
		exercises[i] = exerciseFromServer(*stored)
		l.exercises = exercises
	}
	l.mu.Unlock()

	l.notify()
	return nil
}

// BeginAddSet puts a pending set at the end of a saved exercise. A pending set
// added to any exercise before is removed first.
func (l *Log) BeginAddSet(ref rowref.Ref) error {
	l.mu.Lock()
	i := l.exerciseIndexLocked(ref)
	if i < 0 {
		l.mu.Unlock()
		return ErrExerciseNotFound
	}
	if l.exercises[i].IsNew() {
		l.mu.Unlock()
		return ErrExerciseNotSaved
	}

	l.stripAddSetLocked()
	set := Set{Ref: rowref.Pending()}
	exercises := l.cloneExercisesLocked()
	exercises[i].Sets = append(exercises[i].Sets, set)
	l.exercises = exercises
	l.adding = &addSetMode{exercise: ref, set: set.Ref}
	l.temp = TempValues{}
	l.mu.Unlock()

	l.notify()
	return nil
}

// AddingSetTo returns the exercise a set is being added to, if any.
func (l *Log) AddingSetTo() (rowref.Ref, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.adding == nil {
		return rowref.Ref{}, false
	}
	return l.adding.exercise, true
}

func (l *Log) SetTempValues(v TempValues) error {
	l.mu.Lock()
	if l.adding == nil {
		l.mu.Unlock()
		return ErrNotAddingSet
	}
	l.temp = v
	l.mu.Unlock()

	l.notify()
	return nil
}

func (l *Log) TempValues() TempValues {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.temp
}

// CommitAddSet stores the composed set and swaps it in for the pending one.
// On failure the add mode stays on so the user can retry or cancel.
func (l *Log) CommitAddSet(ctx context.Context) error {
	l.mu.Lock()
	if l.adding == nil {
		l.mu.Unlock()
		return ErrNotAddingSet
	}
	adding := *l.adding
	newSet := l.temp.newSet()
	l.mu.Unlock()

	if err := newSet.Validate(); err != nil {
		return err
	}
	exerciseID, _ := adding.exercise.ServerID()

	stored, err := l.store.AddSet(ctx, exerciseID, newSet)
	if err != nil {
		return fmt.Errorf("add set to exercise %d: %w", exerciseID, err)
	}

	l.mu.Lock()
	exercises := l.cloneExercisesLocked()
	if ei := indexOfExercise(exercises, adding.exercise); ei >= 0 {
		if si := indexOfSet(exercises[ei].Sets, adding.set); si >= 0 {
			exercises[ei].Sets[si] = setFromServer(*stored)
		} else {
			exercises[ei].Sets = append(exercises[ei].Sets, setFromServer(*stored))
		}
	}
	l.exercises = exercises
	if l.adding != nil && l.adding.set == adding.set {
		l.adding = nil
		l.temp = TempValues{}
	}
	l.mu.Unlock()

	l.notify()
	return nil
}

// CancelAddSet removes the pending set and clears the temp values. Without an
// add in progress it does nothing.
func (l *Log) CancelAddSet() {
	l.mu.Lock()
	if l.adding == nil {
		l.mu.Unlock()
		return
	}
	l.stripAddSetLocked()
	l.mu.Unlock()

	l.notify()
}

func (l *Log) stripAddSetLocked() {
	if l.adding == nil {
		return
	}
	exercises := l.cloneExercisesLocked()
	if ei := indexOfExercise(exercises, l.adding.exercise); ei >= 0 {
		sets := exercises[ei].Sets[:0:0]
		for _, s := range exercises[ei].Sets {
			if s.Ref != l.adding.set {
				sets = append(sets, s)
			}
		}
		exercises[ei].Sets = sets
	}
	l.exercises = exercises
	l.adding = nil
	l.temp = TempValues{}
}

// EditSet changes a single field. Saved sets are updated on the backend and
// then replaced by the stored set; sets of unsaved exercises change locally.
func (l *Log) EditSet(ctx context.Context, setRef rowref.Ref, field workouts.SetField, value *float64) error {
	update := workouts.SetUpdate{Field: field, Value: value}
	if err := update.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	ei, si := l.setIndexLocked(setRef)
	if ei < 0 {
		l.mu.Unlock()
		return ErrSetNotFound
	}
	if l.adding != nil && l.adding.set == setRef {
		l.mu.Unlock()
		return fmt.Errorf("%w: use temp values for the set being added", ErrSetNotFound)
	}

	if setRef.IsPending() {
		exercises := l.cloneExercisesLocked()
		exercises[ei].Sets[si] = applyField(exercises[ei].Sets[si], field, value)
		l.exercises = exercises
		l.mu.Unlock()
		l.notify()
		return nil
	}
	l.mu.Unlock()

	setID, _ := setRef.ServerID()
	stored, err := l.store.UpdateSet(ctx, setID, field, value)
	if err != nil {
		return fmt.Errorf("update set %d [%s]: %w", setID, field, err)
	}

	l.mu.Lock()
	if ei, si := l.setIndexLocked(setRef); ei >= 0 {
		exercises := l.cloneExercisesLocked()
		exercises[ei].Sets[si] = setFromServer(*stored)
		l.exercises = exercises
	}
	l.mu.Unlock()

	l.notify()
	return nil
}

// DeleteSet removes a set, from the backend first when it is saved.
func (l *Log) DeleteSet(ctx context.Context, setRef rowref.Ref) error {
	l.mu.Lock()
	ei, _ := l.setIndexLocked(setRef)
	if ei < 0 {
		l.mu.Unlock()
		return ErrSetNotFound
	}
	if l.adding != nil && l.adding.set == setRef {
		l.stripAddSetLocked()
		l.mu.Unlock()
		l.notify()
		return nil
	}
	l.mu.Unlock()

	if setID, persisted := setRef.ServerID(); persisted {
		if err := l.store.DeleteSet(ctx, setID); err != nil {
			return fmt.Errorf("delete set %d: %w", setID, err)
		}
	}

	l.mu.Lock()
	if ei, si := l.setIndexLocked(setRef); ei >= 0 {
		exercises := l.cloneExercisesLocked()
		exercises[ei].Sets = append(exercises[ei].Sets[:si:si], exercises[ei].Sets[si+1:]...)
		l.exercises = exercises
	}
	l.mu.Unlock()

	l.notify()
	return nil
}

// DeleteExercise removes an exercise with its sets, from the backend first when it is saved.
func (l *Log) DeleteExercise(ctx context.Context, ref rowref.Ref) error {
	if ref.IsPending() {
		return l.CancelExercise(ref)
	}

	l.mu.Lock()
	found := l.exerciseIndexLocked(ref) >= 0
	l.mu.Unlock()
	if !found {
		return ErrExerciseNotFound
	}

	exerciseID, _ := ref.ServerID()
	if err := l.store.DeleteExercise(ctx, exerciseID); err != nil {
		return fmt.Errorf("delete exercise %d: %w", exerciseID, err)
	}

	l.removeExercise(ref)
	return nil
}

// CancelExercise drops an unsaved exercise, nothing is sent to the backend.
func (l *Log) CancelExercise(ref rowref.Ref) error {
	if !ref.IsPending() {
		return ErrExerciseSaved
	}
	if !l.removeExercise(ref) {
		return ErrExerciseNotFound
	}
	return nil
}

func (l *Log) removeExercise(ref rowref.Ref) bool {
	l.mu.Lock()
	i := l.exerciseIndexLocked(ref)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	if l.adding != nil && l.adding.exercise == ref {
		l.adding = nil
		l.temp = TempValues{}
	}
	exercises := l.cloneExercisesLocked()
	l.exercises = append(exercises[:i:i], exercises[i+1:]...)
	l.mu.Unlock()

	l.notify()
	return true
}

// Subscribe registers fn to be called after every change and returns the func that removes it.
func (l *Log) Subscribe(fn func()) func() {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()
	id := l.nextListenerID
	l.nextListenerID++
	l.listeners[id] = fn
	return func() {
		l.listenersMu.Lock()
		defer l.listenersMu.Unlock()
		delete(l.listeners, id)
	}
}

func (l *Log) notify() {
	l.listenersMu.Lock()
	listeners := make([]func(), 0, len(l.listeners))
	for _, fn := range l.listeners {
		listeners = append(listeners, fn)
	}
	l.listenersMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// cloneExercisesLocked copies the exercises and their set slices, so that
// slices handed out before never change.
func (l *Log) cloneExercisesLocked() []Exercise {
	out := make([]Exercise, len(l.exercises))
	for i, e := range l.exercises {
		out[i] = e.clone()
	}
	return out
}

func (l *Log) exerciseIndexLocked(ref rowref.Ref) int {
	return indexOfExercise(l.exercises, ref)
}

func (l *Log) setIndexLocked(setRef rowref.Ref) (int, int) {
	for ei, e := range l.exercises {
		if si := indexOfSet(e.Sets, setRef); si >= 0 {
			return ei, si
		}
	}
	return -1, -1
}

func indexOfExercise(exercises []Exercise, ref rowref.Ref) int {
	for i, e := range exercises {
		if e.Ref == ref {
			return i
		}
	}
	return -1
}

func indexOfSet(sets []Set, ref rowref.Ref) int {
	for i, s := range sets {
		if s.Ref == ref {
			return i
		}
	}
	return -1
}

func applyField(s Set, field workouts.SetField, value *float64) Set {
	switch field {
	case workouts.SetFieldWeight:
		s.Weight = *value
	case workouts.SetFieldReps:
		s.Reps = int(*value)
	case workouts.SetFieldRPE:
		if value == nil {
			s.RPE = nil
		} else {
			rpe := *value
			s.RPE = &rpe
		}
	default:
		log.Warnf("daylog: unknown set field [%s]", field)
	}
	return s
}
