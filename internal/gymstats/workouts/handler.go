package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	GetDaily(ctx context.Context, userID int64, date time.Time) (*DailyWorkout, error)
	AddExercise(ctx context.Context, userID int64, date time.Time, newExercise NewExercise) (*Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID int64) error
	AddSet(ctx context.Context, userID, exerciseID int64, newSet NewSet) (*Set, error)
	UpdateSet(ctx context.Context, userID, setID int64, update SetUpdate) (*Set, error)
	DeleteSet(ctx context.Context, userID, setID int64) error
}

type changeNotifier interface {
	NotifyRowChange(userID int64, table, action string, rowID int64)
}

type DeleteResponse struct {
	DeletedID int64 `json:"deletedId"`
}

type Handler struct {
	repo           workoutsRepo
	notifier       changeNotifier
	metricsManager *metrics.Manager
}

func NewHandler(repo workoutsRepo, notifier changeNotifier, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		notifier:       notifier,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/workouts/{date}", handler.HandleGetDaily).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/workouts/{date}/exercises", handler.HandleAddExercise).Methods("POST", "OPTIONS").Name("add-exercise")
	r.HandleFunc("/exercises/{id:[0-9]+}", handler.HandleDeleteExercise).Methods("DELETE", "OPTIONS").Name("delete-exercise")
	r.HandleFunc("/exercises/{id:[0-9]+}/sets", handler.HandleAddSet).Methods("POST", "OPTIONS").Name("add-set")
	r.HandleFunc("/sets/{id:[0-9]+}", handler.HandleUpdateSet).Methods("PATCH", "OPTIONS").Name("update-set")
	r.HandleFunc("/sets/{id:[0-9]+}", handler.HandleDeleteSet).Methods("DELETE", "OPTIONS").Name("delete-set")
}

func (handler *Handler) HandleGetDaily(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.getdaily")
	defer span.End()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	date, err := ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.GetDaily(ctx, userID, date)
	if err != nil {
		log.Errorf("failed to get workout [%s] for user %d: %s", date.Format(DateLayout), userID, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addexercise")
	defer span.End()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	date, err := ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var newExercise NewExercise
	if err := json.NewDecoder(r.Body).Decode(&newExercise); err != nil {
		log.Tracef("add exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	newExercise.Name = strings.TrimSpace(newExercise.Name)
	if newExercise.Name == "" {
		http.Error(w, "error, exercise name empty", http.StatusBadRequest)
		return
	}
	for _, s := range newExercise.Sets {
		if err := s.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	exercise, err := handler.repo.AddExercise(ctx, userID, date, newExercise)
	if err != nil {
		log.Errorf("failed to add exercise [%s] for user %d: %s", newExercise.Name, userID, err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterSetsAdded.Add(float64(len(exercise.Sets)))
	handler.notifier.NotifyRowChange(userID, "exercises", "INSERT", exercise.ID)

	pkg.WriteJSON(w, exercise, http.StatusCreated)
}

func (handler *Handler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteexercise")
	defer span.End()

	userID, exerciseID, ok := userAndPathID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.DeleteExercise(ctx, userID, exerciseID); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete exercise %d: %s", exerciseID, err)
		http.Error(w, "error, failed to delete exercise", http.StatusInternalServerError)
		return
	}

	handler.notifier.NotifyRowChange(userID, "exercises", "DELETE", exerciseID)
	pkg.WriteJSON(w, DeleteResponse{DeletedID: exerciseID}, http.StatusOK)
}

func (handler *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addset")
	defer span.End()

	userID, exerciseID, ok := userAndPathID(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var newSet NewSet
	if err := json.NewDecoder(r.Body).Decode(&newSet); err != nil {
		log.Tracef("add set, unmarshal json params: %s", err)
		http.Error(w, "add set failed", http.StatusBadRequest)
		return
	}
	if err := newSet.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	set, err := handler.repo.AddSet(ctx, userID, exerciseID, newSet)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to add set to exercise %d: %s", exerciseID, err)
		http.Error(w, "error, failed to add set", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterSetsAdded.Inc()
	handler.notifier.NotifyRowChange(userID, "sets", "INSERT", set.ID)

	pkg.WriteJSON(w, set, http.StatusCreated)
}

// HandleUpdateSet expects a body with exactly one of weight, reps or rpe.
func (handler *Handler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateset")
	defer span.End()

	userID, setID, ok := userAndPathID(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var body map[string]*float64
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Tracef("update set, unmarshal json params: %s", err)
		http.Error(w, "update set failed", http.StatusBadRequest)
		return
	}
	if len(body) != 1 {
		http.Error(w, "error, exactly one field must be updated", http.StatusBadRequest)
		return
	}

	var update SetUpdate
	for field, value := range body {
		update = SetUpdate{Field: SetField(field), Value: value}
	}
	if err := update.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	set, err := handler.repo.UpdateSet(ctx, userID, setID, update)
	if err != nil {
		if errors.Is(err, ErrSetNotFound) {
			http.Error(w, "set not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update set %d [%s]: %s", setID, update.Field, err)
		http.Error(w, "error, failed to update set", http.StatusInternalServerError)
		return
	}

	handler.notifier.NotifyRowChange(userID, "sets", "UPDATE", set.ID)
	pkg.WriteJSON(w, set, http.StatusOK)
}

func (handler *Handler) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteset")
	defer span.End()

	userID, setID, ok := userAndPathID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.DeleteSet(ctx, userID, setID); err != nil {
		if errors.Is(err, ErrSetNotFound) {
			http.Error(w, "set not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete set %d: %s", setID, err)
		http.Error(w, "error, failed to delete set", http.StatusInternalServerError)
		return
	}

	handler.notifier.NotifyRowChange(userID, "sets", "DELETE", setID)
	pkg.WriteJSON(w, DeleteResponse{DeletedID: setID}, http.StatusOK)
}

func userAndPathID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return 0, 0, false
	}

	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return 0, 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("error, id NaN: %s", idStr), http.StatusBadRequest)
		return 0, 0, false
	}
	return userID, id, true
}
