package plans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=plans_mocks_test.go -package=plans_test

type plansRepo interface {
	Get(ctx context.Context, userID int64) (*Plan, error)
	Create(ctx context.Context, userID int64, name string) (*Plan, error)
	UpsertRow(ctx context.Context, userID int64, row Row) (*Row, error)
	DeleteRow(ctx context.Context, userID, rowID int64) error
	Delete(ctx context.Context, userID, planID int64) error
}

type changeNotifier interface {
	NotifyRowChange(userID int64, table, action string, rowID int64)
}

type createPlanRequest struct {
	Name string `json:"name"`
}

type DeleteResponse struct {
	DeletedID int64 `json:"deletedId"`
}

type Handler struct {
	repo           plansRepo
	notifier       changeNotifier
	metricsManager *metrics.Manager
}

func NewHandler(repo plansRepo, notifier changeNotifier, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		notifier:       notifier,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/plans", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-plan")
	r.HandleFunc("/plans", handler.HandleCreate).Methods("POST", "OPTIONS").Name("create-plan")
	r.HandleFunc("/plans/rows", handler.HandleUpsertRow).Methods("PUT", "OPTIONS").Name("upsert-plan-row")
	r.HandleFunc("/plans/rows/{id:[0-9]+}", handler.HandleDeleteRow).Methods("DELETE", "OPTIONS").Name("delete-plan-row")
	r.HandleFunc("/plans/{id:[0-9]+}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-plan")
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.get")
	defer span.End()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	plan, err := handler.repo.Get(ctx, userID)
	if errors.Is(err, ErrPlanNotFound) {
		http.Error(w, "workout plan not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to get plan for user %d: %s", userID, err)
		http.Error(w, "failed to get workout plan", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, plan, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.create")
	defer span.End()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("create plan, unmarshal json params: %s", err)
		http.Error(w, "create plan failed", http.StatusBadRequest)
		return
	}

	plan, err := handler.repo.Create(ctx, userID, strings.TrimSpace(req.Name))
	if err != nil {
		log.Errorf("failed to create plan for user %d: %s", userID, err)
		http.Error(w, "error, failed to create workout plan", http.StatusInternalServerError)
		return
	}

	handler.notifier.NotifyRowChange(userID, "workout_plans", "INSERT", plan.ID)
	pkg.WriteJSON(w, plan, http.StatusOK)
}

func (handler *Handler) HandleUpsertRow(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.upsertrow")
	defer span.End()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var row Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		log.Tracef("upsert plan row, unmarshal json params: %s", err)
		http.Error(w, "save plan row failed", http.StatusBadRequest)
		return
	}
	row.ExerciseName = strings.TrimSpace(row.ExerciseName)
	if err := row.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	action := "UPDATE"
	if row.IsNew() {
		action = "INSERT"
	}

	saved, err := handler.repo.UpsertRow(ctx, userID, row)
	switch {
	case errors.Is(err, ErrPlanNotFound):
		http.Error(w, "workout plan not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrRowNotFound):
		http.Error(w, "workout plan row not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to save plan row for user %d: %s", userID, err)
		http.Error(w, "error, failed to save plan row", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterPlanRowsSaved.Inc()
	handler.notifier.NotifyRowChange(userID, "workout_plan_rows", action, saved.ID)
	pkg.WriteJSON(w, saved, http.StatusOK)
}

func (handler *Handler) HandleDeleteRow(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.deleterow")
	defer span.End()

	userID, rowID, ok := userAndPathID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.DeleteRow(ctx, userID, rowID); err != nil {
		if errors.Is(err, ErrRowNotFound) {
			http.Error(w, "workout plan row not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete plan row %d: %s", rowID, err)
		http.Error(w, "error, failed to delete plan row", http.StatusInternalServerError)
		return
	}

	handler.notifier.NotifyRowChange(userID, "workout_plan_rows", "DELETE", rowID)
	pkg.WriteJSON(w, DeleteResponse{DeletedID: rowID}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.delete")
	defer span.End()

	userID, planID, ok := userAndPathID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, userID, planID); err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete plan %d: %s", planID, err)
		http.Error(w, "error, failed to delete workout plan", http.StatusInternalServerError)
		return
	}

	handler.notifier.NotifyRowChange(userID, "workout_plans", "DELETE", planID)
	pkg.WriteJSON(w, DeleteResponse{DeletedID: planID}, http.StatusOK)
}

func userAndPathID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return 0, 0, false
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return 0, 0, false
	}
	return userID, id, true
}
