package progress

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=progress_mocks_test.go -package=progress_test

type progressRepo interface {
	Summary(ctx context.Context, userID int64, date time.Time) (*Summary, error)
}

type Handler struct {
	repo progressRepo
	now  func() time.Time
}

func NewHandler(repo progressRepo) *Handler {
	return &Handler{
		repo: repo,
		now:  time.Now,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/progress", handler.HandleSummary).Methods("GET", "OPTIONS").Name("progress")
}

// HandleSummary uses today when the date query param is missing.
func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.summary")
	defer span.End()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	date := handler.now().UTC()
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		if len(dateParam) > len(time.DateOnly) {
			dateParam = dateParam[:len(time.DateOnly)]
		}
		parsed, err := time.Parse(time.DateOnly, dateParam)
		if err != nil {
			http.Error(w, "error, invalid date", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	summary, err := handler.repo.Summary(ctx, userID, truncateToDay(date))
	if err != nil {
		log.Errorf("failed to get progress summary for user %d: %s", userID, err)
		http.Error(w, "failed to get progress", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, summary, http.StatusOK)
}
