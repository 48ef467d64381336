package suggestions

import (
	"net/http"
	"strconv"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// SetupRoutes must run before routes matching /exercises/{id}.
func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/exercises/suggest", handler.HandleSuggest).Methods("GET", "OPTIONS").Name("suggest-exercises")
}

func (handler *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.suggestions.suggest")
	defer span.End()

	limit := DefaultLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		var err error
		limit, err = strconv.Atoi(limitParam)
		if err != nil {
			http.Error(w, "error, limit NaN", http.StatusBadRequest)
			return
		}
	}

	names, err := handler.service.Suggest(ctx, r.URL.Query().Get("q"), limit)
	if err != nil {
		log.Errorf("failed to suggest exercises: %s", err)
		http.Error(w, "failed to get suggestions", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, names, http.StatusOK)
}
