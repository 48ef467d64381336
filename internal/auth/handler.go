package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	authRouter := mainRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/signup", handler.HandleSignUp).Methods("POST", "OPTIONS").Name("signup")
	authRouter.HandleFunc("/token", handler.HandleToken).Methods("POST", "OPTIONS").Name("token")
	authRouter.HandleFunc("/authorize", handler.HandleAuthorize).Methods("GET", "OPTIONS").Name("authorize")
	authRouter.HandleFunc("/callback", handler.HandleCallback).Methods("GET", "OPTIONS").Name("callback")
	authRouter.HandleFunc("/user", handler.HandleGetUser).Methods("GET", "OPTIONS").Name("user")
	authRouter.HandleFunc("/logout", handler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")

	// rate limit the auth endpoints to prevent credentials guessing
	authRouter.Use(middleware.RateLimit(rateLimiter, "auth", allowedPerMin, metricsManager))
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type tokenRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthorizeResponse struct {
	URL string `json:"url"`
}

func (handler *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.signup")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("sign up, unmarshal json params: %s", err)
		http.Error(w, "sign up failed", http.StatusBadRequest)
		return
	}

	session, err := handler.service.SignUp(ctx, req.Email, req.Password, req.FullName)
	switch {
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword), errors.Is(err, pkg.ErrPasswordTooLong):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrEmailTaken):
		http.Error(w, "email already registered", http.StatusConflict)
		return
	case err != nil:
		log.Errorf("sign up failed: %s", err)
		http.Error(w, "sign up failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, session, http.StatusCreated)
}

// HandleToken serves both the password grant and the refresh token grant.
func (handler *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.token")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("token, unmarshal json params: %s", err)
		http.Error(w, "token request failed", http.StatusBadRequest)
		return
	}

	grantType := r.URL.Query().Get("grant_type")
	span.SetAttributes(attribute.String("grant_type", grantType))

	var session *Session
	var err error
	switch grantType {
	case "password":
		if req.Email == "" || req.Password == "" {
			http.Error(w, "error, email or password empty", http.StatusBadRequest)
			return
		}
		session, err = handler.service.SignInWithPassword(ctx, req.Email, req.Password)
	case "refresh_token":
		if req.RefreshToken == "" {
			http.Error(w, "error, refresh token empty", http.StatusBadRequest)
			return
		}
		session, err = handler.service.RefreshSession(ctx, req.RefreshToken)
	default:
		http.Error(w, "error, unsupported grant type", http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, ErrWrongCredentials):
		http.Error(w, "invalid login credentials", http.StatusBadRequest)
		return
	case errors.Is(err, ErrInvalidRefreshToken):
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	case err != nil:
		log.Errorf("token [%s] failed: %s", grantType, err)
		http.Error(w, "token request failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.authorize")
	defer span.End()

	provider := r.URL.Query().Get("provider")
	if provider == "" {
		http.Error(w, "error, provider empty", http.StatusBadRequest)
		return
	}

	url, err := handler.service.AuthorizeURL(ctx, provider)
	if errors.Is(err, ErrUnknownProvider) {
		http.Error(w, "error, unknown provider", http.StatusBadRequest)
		return
	} else if err != nil {
		log.Errorf("authorize [%s] failed: %s", provider, err)
		http.Error(w, "authorize failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, AuthorizeResponse{URL: url}, http.StatusOK)
}

func (handler *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.callback")
	defer span.End()

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		http.Error(w, "error, state or code empty", http.StatusBadRequest)
		return
	}

	session, err := handler.service.CompleteOAuth(ctx, state, code)
	if errors.Is(err, ErrInvalidOAuthState) {
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	} else if err != nil {
		log.Errorf("oauth callback failed: %s", err)
		http.Error(w, "oauth sign in failed", http.StatusBadGateway)
		return
	}

	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.user")
	defer span.End()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	identity, err := handler.service.GetUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("get user %d: %s", userID, err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, identity, http.StatusOK)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req logoutRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Tracef("logout, unmarshal json params: %s", err)
			http.Error(w, "logout failed", http.StatusBadRequest)
			return
		}
	}

	if err := handler.service.SignOut(ctx, userID, req.RefreshToken); err != nil {
		log.Errorf("logout user %d: %s", userID, err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
