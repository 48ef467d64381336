package middleware

import (
	"net/http"
	"strings"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type tokenVerifier interface {
	VerifyAccessToken(token string) (int64, error)
}

type AuthMiddlewareHandler struct {
	anonKey       string
	tokenVerifier tokenVerifier
	// paths that need the api key but no signed in user
	publicPaths map[string]bool
	// paths that need neither, e.g. browser redirects from oauth providers
	keylessPaths map[string]bool
}

func NewAuthMiddlewareHandler(
	anonKey string,
	tokenVerifier tokenVerifier,
) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		anonKey:       anonKey,
		tokenVerifier: tokenVerifier,
		publicPaths: map[string]bool{
			"/auth/signup":    true,
			"/auth/token":     true,
			"/auth/authorize": true,
		},
		keylessPaths: map[string]bool{
			"/":              true,
			"/auth/callback": true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.keylessPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("apikey")
			if apiKey == "" {
				// websocket clients cannot set custom headers
				apiKey = r.URL.Query().Get("apikey")
			}
			if apiKey != h.anonKey {
				log.Tracef("[wrong api key] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "wrong-api-key")
				return
			}

			if h.publicPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			accessToken := bearerToken(r)
			if accessToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := h.tokenVerifier.VerifyAccessToken(accessToken)
			if err != nil {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-token")
				span.RecordError(err)
				return
			}

			span.SetAttributes(attribute.Int64("user.id", userID))
			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(WithUserID(ctx, userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}
