package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/2beens/fittrack/internal/telemetry/metrics"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// PanicRecovery turns a handler panic into a 500 and reports it to sentry,
// tagged with the route and, when known, the signed in user.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				fields := log.Fields{"method": req.Method, "path": req.URL.Path}
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				if userID, ok := UserID(req.Context()); ok {
					fields["user"] = userID
					hub.Scope().SetUser(sentry.User{ID: fmt.Sprint(userID)})
				}
				hub.Recover(rec)

				log.WithFields(fields).Errorf("panic: %v\n%s", rec, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				http.Error(w, "internal error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, req)
		})
	}
}
