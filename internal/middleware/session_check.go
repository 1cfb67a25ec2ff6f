package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/2beens/fittrack/internal/session"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=session_check_mocks_test.go -package=middleware

type sessionChecker interface {
	Current(ctx context.Context) (*session.User, bool, error)
}

type SessionCheckMiddlewareHandler struct {
	sessions             sessionChecker
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewSessionCheckMiddlewareHandler(sessions sessionChecker) *SessionCheckMiddlewareHandler {
	return &SessionCheckMiddlewareHandler{
		sessions: sessions,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,
			"/session": true,
		},
		allowedPathsPrefixes: []string{
			"/session/",
		},
	}
}

func (h *SessionCheckMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SessionCheck answers 401 on every route but the session and ping ones
// while nobody is logged in.
func (h *SessionCheckMiddlewareHandler) SessionCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.session")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			_, loggedIn, err := h.sessions.Current(ctx)
			if err != nil {
				log.Errorf("[failed session check] => %s: %s", r.URL.Path, err)
				pkg.WriteJSONError(w, http.StatusInternalServerError, "session check failed")
				span.SetStatus(codes.Error, "check-session-err")
				span.RecordError(err)
				return
			}
			if !loggedIn {
				log.Tracef("[no session] [session middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, http.StatusUnauthorized, session.ErrNoSession.Error())
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
