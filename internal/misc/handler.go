package misc

import (
	"net/http"

	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
)

type Handler struct {
	versionInfo string
	login       http.HandlerFunc
}

type VersionResponse struct {
	Version string `json:"version"`
}

// NewHandler takes the login handler separately, so it can be rate limited
// without touching the rest of the session routes.
func NewHandler(versionInfo string, login http.HandlerFunc) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		login:       login,
	}
}

// SetupRoutes registers ping, version and login. A nil rateLimiter leaves
// login unlimited.
func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	loginAllowedPerMin int,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	var login http.Handler = handler.login
	if rateLimiter != nil {
		login = middleware.RateLimit(rateLimiter, "login", loginAllowedPerMin, metricsManager)(login)
	}
	mainRouter.Handle("/session/login", login).Methods("POST", "OPTIONS").Name("login")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponse(w, pkg.ContentType.Text, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, VersionResponse{Version: handler.versionInfo})
}
