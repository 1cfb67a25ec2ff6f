package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type LoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SessionResponse struct {
	LoggedIn bool  `json:"loggedIn"`
	User     *User `json:"user,omitempty"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

type ProfileImageRequest struct {
	Image string `json:"image"`
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

type ThemeResponse struct {
	Theme  Theme   `json:"theme"`
	Themes []Theme `json:"themes"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/session", h.HandleCurrent).Methods("GET", "OPTIONS").Name("session")
	r.HandleFunc("/session/logout", h.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
	r.HandleFunc("/session/name", h.HandleRename).Methods("PUT", "OPTIONS").Name("rename")
	r.HandleFunc("/profile/image", h.HandleGetProfileImage).Methods("GET", "OPTIONS").Name("profile-image")
	r.HandleFunc("/profile/image", h.HandleSetProfileImage).Methods("PUT", "OPTIONS").Name("set-profile-image")
	r.HandleFunc("/profile/theme", h.HandleGetTheme).Methods("GET", "OPTIONS").Name("theme")
	r.HandleFunc("/profile/theme", h.HandleSetTheme).Methods("PUT", "OPTIONS").Name("set-theme")
}

// HandleLogin is registered by the server so it can sit behind the login rate limiter.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid login json")
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Name)
	if err != nil {
		h.writeError(w, "login", err)
		return
	}
	log.Infof("user %s logged in", user.Email)
	pkg.WriteJSON(w, http.StatusOK, SessionResponse{LoggedIn: true, User: user})
}

func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	user, ok, err := h.service.Current(r.Context())
	if err != nil {
		h.writeError(w, "current session", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, SessionResponse{LoggedIn: ok, User: user})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		h.writeError(w, "logout", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, SessionResponse{})
}

func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid name json")
		return
	}

	user, err := h.service.Rename(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, "rename", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, SessionResponse{LoggedIn: true, User: user})
}

func (h *Handler) HandleGetProfileImage(w http.ResponseWriter, r *http.Request) {
	image, ok, err := h.service.ProfileImage(r.Context())
	if err != nil {
		h.writeError(w, "get profile image", err)
		return
	}
	if !ok {
		pkg.WriteJSONError(w, http.StatusNotFound, "no profile image")
		return
	}
	pkg.WriteJSON(w, http.StatusOK, ProfileImageRequest{Image: image})
}

func (h *Handler) HandleSetProfileImage(w http.ResponseWriter, r *http.Request) {
	var req ProfileImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid image json")
		return
	}
	if err := h.service.SetProfileImage(r.Context(), req.Image); err != nil {
		h.writeError(w, "set profile image", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.service.Theme(r.Context())
	if err != nil {
		h.writeError(w, "get theme", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, ThemeResponse{Theme: theme, Themes: Themes})
}

func (h *Handler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid theme json")
		return
	}
	theme, err := h.service.SetTheme(r.Context(), req.Theme)
	if err != nil {
		h.writeError(w, "set theme", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, ThemeResponse{Theme: theme, Themes: Themes})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case IsValidationError(err):
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNoSession):
		pkg.WriteJSONError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Errorf("%s: %s", op, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
