package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/2beens/fittrack/internal/activity"
	"github.com/2beens/fittrack/internal/tracker"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type AddStepsRequest struct {
	Steps int `json:"steps"`
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
	r.HandleFunc("/dashboard", h.HandleLoad).Methods("GET", "OPTIONS").Name("dashboard")
	r.HandleFunc("/dashboard/workouts", h.HandleAddWorkout).Methods("POST", "OPTIONS").Name("add-workout")
	r.HandleFunc("/dashboard/steps", h.HandleAddSteps).Methods("POST", "OPTIONS").Name("add-steps")
	r.HandleFunc("/dashboard/goals", h.HandleSaveGoals).Methods("PUT", "OPTIONS").Name("save-goals")
	r.HandleFunc("/activity/{period}", h.HandleActivity).Methods("GET", "OPTIONS").Name("activity")
}

func (h *Handler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Load(r.Context())
	if err != nil {
		log.Errorf("load dashboard: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	pkg.WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) HandleAddWorkout(w http.ResponseWriter, r *http.Request) {
	var newWorkout tracker.NewWorkout
	if err := json.NewDecoder(r.Body).Decode(&newWorkout); err != nil {
		log.Debugf("add workout, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid workout json")
		return
	}

	result, err := h.service.AddWorkout(r.Context(), newWorkout)
	if err != nil {
		h.writeServiceError(w, "add workout", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) HandleAddSteps(w http.ResponseWriter, r *http.Request) {
	var req AddStepsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("add steps, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid steps json")
		return
	}

	result, err := h.service.AddSteps(r.Context(), req.Steps)
	if err != nil {
		h.writeServiceError(w, "add steps", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleSaveGoals(w http.ResponseWriter, r *http.Request) {
	var goals tracker.Goals
	if err := json.NewDecoder(r.Body).Decode(&goals); err != nil {
		log.Debugf("save goals, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid goals json")
		return
	}

	if err := h.service.SaveGoals(r.Context(), goals); err != nil {
		h.writeServiceError(w, "save goals", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, goals)
}

func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	period := activity.Period(mux.Vars(r)["period"])
	view, err := h.service.Activity(r.Context(), period)
	if err != nil {
		h.writeServiceError(w, "activity", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	if IsValidationError(err) {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Errorf("%s: %s", op, err)
	pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
}
