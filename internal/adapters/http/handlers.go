package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"activityhub/internal/adapters/http/middleware"
	"activityhub/internal/application/orchestrators"
	"activityhub/internal/domain/identity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type loginResponse struct {
	Success bool          `json:"success"`
	User    identity.User `json:"user"`
}

// handleLogin handles POST /api/login. Placeholder: see package identity.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := strictDecode(w, r, &input); err != nil {
		// A non-string email is a bad address, not bad JSON.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "email" {
			writeJSON(w, http.StatusUnauthorized, messageBody{Message: "Please use a Gmail address"})
			return
		}
		writeJSON(w, http.StatusBadRequest, messageBody{Message: "invalid JSON"})
		return
	}

	user, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    input.Email,
		Password: input.Password,
		UserType: input.UserType,
	}, orchestrators.LoginDeps{RandomID: s.opts.RandomID})
	if errors.Is(err, identity.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, messageBody{Message: "Please use a Gmail address"})
		return
	}
	if err != nil {
		slog.Error("internal_error", "request_id", middleware.RequestIDFrom(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, messageBody{Message: "Server error"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Success: true, User: user})
}

// handleActivities handles GET /api/activities: every activity by id.
func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	list, err := s.opts.Store.ListActivities(r.Context())
	if err != nil {
		slog.Error("internal_error", "request_id", middleware.RequestIDFrom(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, messageBody{Message: "Server error"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type healthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Degraded bool   `json:"degraded"`
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Backend:  string(s.opts.Store.Backend()),
		Degraded: s.opts.Degraded,
	})
}
