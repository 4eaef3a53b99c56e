package web

import (
	"errors"
	"net/http"
	"time"

	"activityhub/internal/adapters/http/perf"
	"activityhub/internal/application/orchestrators"
	"activityhub/internal/domain/activity"
	"activityhub/internal/domain/participation"
)

// handleAdminStudents handles GET /api/admin/students.
func (s *Server) handleAdminStudents(w http.ResponseWriter, r *http.Request) {
	list, err := s.opts.Store.ListStudents(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleAdminActivities handles GET /api/admin/activities: newest first,
// with live participant counts.
func (s *Server) handleAdminActivities(w http.ResponseWriter, r *http.Request) {
	list, err := s.opts.Store.ListActivitiesWithParticipantCounts(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleAdminParticipants handles GET /api/admin/activity/{id}/participants.
func (s *Server) handleAdminParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid activity id"})
		return
	}
	list, err := s.opts.Store.ListParticipants(r.Context(), id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createActivityRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Subcategory string `json:"subcategory"`
	Date        string `json:"date"`
}

// handleAdminCreateActivity handles POST /api/admin/activities.
func (s *Server) handleAdminCreateActivity(w http.ResponseWriter, r *http.Request) {
	var input createActivityRequest
	if err := strictDecode(w, r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	created, err := orchestrators.ExecuteCreateActivity(r.Context(), orchestrators.CreateActivityInput{
		Name:        input.Name,
		Type:        input.Type,
		Subcategory: input.Subcategory,
		Date:        input.Date,
	}, orchestrators.CreateActivityDeps{Store: s.opts.Store})
	if errors.Is(err, activity.ErrInvalidInput) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

type recordParticipationRequest struct {
	StudentID  flexID `json:"studentId"`
	ActivityID flexID `json:"activityId"`
}

type recordParticipationResponse struct {
	participation.Participation
	Message string `json:"message"`
}

// handleAdminRecordParticipation handles POST /api/admin/participation.
func (s *Server) handleAdminRecordParticipation(w http.ResponseWriter, r *http.Request) {
	var input recordParticipationRequest
	if err := strictDecode(w, r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	p, err := orchestrators.ExecuteRecordParticipation(r.Context(), orchestrators.RecordParticipationInput{
		StudentID:  int64(input.StudentID),
		ActivityID: int64(input.ActivityID),
	}, orchestrators.RecordParticipationDeps{
		Store:    s.opts.Store,
		Sender:   s.opts.Sender,
		From:     s.opts.EmailFrom,
		Dispatch: s.opts.Dispatch,
	})
	switch {
	case errors.Is(err, participation.ErrDuplicate):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Student already participating in this activity"})
		return
	case errors.Is(err, participation.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "studentId and activityId must be positive integers"})
		return
	case errors.Is(err, participation.ErrUnknownStudent), errors.Is(err, participation.ErrUnknownActivity):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	case err != nil:
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordParticipationResponse{
		Participation: p,
		Message:       "Participation recorded successfully",
	})
}

// handleAdminRemoveParticipation handles DELETE /api/admin/participation/{participationId}.
func (s *Server) handleAdminRemoveParticipation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "participationId")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Participation not found"})
		return
	}

	err := orchestrators.ExecuteRemoveParticipation(r.Context(),
		orchestrators.RemoveParticipationInput{ParticipationID: id},
		orchestrators.RemoveParticipationDeps{Store: s.opts.Store})
	if errors.Is(err, participation.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Participation not found"})
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Participation removed successfully"})
}

// handleAdminStats handles GET /api/admin/stats.
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.opts.Store.Stats(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// perfWindow is the look-back for GET /api/admin/perf.
const perfWindow = 15 * time.Minute

// handleAdminPerf handles GET /api/admin/perf.
func (s *Server) handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if s.opts.Collector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Collector.Snapshot(time.Now().Add(-perfWindow), 10))
}
