// Package handler contains the HTTP handlers of the exercise API.
//
// Handlers only translate between HTTP and the service layer: read fields
// from the query string or body, call a service, and write the result or
// the mapped error. No business rules live here.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/exercise-tracker/internal/logquery"
	"github.com/sakif/exercise-tracker/internal/service"
)

// ExerciseHandler serves the /api/exercise endpoints.
type ExerciseHandler struct {
	users      *service.UserService
	activities *service.ActivityService
	logs       *service.LogService
	logger     *slog.Logger
}

// NewExerciseHandler creates an ExerciseHandler.
func NewExerciseHandler(
	users *service.UserService,
	activities *service.ActivityService,
	logs *service.LogService,
	logger *slog.Logger,
) *ExerciseHandler {
	return &ExerciseHandler{
		users:      users,
		activities: activities,
		logs:       logs,
		logger:     logger,
	}
}

// HandleCreateUser registers a user.
//
// HTTP: POST /api/exercise/new-user
// BODY: username
// RESPONSE: {"username":"alice","id":"cv37rs3pp9olc6atsptg"}
func (h *ExerciseHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), values.Get("username"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, user)
}

// HandleListUsers returns every user.
//
// HTTP: GET /api/exercise/users
// RESPONSE: [{"username":"alice","id":"..."}, ...]
func (h *ExerciseHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, users)
}

// HandleAddExercise appends an activity to a user's log.
//
// HTTP: POST /api/exercise/add
// BODY: userId, description, duration, date (optional)
// RESPONSE: {"id":"...","username":"alice","description":"run","duration":30,"date":"..."}
func (h *ExerciseHandler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	receipt, err := h.activities.AppendActivity(r.Context(), service.AppendActivityInput{
		UserID:      values.Get("userId"),
		Description: values.Get("description"),
		Duration:    values.Get("duration"),
		Date:        values.Get("date"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, receipt)
}

// HandleLog returns a user's filtered log.
//
// HTTP: GET /api/exercise/log?userId=...&from=2020-01-01&to=2020-12-31&limit=10
// RESPONSE: {"id":"...","username":"alice","count":1,"log":[{"description":"run","duration":30,"date":"..."}]}
func (h *ExerciseHandler) HandleLog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	view, err := h.logs.QueryLog(r.Context(), query.Get("userId"), logquery.Params{
		From:  query.Get("from"),
		To:    query.Get("to"),
		Limit: query.Get("limit"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, view)
}
