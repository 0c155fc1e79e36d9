package list_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers/models"
)

const (
	msgInvalidFrom   = "некорректный параметр from, ожидается RFC 3339"
	msgInvalidTo     = "некорректный параметр to, ожидается RFC 3339"
	msgInvalidFree   = "некорректный параметр free"
	msgInvalidPeriod = "некорректный период"
)

type Handler struct {
	service TeacherService
	logger  Logger
}

func NewHandler(service TeacherService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/teachers/{teacherId}/slots?from=...&to=...&free=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID := mux.Vars(r)["teacherId"]
	query := r.URL.Query()

	req := &models.ListSlotsRequest{TeacherID: teacherID}

	if v := query.Get("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidFrom)
			return
		}
		req.From = from
	}
	if v := query.Get("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidTo)
			return
		}
		req.To = to
	}
	if v := query.Get("free"); v != "" {
		free, err := strconv.ParseBool(v)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidFree)
			return
		}
		req.OnlyFree = free
	}

	result, err := h.service.ListSlots(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, teachers.ErrInvalidInput):
			h.logger.Warn("GET /teachers/{id}/slots - Invalid period: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)

		default:
			h.logger.Error("GET /teachers/{id}/slots - Failed to list slots: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /teachers/{id}/slots - Slots retrieved: teacher_id=%s, count=%d", teacherID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result.Slots)
}
