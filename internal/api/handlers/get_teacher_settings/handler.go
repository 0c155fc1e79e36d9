package get_teacher_settings

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers"
)

const (
	msgInvalidTeacherID = "некорректный ID преподавателя"
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

// Handle GET /api/v1/teachers/{teacherId}/settings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID := mux.Vars(r)["teacherId"]

	settings, err := h.service.GetSettings(r.Context(), teacherID)
	if err != nil {
		switch {
		case errors.Is(err, teachers.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidTeacherID)

		default:
			h.logger.Error("GET /teachers/{id}/settings - Failed to get settings: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /teachers/{id}/settings - Settings retrieved: teacher_id=%s, default=%t", teacherID, settings.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, settings)
}
