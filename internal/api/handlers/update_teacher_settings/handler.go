package update_teacher_settings

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные настройки"
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

// Handle PUT /api/v1/teachers/{teacherId}/settings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID := mux.Vars(r)["teacherId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /teachers/{id}/settings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateSettingsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /teachers/{id}/settings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID = userID

	result, err := h.service.UpdateSettings(r.Context(), teacherID, &req)
	if err != nil {
		switch {
		case errors.Is(err, teachers.ErrAccessDenied):
			h.logger.Warn("PUT /teachers/{id}/settings - Access denied: teacher_id=%s, user_id=%s", teacherID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, teachers.ErrInvalidInput):
			h.logger.Warn("PUT /teachers/{id}/settings - Invalid data: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondBadRequest(w, validationMessage(err))

		default:
			h.logger.Error("PUT /teachers/{id}/settings - Failed to update settings: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /teachers/{id}/settings - Settings updated: teacher_id=%s, group_size=%d", teacherID, result.GroupSize)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// validationMessage добавляет к сообщению список нарушений
func validationMessage(err error) string {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return msgInvalidData + ": " + verrs.Error()
	}
	return msgInvalidData + ": размер группы должен быть от 1 до 100"
}
