package publish_slot

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "публиковать слоты может только сам преподаватель"
	msgInvalidSlot        = "некорректный интервал слота"
	msgSlotOverlaps       = "слот пересекается с уже опубликованным"
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

// Handle POST /api/v1/teachers/{teacherId}/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID := mux.Vars(r)["teacherId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /teachers/{id}/slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.PublishSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /teachers/{id}/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID = userID

	slot, err := h.service.PublishSlot(r.Context(), teacherID, &req)
	if err != nil {
		switch {
		case errors.Is(err, teachers.ErrAccessDenied):
			h.logger.Warn("POST /teachers/{id}/slots - Access denied: teacher_id=%s, user_id=%s", teacherID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, teachers.ErrInvalidInput):
			h.logger.Warn("POST /teachers/{id}/slots - Invalid slot: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondBadRequest(w, msgInvalidSlot)

		case errors.Is(err, teachers.ErrSlotOverlaps):
			h.logger.Warn("POST /teachers/{id}/slots - Slot overlaps: teacher_id=%s, start_at=%s", teacherID, req.StartAt)
			handlers.RespondConflict(w, msgSlotOverlaps)

		default:
			h.logger.Error("POST /teachers/{id}/slots - Failed to publish slot: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /teachers/{id}/slots - Slot published: teacher_id=%s, slot_id=%s", teacherID, slot.ID)
	handlers.RespondJSON(w, http.StatusCreated, slot)
}
