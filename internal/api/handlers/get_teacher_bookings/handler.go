package get_teacher_bookings

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
)

const (
	msgInvalidTeacherID = "некорректный ID преподавателя"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "расписание доступно только самому преподавателю"
	msgInvalidStatus    = "некорректный статус бронирования"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/teachers/{teacherId}/bookings?status=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID := mux.Vars(r)["teacherId"]
	if teacherID == "" {
		handlers.RespondBadRequest(w, msgInvalidTeacherID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /teachers/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var statusPtr *string
	if status := r.URL.Query().Get("status"); status != "" {
		statusPtr = &status
	}

	result, err := h.service.GetTeacherBookings(r.Context(), &models.GetTeacherBookingsRequest{
		ActorID:   userID,
		TeacherID: teacherID,
		Status:    statusPtr,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /teachers/{id}/bookings - Access denied: teacher_id=%s, user_id=%s", teacherID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /teachers/{id}/bookings - Invalid status: %v", statusPtr)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /teachers/{id}/bookings - Failed to get bookings: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /teachers/{id}/bookings - Bookings retrieved successfully: teacher_id=%s, count=%d",
		teacherID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
