package get_booking_stats

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
	msgInvalidRole   = "role должен быть student или teacher"
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

// Handle GET /api/v1/users/{userId}/bookings/stats?role=student|teacher
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		role = string(identity.Role)
	}
	if role == "" {
		role = string(domain.RoleStudent)
	}

	stats, err := h.service.GetStats(r.Context(), &models.GetStatsRequest{
		ActorID: identity.ID,
		UserID:  userID,
		Role:    role,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /users/{userId}/bookings/stats - Access denied: user_id=%s, actor=%s", userID, identity.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRole)

		default:
			h.logger.Error("GET /users/{userId}/bookings/stats - Failed to get stats: user_id=%s, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}
