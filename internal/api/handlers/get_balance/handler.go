package get_balance

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/ledger"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
	msgInvalidPair   = "некорректная пара преподаватель/ученик"
)

type Handler struct {
	service LedgerService
	logger  Logger
}

func NewHandler(service LedgerService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/students/{studentId}/balances/{teacherId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	studentID := vars["studentId"]
	teacherID := vars["teacherId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID, teacherID, studentID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrAccessDenied):
			h.logger.Warn("GET /students/{id}/balances/{teacherId} - Access denied: student_id=%s, teacher_id=%s, user_id=%s",
				studentID, teacherID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, ledger.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidPair)

		default:
			h.logger.Error("GET /students/{id}/balances/{teacherId} - Failed to get balance: student_id=%s, teacher_id=%s, error=%v",
				studentID, teacherID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, balance)
}
