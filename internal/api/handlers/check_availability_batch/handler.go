package check_availability_batch

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	checkAvailability "github.com/m04kA/SMC-LessonBookingService/internal/usecase/check_availability"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgTooManySlots       = "слишком много слотов в одном запросе"
	msgInvalidRequest     = "некорректные параметры слотов"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/teachers/{teacherId}/availability/batch
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID := mux.Vars(r)["teacherId"]

	var req BatchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /teachers/{id}/availability/batch - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if len(req.Slots) > maxSlotsPerRequest {
		h.logger.Warn("POST /teachers/{id}/availability/batch - Too many slots: teacher_id=%s, count=%d", teacherID, len(req.Slots))
		handlers.RespondBadRequest(w, msgTooManySlots)
		return
	}

	results, err := h.useCase.CheckSlots(r.Context(), req.ToUseCaseRequest(teacherID))
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("POST /teachers/{id}/availability/batch - Invalid request: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		default:
			h.logger.Error("POST /teachers/{id}/availability/batch - Failed to check slots: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /teachers/{id}/availability/batch - Slots checked: teacher_id=%s, count=%d", teacherID, len(results))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResults(teacherID, req.LessonType, results))
}
