package check_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	checkAvailability "github.com/m04kA/SMC-LessonBookingService/internal/usecase/check_availability"
)

const (
	msgMissingDate         = "параметр date обязателен"
	msgMissingTime         = "параметр time обязателен"
	msgInvalidMaxGroupSize = "некорректный параметр maxGroupSize"
	msgInvalidRequest      = "некорректные параметры запроса"
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

// Handle GET /api/v1/teachers/{teacherId}/availability?date=...&time=...&lessonType=...&maxGroupSize=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID := mux.Vars(r)["teacherId"]
	query := r.URL.Query()

	date := query.Get("date")
	if date == "" {
		h.logger.Warn("GET /teachers/{id}/availability - Missing date: teacher_id=%s", teacherID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	clock := query.Get("time")
	if clock == "" {
		h.logger.Warn("GET /teachers/{id}/availability - Missing time: teacher_id=%s", teacherID)
		handlers.RespondBadRequest(w, msgMissingTime)
		return
	}

	maxGroupSize := 0
	if v := query.Get("maxGroupSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.logger.Warn("GET /teachers/{id}/availability - Invalid maxGroupSize: %q", v)
			handlers.RespondBadRequest(w, msgInvalidMaxGroupSize)
			return
		}
		maxGroupSize = n
	}

	lessonType := domain.LessonType(query.Get("lessonType"))

	result, err := h.useCase.CheckSlot(r.Context(), &checkAvailability.Request{
		TeacherID:    teacherID,
		Date:         domain.RawInstant(date),
		Time:         clock,
		LessonType:   lessonType,
		MaxGroupSize: maxGroupSize,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("GET /teachers/{id}/availability - Invalid request: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		default:
			h.logger.Error("GET /teachers/{id}/availability - Failed to check slot: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /teachers/{id}/availability - Slot checked: teacher_id=%s, date=%s, time=%s, available=%t",
		teacherID, result.Date, result.Time, result.Available)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(teacherID, lessonType, result))
}
