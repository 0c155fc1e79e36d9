package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-LessonBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "бронировать можно только для себя или своего ученика"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgSlotNotFound       = "опубликованный слот не найден"
	msgSlotMismatch       = "слот не совпадает с бронированием"
	msgInvalidData        = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq := req.ToUseCaseRequest(identity)

	// Ученик бронирует себе, преподаватель может записать своего ученика
	if identity.ID != useCaseReq.StudentID && identity.ID != useCaseReq.TeacherID {
		h.logger.Warn("POST /bookings - Access denied: user_id=%s, teacher_id=%s, student_id=%s",
			identity.ID, useCaseReq.TeacherID, useCaseReq.StudentID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: teacher_id=%s, start_at=%s",
				useCaseReq.TeacherID, useCaseReq.StartAt)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrSlotNotFound):
			h.logger.Warn("POST /bookings - Slot not found: slot_id=%v", useCaseReq.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBooking.ErrSlotMismatch):
			h.logger.Warn("POST /bookings - Slot mismatch: slot_id=%v, teacher_id=%s", useCaseReq.SlotID, useCaseReq.TeacherID)
			handlers.RespondBadRequest(w, msgSlotMismatch)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /bookings - Invalid booking data: user_id=%s, error=%v", identity.ID, err)
			handlers.RespondBadRequest(w, validationMessage(err))

		default:
			h.logger.Error("POST /bookings - Failed to create booking: teacher_id=%s, student_id=%s, error=%v",
				useCaseReq.TeacherID, useCaseReq.StudentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, teacher_id=%s, student_id=%s",
		result.Booking.ID, result.Booking.TeacherID, result.Booking.StudentID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

// validationMessage добавляет к ответу список нарушений, если он есть
func validationMessage(err error) string {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return msgInvalidData + ": " + verrs.Error()
	}
	return msgInvalidData
}
