package settle_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	settlePayment "github.com/m04kA/SMC-LessonBookingService/internal/usecase/settle_payment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidEvent       = "некорректное событие оплаты"
	msgBookingNotFound    = "бронирование из оплаты не найдено"
	msgBookingMismatch    = "бронирование принадлежит другой паре преподаватель/ученик"
)

type Handler struct {
	useCase SettlePaymentUseCase
	logger  Logger
}

func NewHandler(useCase SettlePaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/settled
// Вызывается платёжным провайдером; повторная доставка того же платежа безопасна
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req settlePayment.Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payments/settled - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, settlePayment.ErrBookingNotFound):
			h.logger.Warn("POST /payments/settled - Booking not found: payment_id=%s, booking_id=%v", req.PaymentID, req.BookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, settlePayment.ErrBookingMismatch):
			h.logger.Warn("POST /payments/settled - Booking mismatch: payment_id=%s, booking_id=%v", req.PaymentID, req.BookingID)
			handlers.RespondBadRequest(w, msgBookingMismatch)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /payments/settled - Invalid event: payment_id=%s, error=%v", req.PaymentID, err)
			handlers.RespondBadRequest(w, msgInvalidEvent)

		default:
			h.logger.Error("POST /payments/settled - Failed to settle payment: payment_id=%s, error=%v", req.PaymentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/settled - Payment settled: payment_id=%s, granted=%t, confirmed=%t",
		req.PaymentID, result.CreditsGranted, result.BookingConfirmed)
	handlers.RespondJSON(w, http.StatusOK, result)
}
