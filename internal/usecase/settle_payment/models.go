package settle_payment

import (
	bookingModels "github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
	ledgerModels "github.com/m04kA/SMC-LessonBookingService/internal/service/ledger/models"
)

// Request событие успешной оплаты от платёжного провайдера
type Request struct {
	PaymentID string  `json:"paymentId"`
	TeacherID string  `json:"teacherId"`
	StudentID string  `json:"studentId"`
	Lessons   int     `json:"lessons"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	BookingID *string `json:"bookingId,omitempty"`
}

// Response результат обработки оплаты
type Response struct {
	Balance          ledgerModels.BalanceResponse   `json:"balance"`
	CreditsGranted   bool                           `json:"creditsGranted"` // false - повторная доставка
	BookingConfirmed bool                           `json:"bookingConfirmed"`
	Booking          *bookingModels.BookingResponse `json:"booking,omitempty"`
}
