package reschedule_booking

import (
	"time"

	bookingModels "github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-LessonBookingService/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP модель запроса на перенос
type RescheduleBookingRequest struct {
	StartAt      time.Time  `json:"startAt"`
	EndAt        *time.Time `json:"endAt,omitempty"` // по умолчанию прежняя длительность
	MaxGroupSize int        `json:"maxGroupSize,omitempty"`
}

// RescheduleBookingResponse старое и новое бронирования
type RescheduleBookingResponse struct {
	Previous *bookingModels.BookingResponse `json:"previous"`
	Booking  *bookingModels.BookingResponse `json:"booking"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID, actorID string) *rescheduleBooking.Request {
	req := &rescheduleBooking.Request{
		BookingID:    bookingID,
		ActorID:      actorID,
		NewStartAt:   r.StartAt,
		MaxGroupSize: r.MaxGroupSize,
	}
	if r.EndAt != nil {
		req.NewEndAt = *r.EndAt
	}
	return req
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *rescheduleBooking.Response) RescheduleBookingResponse {
	return RescheduleBookingResponse{
		Previous: bookingModels.FromDomainBooking(resp.Previous),
		Booking:  bookingModels.FromDomainBooking(resp.Booking),
	}
}
