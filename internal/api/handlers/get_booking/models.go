package get_booking

import (
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
)

// GetBookingResponse бронирование и ключ слота, который оно занимает
type GetBookingResponse struct {
	*models.BookingResponse

	// Дата и время в часовом поясе сервиса, в том же виде, что и в проверке доступности
	SlotDate     string `json:"slotDate"`
	SlotTime     string `json:"slotTime"`
	OccupiesSlot bool   `json:"occupiesSlot"`
}

func newGetBookingResponse(booking *models.BookingResponse, keyer domain.SlotKeyer) GetBookingResponse {
	key := keyer.ForStart(booking.TeacherID, booking.StartAt)
	return GetBookingResponse{
		BookingResponse: booking,
		SlotDate:        key.Date,
		SlotTime:        key.Time,
		OccupiesSlot:    domain.BookingStatus(booking.Status).OccupiesSlot(),
	}
}
