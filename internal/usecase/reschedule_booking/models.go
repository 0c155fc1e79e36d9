package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// Request модель запроса на перенос занятия
type Request struct {
	BookingID    string
	ActorID      string    // ученик или преподаватель бронирования
	NewStartAt   time.Time
	NewEndAt     time.Time // нулевое - сохранить длительность
	MaxGroupSize int
}

// Response старое и новое бронирования после переноса
type Response struct {
	Previous *domain.Booking
	Booking  *domain.Booking
}
