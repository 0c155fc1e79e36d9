package create_booking

import (
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	TeacherID string
	StudentID string

	// Денормализованные данные для страниц бронирования
	TeacherName      string
	StudentName      string
	StudentEmail     string
	BookingPageTitle *string

	StartAt         time.Time
	EndAt           time.Time
	DurationMinutes int // 0 - вычислить из интервала

	BookingType  domain.BookingType // По умолчанию flexible, fixed при SlotID
	LessonType   domain.LessonType  // По умолчанию exclusive
	MaxGroupSize int                // 0 - из настроек преподавателя
	SlotID       *string            // Опубликованный слот (опционально)

	Currency      string
	PaymentAmount float64
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
	// Занятость слота после создания
	Availability domain.SlotAvailability
}
