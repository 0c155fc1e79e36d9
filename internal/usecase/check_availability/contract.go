package check_availability

import (
	"context"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByTeacher(ctx context.Context, teacherID string, statuses []domain.BookingStatus) ([]*domain.Booking, error)
}

// TeacherRepository интерфейс репозитория настроек преподавателя
type TeacherRepository interface {
	GetSettings(ctx context.Context, teacherID string) (*domain.TeacherSettings, error)
}

// Metrics счётчики проверки доступности
type Metrics interface {
	IncAvailabilityFailOpen(mode string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
