package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByTeacher(ctx context.Context, teacherID string, statuses []domain.BookingStatus) ([]*domain.Booking, error)
}

// TeacherRepository интерфейс репозитория настроек преподавателя
type TeacherRepository interface {
	GetSettings(ctx context.Context, teacherID string) (*domain.TeacherSettings, error)
}

// SlotRepository интерфейс репозитория опубликованных слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error)
	MarkBooked(ctx context.Context, id string, studentID string) error
}

// SlotLocker блокировка ключа слота перед транзакцией (keymutex или redislock)
type SlotLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчики бронирований
type Metrics interface {
	IncBookingCreated(lessonType string)
	IncBookingConflict(operation string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
