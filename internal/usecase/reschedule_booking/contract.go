package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByTeacher(ctx context.Context, teacherID string, statuses []domain.BookingStatus) ([]*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, patch domain.StatusPatch) error
}

// TeacherRepository интерфейс репозитория настроек преподавателя
type TeacherRepository interface {
	GetSettings(ctx context.Context, teacherID string) (*domain.TeacherSettings, error)
}

// SlotRepository интерфейс репозитория опубликованных слотов
type SlotRepository interface {
	Release(ctx context.Context, id string) error
}

// SlotLocker блокировка ключа слота перед транзакцией
type SlotLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчики бронирований
type Metrics interface {
	IncBookingConflict(operation string)
	IncStatusTransition(to string)
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
