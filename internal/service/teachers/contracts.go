package teachers

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// TeacherRepository интерфейс репозитория настроек преподавателя
type TeacherRepository interface {
	GetSettings(ctx context.Context, teacherID string) (*domain.TeacherSettings, error)
	UpsertSettings(ctx context.Context, settings *domain.TeacherSettings) (*domain.TeacherSettings, error)
}

// SlotRepository интерфейс репозитория опубликованных слотов
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.AvailabilitySlot) (*domain.AvailabilitySlot, error)
	ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]*domain.AvailabilitySlot, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
