package ledger

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// LedgerRepository интерфейс репозитория баланса занятий
type LedgerRepository interface {
	Get(ctx context.Context, teacherID, studentID string) (*domain.LessonBalance, error)
	Grant(ctx context.Context, teacherID, studentID string, count int, reference string, now time.Time) (*domain.LessonBalance, bool, error)
	Spend(ctx context.Context, teacherID, studentID string, count int, now time.Time) (*domain.LessonBalance, error)
}

// Metrics счётчик начисленных занятий. Списания считает сервис бронирований
type Metrics interface {
	AddCreditsGranted(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
