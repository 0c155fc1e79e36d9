package bookings

import (
	"context"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	ledgerModels "github.com/m04kA/SMC-LessonBookingService/internal/service/ledger/models"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByUser(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error)
	GetByTeacher(ctx context.Context, teacherID string, statuses []domain.BookingStatus) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, patch domain.StatusPatch) error
}

// LedgerService списание занятий с баланса пары
type LedgerService interface {
	Spend(ctx context.Context, req *ledgerModels.SpendRequest) (*ledgerModels.BalanceResponse, error)
}

// SlotRepository интерфейс репозитория опубликованных слотов
type SlotRepository interface {
	Release(ctx context.Context, id string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчики жизненного цикла бронирований
type Metrics interface {
	IncStatusTransition(to string)
	IncBookingConflict(operation string)
	AddCreditsSpent(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
