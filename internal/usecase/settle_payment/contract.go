package settle_payment

import (
	"context"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingModels "github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
	ledgerModels "github.com/m04kA/SMC-LessonBookingService/internal/service/ledger/models"
)

// LedgerService начисление оплаченных занятий
type LedgerService interface {
	Grant(ctx context.Context, req *ledgerModels.GrantRequest) (*ledgerModels.GrantResponse, error)
}

// BookingService подтверждение оплаченного бронирования
type BookingService interface {
	Confirm(ctx context.Context, bookingID string, req *bookingModels.ConfirmBookingRequest) (*bookingModels.BookingResponse, error)
}

// BookingRepository чтение бронирования для сверки пары преподаватель/ученик
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
