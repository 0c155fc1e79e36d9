package get_balance

import (
	"context"

	"github.com/m04kA/SMC-LessonBookingService/internal/service/ledger/models"
)

type LedgerService interface {
	GetBalance(ctx context.Context, actorID, teacherID, studentID string) (*models.BalanceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
