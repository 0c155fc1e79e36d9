package settle_payment

import (
	"context"

	settlePayment "github.com/m04kA/SMC-LessonBookingService/internal/usecase/settle_payment"
)

type SettlePaymentUseCase interface {
	Execute(ctx context.Context, req *settlePayment.Request) (*settlePayment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
