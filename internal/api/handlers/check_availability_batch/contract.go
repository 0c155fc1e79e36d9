package check_availability_batch

import (
	"context"

	checkAvailability "github.com/m04kA/SMC-LessonBookingService/internal/usecase/check_availability"
)

type CheckAvailabilityUseCase interface {
	CheckSlots(ctx context.Context, req *checkAvailability.BatchRequest) ([]checkAvailability.SlotResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
