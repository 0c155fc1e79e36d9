package publish_slot

import (
	"context"

	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers/models"
)

type TeacherService interface {
	PublishSlot(ctx context.Context, teacherID string, req *models.PublishSlotRequest) (*models.SlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
