package get_teacher_settings

import (
	"context"

	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers/models"
)

type TeacherService interface {
	GetSettings(ctx context.Context, teacherID string) (*models.SettingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
