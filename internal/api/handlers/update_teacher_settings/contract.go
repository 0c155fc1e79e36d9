package update_teacher_settings

import (
	"context"

	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers/models"
)

type TeacherService interface {
	UpdateSettings(ctx context.Context, teacherID string, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
