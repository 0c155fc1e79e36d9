package check_availability

import (
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	checkAvailability "github.com/m04kA/SMC-LessonBookingService/internal/usecase/check_availability"
)

// AvailabilityResponse HTTP ответ проверки слота
type AvailabilityResponse struct {
	TeacherID       string `json:"teacherId"`
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"`
	LessonType      string `json:"lessonType"`
	Available       bool   `json:"available"`
	CurrentBookings int    `json:"currentBookings"`
	MaxSize         int    `json:"maxSize"`
	Degraded        bool   `json:"degraded,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(teacherID string, lessonType domain.LessonType, resp *checkAvailability.Response) AvailabilityResponse {
	if lessonType == "" {
		lessonType = domain.LessonTypeExclusive
	}
	return AvailabilityResponse{
		TeacherID:       teacherID,
		Date:            resp.Date,
		Time:            resp.Time,
		LessonType:      string(lessonType),
		Available:       resp.Available,
		CurrentBookings: resp.CurrentBookings,
		MaxSize:         resp.MaxSize,
		Degraded:        resp.Degraded,
	}
}
