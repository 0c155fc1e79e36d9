package check_availability_batch

import (
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	checkAvailability "github.com/m04kA/SMC-LessonBookingService/internal/usecase/check_availability"
)

// maxSlotsPerRequest ограничение размера пакета (неделя по 15 минут)
const maxSlotsPerRequest = 672

// BatchRequest HTTP запрос пакетной проверки
type BatchRequest struct {
	LessonType   string        `json:"lessonType,omitempty"`
	MaxGroupSize int           `json:"maxGroupSize,omitempty"`
	Slots        []SlotRequest `json:"slots"`
}

// SlotRequest слот в запросе. Дата в любом поддерживаемом формате
type SlotRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration int    `json:"duration,omitempty"` // минуты
}

// BatchResponse HTTP ответ пакетной проверки
type BatchResponse struct {
	TeacherID  string         `json:"teacherId"`
	LessonType string         `json:"lessonType"`
	Slots      []SlotResponse `json:"slots"`
}

// SlotResponse результат проверки слота; порядок совпадает с запросом
type SlotResponse struct {
	Date            string `json:"date"` // как в запросе
	NormalizedDate  string `json:"normalizedDate"`
	Time            string `json:"time"`
	Duration        int    `json:"duration,omitempty"`
	Available       bool   `json:"available"`
	CurrentBookings int    `json:"currentBookings"`
	MaxSize         int    `json:"maxSize"`
	Degraded        bool   `json:"degraded,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BatchRequest) ToUseCaseRequest(teacherID string) *checkAvailability.BatchRequest {
	slots := make([]domain.CandidateSlot, 0, len(r.Slots))
	for _, s := range r.Slots {
		slots = append(slots, domain.CandidateSlot{
			Date:            domain.RawInstant(s.Date),
			Time:            s.Time,
			DurationMinutes: s.Duration,
		})
	}

	return &checkAvailability.BatchRequest{
		TeacherID:    teacherID,
		Slots:        slots,
		LessonType:   domain.LessonType(r.LessonType),
		MaxGroupSize: r.MaxGroupSize,
	}
}

// FromUseCaseResults конвертирует результаты use case в HTTP ответ
func FromUseCaseResults(teacherID string, lessonType string, results []checkAvailability.SlotResult) BatchResponse {
	if lessonType == "" {
		lessonType = string(domain.LessonTypeExclusive)
	}

	resp := BatchResponse{
		TeacherID:  teacherID,
		LessonType: lessonType,
		Slots:      make([]SlotResponse, 0, len(results)),
	}
	for _, res := range results {
		resp.Slots = append(resp.Slots, SlotResponse{
			Date:            res.Slot.Date.String(),
			NormalizedDate:  res.Date,
			Time:            res.Slot.Time,
			Duration:        res.Slot.DurationMinutes,
			Available:       res.Available,
			CurrentBookings: res.CurrentBookings,
			MaxSize:         res.MaxSize,
			Degraded:        res.Degraded,
		})
	}
	return resp
}
