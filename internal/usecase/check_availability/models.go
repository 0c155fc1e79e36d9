package check_availability

import (
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// Request проверка одного слота
type Request struct {
	TeacherID    string
	Date         domain.Instant    // Дата в любом представлении ("Monday, October 6, 2025", "2025-10-06", ...)
	Time         string            // Время слота, сравнивается как строка
	LessonType   domain.LessonType // По умолчанию exclusive
	MaxGroupSize int               // 0 - взять из настроек преподавателя
}

// BatchRequest проверка списка слотов одним чтением бронирований
type BatchRequest struct {
	TeacherID    string
	Slots        []domain.CandidateSlot
	LessonType   domain.LessonType
	MaxGroupSize int
}

// Response результат проверки одного слота
type Response struct {
	Date string // нормализованная дата YYYY-MM-DD
	Time string
	domain.SlotAvailability
}

// SlotResult слот из пакетного запроса с результатом проверки
type SlotResult struct {
	Slot domain.CandidateSlot
	Date string // нормализованная дата
	domain.SlotAvailability
}
