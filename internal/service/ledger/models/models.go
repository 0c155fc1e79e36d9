package models

import (
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// GrantRequest начисление оплаченных занятий
type GrantRequest struct {
	TeacherID string
	StudentID string
	Lessons   int
	Reference string // ID платежа; повтор не начисляет дважды
}

// SpendRequest списание занятий; ноль Lessons означает одно занятие
type SpendRequest struct {
	TeacherID string
	StudentID string
	Lessons   int
}

// BalanceResponse баланс занятий пары преподаватель/ученик
type BalanceResponse struct {
	TeacherID        string     `json:"teacherId"`
	StudentID        string     `json:"studentId"`
	TotalLessons     int        `json:"totalLessons"`
	UsedLessons      int        `json:"usedLessons"`
	RemainingLessons int        `json:"remainingLessons"`
	LastUpdated      *time.Time `json:"lastUpdated,omitempty"`
}

// GrantResponse результат начисления
type GrantResponse struct {
	Balance BalanceResponse `json:"balance"`
	Applied bool            `json:"applied"` // false - платёж уже был учтён
}

// FromDomainBalance конвертирует domain модель в DTO
func FromDomainBalance(b *domain.LessonBalance) *BalanceResponse {
	if b == nil {
		return nil
	}

	resp := &BalanceResponse{
		TeacherID:        b.TeacherID,
		StudentID:        b.StudentID,
		TotalLessons:     b.TotalLessons,
		UsedLessons:      b.UsedLessons,
		RemainingLessons: b.RemainingLessons,
	}
	if !b.LastUpdated.IsZero() {
		t := b.LastUpdated
		resp.LastUpdated = &t
	}
	return resp
}
