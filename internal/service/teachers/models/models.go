package models

import (
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// UpdateSettingsRequest запрос на изменение настроек преподавателя.
// Поля профиля занятия необязательны: пустые значения снимают настройку
type UpdateSettingsRequest struct {
	ActorID       string  `json:"-"`
	GroupSize     int     `json:"groupSize"`
	ClassTitle    string  `json:"classTitle,omitempty"`
	ClassDuration int     `json:"classDuration,omitempty"`
	ClassPrice    float64 `json:"classPrice,omitempty"`
	Currency      string  `json:"currency,omitempty"`
}

// PublishSlotRequest запрос на публикацию слота
type PublishSlotRequest struct {
	ActorID string    `json:"-"`
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

// ListSlotsRequest запрос слотов за период; нулевые границы - без ограничения
type ListSlotsRequest struct {
	TeacherID string
	From      time.Time
	To        time.Time
	OnlyFree  bool
}

// SettingsResponse настройки преподавателя
type SettingsResponse struct {
	TeacherID     string     `json:"teacherId"`
	GroupSize     int        `json:"groupSize"`
	ClassTitle    string     `json:"classTitle,omitempty"`
	ClassDuration int        `json:"classDuration,omitempty"`
	ClassPrice    float64    `json:"classPrice"`
	Currency      string     `json:"currency"`
	IsDefault     bool       `json:"isDefault"` // настройки не сохранялись
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// SlotResponse опубликованный слот
type SlotResponse struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacherId"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	Duration  int       `json:"duration"`
	IsBooked  bool      `json:"isBooked"`
	BookedBy  *string   `json:"bookedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SlotListResponse список слотов
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
}

// FromDomainSettings конвертирует domain модель в DTO
func FromDomainSettings(s *domain.TeacherSettings) *SettingsResponse {
	if s == nil {
		return nil
	}
	resp := &SettingsResponse{
		TeacherID:     s.TeacherID,
		GroupSize:     s.GroupSize,
		ClassTitle:    s.ClassTitle,
		ClassDuration: s.ClassDuration,
		ClassPrice:    s.ClassPrice,
		Currency:      s.Currency,
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.AvailabilitySlot) *SlotResponse {
	if s == nil {
		return nil
	}
	return &SlotResponse{
		ID:        s.ID,
		TeacherID: s.TeacherID,
		StartAt:   s.StartAt,
		EndAt:     s.EndAt,
		Duration:  s.DurationMinutes(),
		IsBooked:  s.IsBooked,
		BookedBy:  s.BookedBy,
		CreatedAt: s.CreatedAt,
	}
}

// FromDomainSlotList конвертирует список слотов
func FromDomainSlotList(slots []*domain.AvailabilitySlot) *SlotListResponse {
	resp := &SlotListResponse{Slots: make([]SlotResponse, 0, len(slots))}
	for _, s := range slots {
		if r := FromDomainSlot(s); r != nil {
			resp.Slots = append(resp.Slots, *r)
		}
	}
	return resp
}
