package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidRole возвращается при некорректной роли
	ErrInvalidRole = errors.New("invalid role")
)

// Request модели

// ConfirmBookingRequest запрос на подтверждение бронирования.
// Пустой ActorID - системное подтверждение (оплата)
type ConfirmBookingRequest struct {
	ActorID     string `json:"-"`
	MeetingLink string `json:"meetingLink"`
}

// CompleteBookingRequest запрос на завершение занятия
type CompleteBookingRequest struct {
	ActorID string `json:"-"`
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	ActorID            string `json:"-"`
	CancellationReason string `json:"cancellationReason"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	ActorID string
	UserID  string
	Role    string
	Status  *string
}

// GetTeacherBookingsRequest запрос на получение бронирований преподавателя
type GetTeacherBookingsRequest struct {
	ActorID   string
	TeacherID string
	Status    *string
}

// GetStatsRequest запрос статистики для дашборда
type GetStatsRequest struct {
	ActorID string
	UserID  string
	Role    string
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetUserBookingsRequest) ToDomainFilter() (domain.UserBookingsFilter, error) {
	role, err := ToDomainRole(r.Role)
	if err != nil {
		return domain.UserBookingsFilter{}, err
	}

	filter := domain.UserBookingsFilter{
		UserID: r.UserID,
		Role:   role,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID        string `json:"id"`
	TeacherID string `json:"teacherId"`
	StudentID string `json:"studentId"`

	// Денормализованные данные
	TeacherName      string  `json:"teacherName,omitempty"`
	StudentName      string  `json:"studentName,omitempty"`
	StudentEmail     string  `json:"studentEmail,omitempty"`
	BookingPageTitle *string `json:"bookingPageTitle,omitempty"`

	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt"`
	Duration int       `json:"duration"` // минуты

	Status       string  `json:"status"`
	MeetingLink  string  `json:"meetingLink,omitempty"`
	BookingType  string  `json:"bookingType"`
	LessonType   string  `json:"lessonType"`
	SlotID       *string `json:"slotId,omitempty"`
	RescheduleOf *string `json:"rescheduleOf,omitempty"`

	Currency      string  `json:"currency"`
	PaymentAmount float64 `json:"paymentAmount"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CompletedAt        *string `json:"completedAt,omitempty"` // ISO 8601 format
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// BookingStatsResponse счётчики для дашборда
type BookingStatsResponse struct {
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
	ThisMonth int `json:"thisMonth"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		TeacherID:          b.TeacherID,
		StudentID:          b.StudentID,
		TeacherName:        b.TeacherName,
		StudentName:        b.StudentName,
		StudentEmail:       b.StudentEmail,
		BookingPageTitle:   b.BookingPageTitle,
		StartAt:            b.StartAt,
		EndAt:              b.EndAt,
		Duration:           b.DurationMinutes,
		Status:             string(b.Status),
		MeetingLink:        b.MeetingLink,
		BookingType:        string(b.BookingType),
		LessonType:         string(b.LessonType),
		SlotID:             b.SlotID,
		RescheduleOf:       b.RescheduleOf,
		Currency:           b.Currency,
		PaymentAmount:      b.PaymentAmount,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	resp.CompletedAt = formatOptionalTime(b.CompletedAt)
	resp.CancelledAt = formatOptionalTime(b.CancelledAt)

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// FromDomainStats конвертирует статистику
func FromDomainStats(s domain.BookingStats) *BookingStatsResponse {
	return &BookingStatsResponse{
		Upcoming:  s.Upcoming,
		Completed: s.Completed,
		Cancelled: s.Cancelled,
		Total:     s.Total,
		ThisMonth: s.ThisMonth,
	}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ToDomainRole конвертирует строку в domain.Role
func ToDomainRole(role string) (domain.Role, error) {
	r := domain.Role(role)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
