package create_booking

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingModels "github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-LessonBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP модель запроса на создание бронирования
type CreateBookingRequest struct {
	TeacherID string `json:"teacherId"`
	StudentID string `json:"studentId,omitempty"` // по умолчанию текущий пользователь

	TeacherName      string  `json:"teacherName,omitempty"`
	StudentName      string  `json:"studentName,omitempty"`
	StudentEmail     string  `json:"studentEmail,omitempty"`
	BookingPageTitle *string `json:"bookingPageTitle,omitempty"`

	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt"`
	Duration int       `json:"duration,omitempty"` // минуты

	BookingType  string  `json:"bookingType,omitempty"`
	LessonType   string  `json:"lessonType,omitempty"`
	MaxGroupSize int     `json:"maxGroupSize,omitempty"`
	SlotID       *string `json:"slotId,omitempty"`

	Currency      string  `json:"currency,omitempty"`
	PaymentAmount float64 `json:"paymentAmount,omitempty"`
}

// CreateBookingResponse HTTP модель ответа
type CreateBookingResponse struct {
	Booking      *bookingModels.BookingResponse `json:"booking"`
	Availability AvailabilityResponse           `json:"availability"`
}

// AvailabilityResponse занятость слота после создания
type AvailabilityResponse struct {
	Available       bool `json:"available"`
	CurrentBookings int  `json:"currentBookings"`
	MaxSize         int  `json:"maxSize"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Имя и email ученика берутся из профиля, если ученик бронирует сам
func (r *CreateBookingRequest) ToUseCaseRequest(identity domain.Identity) *createBooking.Request {
	studentID := strings.TrimSpace(r.StudentID)
	if studentID == "" {
		studentID = identity.ID
	}

	studentName := r.StudentName
	studentEmail := r.StudentEmail
	if studentID == identity.ID {
		if studentName == "" {
			studentName = identity.Name
		}
		if studentEmail == "" {
			studentEmail = identity.Email
		}
	}

	return &createBooking.Request{
		TeacherID:        strings.TrimSpace(r.TeacherID),
		StudentID:        studentID,
		TeacherName:      r.TeacherName,
		StudentName:      studentName,
		StudentEmail:     studentEmail,
		BookingPageTitle: r.BookingPageTitle,
		StartAt:          r.StartAt,
		EndAt:            r.EndAt,
		DurationMinutes:  r.Duration,
		BookingType:      domain.BookingType(r.BookingType),
		LessonType:       domain.LessonType(r.LessonType),
		MaxGroupSize:     r.MaxGroupSize,
		SlotID:           r.SlotID,
		Currency:         r.Currency,
		PaymentAmount:    r.PaymentAmount,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *createBooking.Response) CreateBookingResponse {
	return CreateBookingResponse{
		Booking: bookingModels.FromDomainBooking(resp.Booking),
		Availability: AvailabilityResponse{
			Available:       resp.Availability.Available,
			CurrentBookings: resp.Availability.CurrentBookings,
			MaxSize:         resp.Availability.MaxSize,
		},
	}
}
