package domain

import (
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusScheduled   BookingStatus = "scheduled"
	StatusConfirmed   BookingStatus = "confirmed"
	StatusCompleted   BookingStatus = "completed"
	StatusCancelled   BookingStatus = "cancelled"
	StatusRescheduled BookingStatus = "rescheduled"
)

// BookingType describes how the lesson time was chosen on the booking page
type BookingType string

const (
	BookingTypeFlexible BookingType = "flexible"
	BookingTypeFixed    BookingType = "fixed"
)

// LessonType is the occupancy policy of a time slot
type LessonType string

const (
	// LessonTypeExclusive is a 1-on-1 lesson: at most one booking per slot
	LessonTypeExclusive LessonType = "exclusive"
	// LessonTypeCapacity is a group lesson: up to the teacher's group size per slot
	LessonTypeCapacity LessonType = "capacity"
)

// IsValid returns true for a known lesson type
func (t LessonType) IsValid() bool {
	return t == LessonTypeExclusive || t == LessonTypeCapacity
}

// IsValid returns true for a known booking type
func (t BookingType) IsValid() bool {
	return t == BookingTypeFlexible || t == BookingTypeFixed
}

// Booking represents one reserved lesson interval
type Booking struct {
	ID        string
	TeacherID string
	StudentID string

	// Denormalized data for the booking pages
	TeacherName      string
	StudentName      string
	StudentEmail     string
	BookingPageTitle *string

	StartAt         time.Time
	EndAt           time.Time
	DurationMinutes int

	Status       BookingStatus
	MeetingLink  string
	BookingType  BookingType
	LessonType   LessonType
	SlotID       *string
	RescheduleOf *string

	Currency      string
	PaymentAmount float64

	CancellationReason *string
	CompletedAt        *time.Time
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusPatch carries the fields written together with a status transition
type StatusPatch struct {
	MeetingLink        *string
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason *string
	UpdatedAt          time.Time
}

// OccupiesSlot returns true if the booking holds its time slot
func (b *Booking) OccupiesSlot() bool {
	return b.Status.OccupiesSlot()
}

// IsTerminal returns true if no further transition is possible
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

// CanTransitionTo returns true if the lifecycle allows moving to the target status
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	return b.Status.CanTransitionTo(target)
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.CanTransitionTo(StatusCancelled)
}

// IsParticipant returns true if the user is the booking's student or teacher
func (b *Booking) IsParticipant(userID string) bool {
	return userID != "" && (b.StudentID == userID || b.TeacherID == userID)
}

// IsTerminal returns true for completed, cancelled and rescheduled
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRescheduled
}

// OccupiesSlot returns true for statuses counted by availability checks
func (s BookingStatus) OccupiesSlot() bool {
	for _, occupying := range OccupyingStatuses {
		if s == occupying {
			return true
		}
	}
	return false
}

// IsValid returns true for a known status
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// CanTransitionTo checks the lifecycle table. Transitions are one-directional.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

var transitions = map[BookingStatus][]BookingStatus{
	StatusScheduled: {StatusConfirmed, StatusCancelled, StatusRescheduled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusRescheduled},
}

// UserBookingsFilter фильтр для получения бронирований пользователя
type UserBookingsFilter struct {
	UserID string
	Role   Role
	Status *BookingStatus
}

// BookingStats aggregated counters for a user's dashboard
type BookingStats struct {
	Upcoming  int
	Completed int
	Cancelled int
	Total     int
	ThisMonth int
}

// ComputeBookingStats aggregates bookings the way the dashboards show them:
// upcoming counts only scheduled/confirmed lessons that have not started yet,
// thisMonth counts completed lessons that started in the current month.
func ComputeBookingStats(bookings []*Booking, now time.Time) BookingStats {
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := BookingStats{Total: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case StatusScheduled, StatusConfirmed:
			if !b.StartAt.Before(now) {
				stats.Upcoming++
			}
		case StatusCompleted:
			stats.Completed++
			if !b.StartAt.Before(startOfMonth) {
				stats.ThisMonth++
			}
		case StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats
}
