package domain

// Default configuration values
const (
	DefaultGroupSize   = 10
	DefaultCurrency    = "CAD"
	DefaultBookingType = BookingTypeFlexible
)

// Business validation constants
const (
	MinGroupSize                = 1
	MaxGroupSize                = 100
	MinLessonDurationMinutes    = 5
	MaxLessonDurationMinutes    = 480 // 8 hours
	MaxCancellationReasonLength = 500
	MaxCreditsPerGrant          = 1000
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// OccupyingStatuses статусы бронирований, которые занимают слот.
// Используется при подсчёте доступности и при создании бронирования.
var OccupyingStatuses = []BookingStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusCompleted,
}

// ReleasedStatuses статусы, при которых слот свободен
var ReleasedStatuses = []BookingStatus{
	StatusCancelled,
	StatusRescheduled,
}
