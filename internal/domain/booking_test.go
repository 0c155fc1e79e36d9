package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     BookingStatus
		to       BookingStatus
		expected bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusRescheduled, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusRescheduled, true},
		{StatusConfirmed, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusRescheduled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBooking_OccupiesSlot(t *testing.T) {
	for _, s := range OccupyingStatuses {
		assert.True(t, (&Booking{Status: s}).OccupiesSlot(), s)
	}
	for _, s := range ReleasedStatuses {
		assert.False(t, (&Booking{Status: s}).OccupiesSlot(), s)
	}
}

func TestBooking_IsParticipant(t *testing.T) {
	b := &Booking{TeacherID: "t1", StudentID: "s1"}

	assert.True(t, b.IsParticipant("t1"))
	assert.True(t, b.IsParticipant("s1"))
	assert.False(t, b.IsParticipant("s2"))
	assert.False(t, b.IsParticipant(""))
}

func TestComputeBookingStats(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	bookings := []*Booking{
		{Status: StatusScheduled, StartAt: now.Add(24 * time.Hour)},
		{Status: StatusConfirmed, StartAt: now.Add(48 * time.Hour)},
		{Status: StatusConfirmed, StartAt: now.Add(-48 * time.Hour)}, // прошедшее, не upcoming
		{Status: StatusCompleted, StartAt: time.Date(2025, 10, 2, 10, 0, 0, 0, time.UTC)},
		{Status: StatusCompleted, StartAt: time.Date(2025, 9, 28, 10, 0, 0, 0, time.UTC)},
		{Status: StatusCancelled, StartAt: now.Add(24 * time.Hour)},
		{Status: StatusRescheduled, StartAt: now.Add(24 * time.Hour)},
	}

	stats := ComputeBookingStats(bookings, now)

	assert.Equal(t, BookingStats{
		Upcoming:  2,
		Completed: 2,
		Cancelled: 1,
		Total:     7,
		ThisMonth: 1,
	}, stats)
}

func TestLessonBalance_GrantSpend(t *testing.T) {
	now := time.Now()
	b := NewLessonBalance("t1", "s1")

	assert.ErrorIs(t, b.ApplySpend(1, now), ErrInsufficientCredit)
	assert.Equal(t, 0, b.TotalLessons)
	assert.Equal(t, 0, b.UsedLessons)

	b.ApplyGrant(5, now)
	assert.NoError(t, b.ApplySpend(3, now))

	assert.Equal(t, 5, b.TotalLessons)
	assert.Equal(t, 3, b.UsedLessons)
	assert.Equal(t, 2, b.RemainingLessons)
	assert.True(t, b.IsConsistent())

	assert.ErrorIs(t, b.ApplySpend(3, now), ErrInsufficientCredit)
	assert.Equal(t, 2, b.RemainingLessons)
}

func TestResolveGroupSize(t *testing.T) {
	assert.Equal(t, 3, ResolveGroupSize(3, &TeacherSettings{GroupSize: 6}, 10))
	assert.Equal(t, 6, ResolveGroupSize(0, &TeacherSettings{GroupSize: 6}, 10))
	assert.Equal(t, 8, ResolveGroupSize(0, nil, 8))
	assert.Equal(t, DefaultGroupSize, ResolveGroupSize(0, nil, 0))
}
