package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationErrors collects every problem found in a booking payload
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) work
func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// ValidateBookingData checks that a booking is well formed before it is written.
// All violations are reported together.
func ValidateBookingData(b *Booking) error {
	if b == nil {
		return fmt.Errorf("%w: booking is required", ErrValidation)
	}

	var errs ValidationErrors

	if strings.TrimSpace(b.StudentID) == "" {
		errs = append(errs, "studentId is required")
	}
	if strings.TrimSpace(b.TeacherID) == "" {
		errs = append(errs, "teacherId is required")
	}
	if b.StartAt.IsZero() {
		errs = append(errs, "startAt is required")
	}
	if b.EndAt.IsZero() {
		errs = append(errs, "endAt is required")
	}
	if b.DurationMinutes <= 0 {
		errs = append(errs, "duration must be positive")
	}
	if b.Status == "" {
		errs = append(errs, "status is required")
	} else if !b.Status.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown status %q", b.Status))
	}

	if !b.StartAt.IsZero() && !b.EndAt.IsZero() {
		if !b.EndAt.After(b.StartAt) {
			errs = append(errs, "endAt must be after startAt")
		} else if b.DurationMinutes > 0 && int(b.EndAt.Sub(b.StartAt).Minutes()) != b.DurationMinutes {
			errs = append(errs, "duration must equal endAt - startAt")
		}
	}

	if b.BookingType != "" && !b.BookingType.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown bookingType %q", b.BookingType))
	}
	if b.LessonType != "" && !b.LessonType.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown lessonType %q", b.LessonType))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsValidationError reports whether err is a booking validation failure
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
