package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxClassTitleLength bounds the booking page title
const MaxClassTitleLength = 200

// TeacherSettings is the booking configuration of a teacher.
// The class profile (title, duration, price, currency) fills in what a booking
// request leaves out; zero values mean "not set".
type TeacherSettings struct {
	TeacherID     string
	GroupSize     int // capacity of group lessons
	ClassTitle    string
	ClassDuration int // minutes
	ClassPrice    float64
	Currency      string
	UpdatedAt     time.Time
}

// ValidateClassProfile checks the optional class profile fields
func (s *TeacherSettings) ValidateClassProfile() error {
	var errs ValidationErrors

	if utf8.RuneCountInString(s.ClassTitle) > MaxClassTitleLength {
		errs = append(errs, fmt.Sprintf("classTitle must be at most %d characters", MaxClassTitleLength))
	}
	if s.ClassDuration != 0 && (s.ClassDuration < MinLessonDurationMinutes || s.ClassDuration > MaxLessonDurationMinutes) {
		errs = append(errs, fmt.Sprintf("classDuration must be between %d and %d minutes",
			MinLessonDurationMinutes, MaxLessonDurationMinutes))
	}
	if s.ClassPrice < 0 {
		errs = append(errs, "classPrice must not be negative")
	}
	if s.Currency != "" && !isCurrencyCode(s.Currency) {
		errs = append(errs, "currency must be a 3-letter code")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// NormalizeCurrency trims and upper-cases a currency code
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// IsValidGroupSize returns true if the group size is within limits
func IsValidGroupSize(size int) bool {
	return size >= MinGroupSize && size <= MaxGroupSize
}

// ResolveGroupSize picks the capacity of a group lesson: an explicit size wins,
// then the teacher's settings, then the fallback.
func ResolveGroupSize(explicit int, settings *TeacherSettings, fallback int) int {
	if explicit > 0 {
		return explicit
	}
	if settings != nil && settings.GroupSize > 0 {
		return settings.GroupSize
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultGroupSize
}
