package domain

import "time"

// LessonBalance is the lesson credit of a student with one teacher.
// RemainingLessons always equals TotalLessons - UsedLessons and is never negative.
type LessonBalance struct {
	TeacherID        string
	StudentID        string
	TotalLessons     int
	UsedLessons      int
	RemainingLessons int
	LastUpdated      time.Time
}

// NewLessonBalance returns the zero baseline row of a (teacher, student) pair
func NewLessonBalance(teacherID, studentID string) *LessonBalance {
	return &LessonBalance{
		TeacherID: teacherID,
		StudentID: studentID,
	}
}

// CanSpend returns true if count lessons can be spent
func (b *LessonBalance) CanSpend(count int) bool {
	return count > 0 && b.RemainingLessons >= count
}

// IsConsistent checks the balance invariant
func (b *LessonBalance) IsConsistent() bool {
	return b.RemainingLessons == b.TotalLessons-b.UsedLessons && b.RemainingLessons >= 0
}

// ApplyGrant adds count lessons
func (b *LessonBalance) ApplyGrant(count int, now time.Time) {
	b.TotalLessons += count
	b.RemainingLessons = b.TotalLessons - b.UsedLessons
	b.LastUpdated = now
}

// ApplySpend uses count lessons. Returns ErrInsufficientCredit and leaves the
// balance untouched when there is not enough credit.
func (b *LessonBalance) ApplySpend(count int, now time.Time) error {
	if !b.CanSpend(count) {
		return ErrInsufficientCredit
	}
	b.UsedLessons += count
	b.RemainingLessons = b.TotalLessons - b.UsedLessons
	b.LastUpdated = now
	return nil
}
