package domain

import (
	"strings"
	"time"
)

// AvailabilitySlot is a fixed slot a teacher pre-published on the booking page
type AvailabilitySlot struct {
	ID        string
	TeacherID string
	StartAt   time.Time
	EndAt     time.Time
	IsBooked  bool
	BookedBy  *string // student ID
	CreatedAt time.Time
}

// DurationMinutes returns the slot length
func (s *AvailabilitySlot) DurationMinutes() int {
	return int(s.EndAt.Sub(s.StartAt) / time.Minute)
}

// CandidateSlot is a (date, time) a client wants to check or book
type CandidateSlot struct {
	Date            Instant
	Time            string
	DurationMinutes int
}

// SlotAvailability is the result of checking one slot
type SlotAvailability struct {
	Available       bool
	CurrentBookings int
	MaxSize         int
	// Degraded is set when bookings could not be read and the check failed open
	Degraded bool
}

// SlotKey identifies a lesson time of a teacher after normalization
type SlotKey struct {
	TeacherID string
	Date      string
	Time      string
}

// String returns the key used for locking
func (k SlotKey) String() string {
	return strings.Join([]string{k.TeacherID, k.Date, k.Time}, "|")
}

// SlotKeyer maps bookings and candidates to slot keys in one time zone and
// one time-of-day layout, so that both sides of a comparison agree.
type SlotKeyer struct {
	Location   *time.Location
	TimeLayout string
}

// NewSlotKeyer creates a keyer, falling back to UTC and HH:MM
func NewSlotKeyer(loc *time.Location, timeLayout string) SlotKeyer {
	if loc == nil {
		loc = time.UTC
	}
	if timeLayout == "" {
		timeLayout = TimeFormat
	}
	return SlotKeyer{Location: loc, TimeLayout: timeLayout}
}

// ForBooking returns the key a stored booking occupies
func (k SlotKeyer) ForBooking(b *Booking) SlotKey {
	return k.ForStart(b.TeacherID, b.StartAt)
}

// ForStart returns the key of a lesson starting at startAt
func (k SlotKeyer) ForStart(teacherID string, startAt time.Time) SlotKey {
	return SlotKey{
		TeacherID: teacherID,
		Date:      NormalizeDate(NativeInstant(startAt), k.Location),
		Time:      FormatTimeKey(startAt, k.Location, k.TimeLayout),
	}
}

// ForCandidate returns the key of a client candidate. The time is kept verbatim.
func (k SlotKeyer) ForCandidate(teacherID string, date Instant, clock string) SlotKey {
	return SlotKey{
		TeacherID: teacherID,
		Date:      NormalizeDate(date, k.Location),
		Time:      clock,
	}
}

// SlotOccupancy describes the occupying bookings at one key
type SlotOccupancy struct {
	Count int
	// Exclusive is set when one of them is a 1-on-1 lesson
	Exclusive bool
}

// OccupancyAtKey collects occupying bookings at the key, skipping excludeID.
// Bookings of both lesson types are counted together.
func (k SlotKeyer) OccupancyAtKey(bookings []*Booking, key SlotKey, excludeID string) SlotOccupancy {
	var occ SlotOccupancy
	for _, b := range bookings {
		if b == nil || !b.OccupiesSlot() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if k.ForBooking(b) == key {
			occ.Count++
			if b.LessonType == LessonTypeExclusive {
				occ.Exclusive = true
			}
		}
	}
	return occ
}

// CountAtKey counts occupying bookings at the key, skipping excludeID
func (k SlotKeyer) CountAtKey(bookings []*Booking, key SlotKey, excludeID string) int {
	return k.OccupancyAtKey(bookings, key, excludeID).Count
}

// Evaluate applies the lesson type policy. A key held by a 1-on-1 lesson
// is closed to group bookings as well.
func (o SlotOccupancy) Evaluate(lessonType LessonType, maxSize int) SlotAvailability {
	availability := EvaluateSlot(o.Count, lessonType, maxSize)
	if o.Exclusive {
		availability.Available = false
	}
	return availability
}

// EvaluateSlot applies the lesson type policy to the number of bookings at a key.
// Exclusive slots hold one booking; capacity slots hold up to maxSize.
func EvaluateSlot(count int, lessonType LessonType, maxSize int) SlotAvailability {
	if lessonType == LessonTypeExclusive {
		return SlotAvailability{
			Available:       count == 0,
			CurrentBookings: count,
			MaxSize:         1,
		}
	}

	if maxSize <= 0 {
		maxSize = DefaultGroupSize
	}
	return SlotAvailability{
		Available:       count < maxSize,
		CurrentBookings: count,
		MaxSize:         maxSize,
	}
}
