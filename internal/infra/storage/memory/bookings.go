package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/booking"
)

// BookingRepository бронирования в памяти
type BookingRepository struct {
	store *Store
}

// NewBookingRepository создает репозиторий бронирований поверх store
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// Create сохраняет бронирование. Как и уникальный индекс в PostgreSQL, не даёт
// записать второе занимающее слот индивидуальное занятие на тот же ключ.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s := r.store
	err := s.write(ctx, func(tx *txLog) error {
		if booking.ID == "" {
			booking.ID = uuid.NewString()
		}
		if _, exists := s.bookings[booking.ID]; exists {
			return fmt.Errorf("%w: Create - duplicate id %s", bookingRepo.ErrConflict, booking.ID)
		}

		if booking.LessonType == domain.LessonTypeExclusive && booking.OccupiesSlot() {
			key := s.keyer.ForBooking(booking)
			for _, other := range s.bookings {
				if other.LessonType == domain.LessonTypeExclusive && other.OccupiesSlot() && s.keyer.ForBooking(other) == key {
					return fmt.Errorf("%w: Create - slot %s", bookingRepo.ErrConflict, key)
				}
			}
		}

		now := s.now()
		booking.CreatedAt = now
		booking.UpdatedAt = now

		id := booking.ID
		s.bookings[id] = copyBooking(booking)
		tx.onRollback(func() { delete(s.bookings, id) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

// GetByTeacher получает бронирования преподавателя в указанных статусах
func (r *BookingRepository) GetByTeacher(ctx context.Context, teacherID string, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.TeacherID != teacherID || !hasStatus(statuses, b.Status) {
			continue
		}
		result = append(result, copyBooking(b))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartAt.Before(result[j].StartAt)
	})
	return result, nil
}

// GetByUser получает бронирования пользователя по роли
func (r *BookingRepository) GetByUser(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		owner := b.StudentID
		if filter.Role == domain.RoleTeacher {
			owner = b.TeacherID
		}
		if owner != filter.UserID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		result = append(result, copyBooking(b))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartAt.After(result[j].StartAt)
	})
	return result, nil
}

// UpdateStatus условный переход статуса from -> to
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, patch domain.StatusPatch) error {
	s := r.store
	return s.write(ctx, func(tx *txLog) error {
		b, ok := s.bookings[id]
		if !ok {
			return bookingRepo.ErrBookingNotFound
		}
		if b.Status != from {
			return fmt.Errorf("%w: id=%s expected=%s", bookingRepo.ErrStatusMismatch, id, from)
		}

		prev := copyBooking(b)
		tx.onRollback(func() { s.bookings[id] = prev })

		b.Status = to
		b.UpdatedAt = patch.UpdatedAt
		if patch.MeetingLink != nil {
			b.MeetingLink = *patch.MeetingLink
		}
		if patch.CompletedAt != nil {
			b.CompletedAt = copyTime(patch.CompletedAt)
		}
		if patch.CancelledAt != nil {
			b.CancelledAt = copyTime(patch.CancelledAt)
		}
		if patch.CancellationReason != nil {
			b.CancellationReason = copyString(patch.CancellationReason)
		}
		return nil
	})
}

func hasStatus(statuses []domain.BookingStatus, status domain.BookingStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
