package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/slot"
)

// SlotRepository опубликованные слоты в памяти
type SlotRepository struct {
	store *Store
}

func NewSlotRepository(store *Store) *SlotRepository {
	return &SlotRepository{store: store}
}

func (r *SlotRepository) Create(ctx context.Context, slot *domain.AvailabilitySlot) (*domain.AvailabilitySlot, error) {
	s := r.store
	err := s.write(ctx, func(tx *txLog) error {
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.CreatedAt = s.now()
		s.setSlot(tx, slot.ID, copySlot(slot))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	return copySlot(slot), nil
}

func (r *SlotRepository) ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]*domain.AvailabilitySlot, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AvailabilitySlot, 0)
	for _, slot := range s.slots {
		if slot.TeacherID != teacherID {
			continue
		}
		if !from.IsZero() && slot.StartAt.Before(from) {
			continue
		}
		if !to.IsZero() && !slot.StartAt.Before(to) {
			continue
		}
		result = append(result, copySlot(slot))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartAt.Before(result[j].StartAt)
	})
	return result, nil
}

func (r *SlotRepository) MarkBooked(ctx context.Context, id string, studentID string) error {
	s := r.store
	return s.write(ctx, func(tx *txLog) error {
		slot, ok := s.slots[id]
		if !ok {
			return slotRepo.ErrSlotNotFound
		}
		if slot.IsBooked {
			return slotRepo.ErrSlotAlreadyBooked
		}

		updated := copySlot(slot)
		updated.IsBooked = true
		updated.BookedBy = &studentID
		s.setSlot(tx, id, updated)
		return nil
	})
}

func (r *SlotRepository) Release(ctx context.Context, id string) error {
	s := r.store
	return s.write(ctx, func(tx *txLog) error {
		slot, ok := s.slots[id]
		if !ok {
			return slotRepo.ErrSlotNotFound
		}

		updated := copySlot(slot)
		updated.IsBooked = false
		updated.BookedBy = nil
		s.setSlot(tx, id, updated)
		return nil
	})
}

func (s *Store) setSlot(tx *txLog, id string, slot *domain.AvailabilitySlot) {
	prev, existed := s.slots[id]
	tx.onRollback(func() {
		if existed {
			s.slots[id] = prev
			return
		}
		delete(s.slots, id)
	})
	s.slots[id] = slot
}
