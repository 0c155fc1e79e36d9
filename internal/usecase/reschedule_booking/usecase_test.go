package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-LessonBookingService/pkg/keymutex"
	"github.com/m04kA/SMC-LessonBookingService/pkg/logger"
	"github.com/m04kA/SMC-LessonBookingService/pkg/redislock"
)

// conflictingBookingRepo PostgreSQL отвечает 40001/40P01 на чтение или на условное обновление
type conflictingBookingRepo struct {
	*memory.BookingRepository
	failRead   bool
	failUpdate bool
}

func (r conflictingBookingRepo) GetByTeacher(ctx context.Context, teacherID string, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	if r.failRead {
		return nil, fmt.Errorf("%w: GetByTeacher: %v", bookingRepo.ErrConflict, &pq.Error{Code: "40001"})
	}
	return r.BookingRepository.GetByTeacher(ctx, teacherID, statuses)
}

func (r conflictingBookingRepo) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, patch domain.StatusPatch) error {
	if r.failUpdate {
		return fmt.Errorf("%w: UpdateStatus: %v", bookingRepo.ErrConflict, &pq.Error{Code: "40P01"})
	}
	return r.BookingRepository.UpdateStatus(ctx, id, from, to, patch)
}

type failingLocker struct {
	err error
}

func (l failingLocker) Acquire(context.Context, string) (func(), error) {
	return nil, l.err
}

type stubMetrics struct {
	conflicts   int
	transitions int
}

func (m *stubMetrics) IncBookingConflict(string)  { m.conflicts++ }
func (m *stubMetrics) IncStatusTransition(string) { m.transitions++ }

var lessonStart = time.Date(2025, 10, 7, 15, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	keyer    domain.SlotKeyer
	bookings *memory.BookingRepository
	slots    *memory.SlotRepository
	metrics  *stubMetrics
	uc       *UseCase
}

func newFixture() *fixture {
	keyer := domain.NewSlotKeyer(time.UTC, "")
	store := memory.NewStore(keyer)
	f := &fixture{
		store:    store,
		keyer:    keyer,
		bookings: memory.NewBookingRepository(store),
		slots:    memory.NewSlotRepository(store),
		metrics:  &stubMetrics{},
	}
	f.uc = NewUseCase(
		f.bookings,
		memory.NewTeacherRepository(store),
		f.slots,
		keymutex.New(),
		memory.NewTxManager(store),
		keyer,
		0,
		f.metrics,
		logger.NewNop(),
	)
	return f
}

func (f *fixture) book(t *testing.T, studentID string, start time.Time, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), &domain.Booking{
		TeacherID:       "teacher-1",
		StudentID:       studentID,
		StartAt:         start,
		EndAt:           start.Add(time.Hour),
		DurationMinutes: 60,
		Status:          status,
		LessonType:      domain.LessonTypeExclusive,
		MeetingLink:     "https://meet.google.com/abc-defg-hij",
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) occupied(t *testing.T, start time.Time) int {
	t.Helper()
	bookings, err := f.bookings.GetByTeacher(context.Background(), "teacher-1", domain.OccupyingStatuses)
	require.NoError(t, err)
	return f.keyer.CountAtKey(bookings, f.keyer.ForStart("teacher-1", start), "")
}

func TestExecute_MovesOccupancy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old := f.book(t, "s1", lessonStart, domain.StatusConfirmed)
	newStart := lessonStart.Add(24 * time.Hour)

	resp, err := f.uc.Execute(ctx, &Request{BookingID: old.ID, ActorID: "s1", NewStartAt: newStart})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRescheduled, resp.Previous.Status)
	require.NotNil(t, resp.Booking.RescheduleOf)
	assert.Equal(t, old.ID, *resp.Booking.RescheduleOf)
	assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
	assert.Equal(t, old.MeetingLink, resp.Booking.MeetingLink)
	assert.Equal(t, 60, resp.Booking.DurationMinutes)

	assert.Equal(t, 0, f.occupied(t, lessonStart))
	assert.Equal(t, 1, f.occupied(t, newStart))

	stored, err := f.bookings.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRescheduled, stored.Status)
	assert.Equal(t, 1, f.metrics.transitions)
}

func TestExecute_SameSlotIgnoresItself(t *testing.T) {
	f := newFixture()
	old := f.book(t, "s1", lessonStart, domain.StatusScheduled)

	// тот же ключ, другая длительность
	resp, err := f.uc.Execute(context.Background(), &Request{
		BookingID:  old.ID,
		ActorID:    "teacher-1",
		NewStartAt: lessonStart,
		NewEndAt:   lessonStart.Add(30 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.Booking.DurationMinutes)
	assert.Equal(t, 1, f.occupied(t, lessonStart))
}

func TestExecute_TargetTaken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old := f.book(t, "s1", lessonStart, domain.StatusScheduled)
	other := lessonStart.Add(2 * time.Hour)
	f.book(t, "s2", other, domain.StatusScheduled)

	_, err := f.uc.Execute(ctx, &Request{BookingID: old.ID, ActorID: "s1", NewStartAt: other})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, f.metrics.conflicts)

	// старое бронирование не тронуто
	stored, err := f.bookings.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, stored.Status)
}

func TestExecute_Rules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.book(t, "s1", lessonStart, domain.StatusScheduled)
	newStart := lessonStart.Add(time.Hour)

	_, err := f.uc.Execute(ctx, &Request{BookingID: b.ID, ActorID: "stranger", NewStartAt: newStart})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.uc.Execute(ctx, &Request{BookingID: "missing", ActorID: "s1", NewStartAt: newStart})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, ActorID: "s1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.bookings.UpdateStatus(ctx, b.ID, domain.StatusScheduled, domain.StatusCancelled, domain.StatusPatch{UpdatedAt: time.Now()}))
	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, ActorID: "s1", NewStartAt: newStart})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestExecute_ReleasesPublishedSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	slot, err := f.slots.Create(ctx, &domain.AvailabilitySlot{TeacherID: "teacher-1", StartAt: lessonStart, EndAt: lessonStart.Add(time.Hour)})
	require.NoError(t, err)
	require.NoError(t, f.slots.MarkBooked(ctx, slot.ID, "s1"))

	old, err := f.bookings.Create(ctx, &domain.Booking{
		TeacherID:       "teacher-1",
		StudentID:       "s1",
		StartAt:         lessonStart,
		EndAt:           lessonStart.Add(time.Hour),
		DurationMinutes: 60,
		Status:          domain.StatusScheduled,
		LessonType:      domain.LessonTypeExclusive,
		BookingType:     domain.BookingTypeFixed,
		SlotID:          &slot.ID,
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(ctx, &Request{BookingID: old.ID, ActorID: "s1", NewStartAt: lessonStart.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.Nil(t, resp.Booking.SlotID)
	assert.Equal(t, domain.BookingTypeFlexible, resp.Booking.BookingType)

	stored, err := f.slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBooked)
}

func (f *fixture) withRepoAndLocker(repo BookingRepository, locker SlotLocker) *UseCase {
	return NewUseCase(
		repo,
		memory.NewTeacherRepository(f.store),
		f.slots,
		locker,
		memory.NewTxManager(f.store),
		f.keyer,
		0,
		f.metrics,
		logger.NewNop(),
	)
}

func TestExecute_DatabaseConflictIsSlotConflict(t *testing.T) {
	for _, tc := range []struct {
		name       string
		failRead   bool
		failUpdate bool
	}{
		{name: "read of occupying bookings", failRead: true},
		{name: "conditional status update", failUpdate: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			b := f.book(t, "s1", lessonStart, domain.StatusScheduled)
			uc := f.withRepoAndLocker(conflictingBookingRepo{
				BookingRepository: f.bookings,
				failRead:          tc.failRead,
				failUpdate:        tc.failUpdate,
			}, nil)

			_, err := uc.Execute(context.Background(), &Request{
				BookingID:  b.ID,
				ActorID:    "s1",
				NewStartAt: lessonStart.Add(2 * time.Hour),
			})
			assert.ErrorIs(t, err, ErrSlotNotAvailable)
			assert.ErrorIs(t, err, domain.ErrConflict)
			assert.NotErrorIs(t, err, ErrInternal)
			assert.Equal(t, 1, f.metrics.conflicts)

			stored, err := f.bookings.GetByID(context.Background(), b.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusScheduled, stored.Status)
		})
	}
}

func TestExecute_LockerUnavailableIsInternal(t *testing.T) {
	f := newFixture()
	b := f.book(t, "s1", lessonStart, domain.StatusScheduled)
	req := &Request{BookingID: b.ID, ActorID: "s1", NewStartAt: lessonStart.Add(2 * time.Hour)}

	uc := f.withRepoAndLocker(f.bookings, failingLocker{err: errors.New("redislock: set key: i/o timeout")})
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 0, f.metrics.conflicts)

	uc = f.withRepoAndLocker(f.bookings, failingLocker{err: fmt.Errorf("%w: key", redislock.ErrNotAcquired)})
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 1, f.metrics.conflicts)
}
