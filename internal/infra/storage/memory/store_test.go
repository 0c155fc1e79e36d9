package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/booking"
	ledgerRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/ledger"
	slotRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/slot"
	teacherRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/teacher"
)

var testStart = time.Date(2025, 10, 7, 15, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	return NewStore(domain.NewSlotKeyer(time.UTC, ""))
}

func newBooking(teacherID, studentID string, lessonType domain.LessonType) *domain.Booking {
	return &domain.Booking{
		TeacherID:       teacherID,
		StudentID:       studentID,
		StartAt:         testStart,
		EndAt:           testStart.Add(time.Hour),
		DurationMinutes: 60,
		Status:          domain.StatusScheduled,
		LessonType:      lessonType,
	}
}

func TestBookingRepository_CreateAndGet(t *testing.T) {
	repo := NewBookingRepository(newTestStore())
	ctx := context.Background()

	created, err := repo.Create(ctx, newBooking("t1", "s1", domain.LessonTypeExclusive))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.StudentID)

	// изменения копии не попадают в хранилище
	got.Status = domain.StatusCancelled
	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, again.Status)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, bookingRepo.ErrBookingNotFound)
}

func TestBookingRepository_ExclusiveUniqueness(t *testing.T) {
	repo := NewBookingRepository(newTestStore())
	ctx := context.Background()

	_, err := repo.Create(ctx, newBooking("t1", "s1", domain.LessonTypeExclusive))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newBooking("t1", "s2", domain.LessonTypeExclusive))
	assert.ErrorIs(t, err, bookingRepo.ErrConflict)

	// групповые занятия не ограничиваются индексом
	_, err = repo.Create(ctx, newBooking("t1", "s3", domain.LessonTypeCapacity))
	assert.NoError(t, err)

	// другой преподаватель
	_, err = repo.Create(ctx, newBooking("t2", "s2", domain.LessonTypeExclusive))
	assert.NoError(t, err)
}

func TestBookingRepository_UpdateStatusIsConditional(t *testing.T) {
	repo := NewBookingRepository(newTestStore())
	ctx := context.Background()

	b, err := repo.Create(ctx, newBooking("t1", "s1", domain.LessonTypeExclusive))
	require.NoError(t, err)

	link := "https://meet.google.com/abc-defg-hij"
	err = repo.UpdateStatus(ctx, b.ID, domain.StatusScheduled, domain.StatusConfirmed, domain.StatusPatch{
		MeetingLink: &link,
		UpdatedAt:   time.Now(),
	})
	require.NoError(t, err)

	err = repo.UpdateStatus(ctx, b.ID, domain.StatusScheduled, domain.StatusCancelled, domain.StatusPatch{})
	assert.ErrorIs(t, err, bookingRepo.ErrStatusMismatch)

	err = repo.UpdateStatus(ctx, "missing", domain.StatusScheduled, domain.StatusCancelled, domain.StatusPatch{})
	assert.ErrorIs(t, err, bookingRepo.ErrBookingNotFound)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, link, got.MeetingLink)
}

func TestBookingRepository_Queries(t *testing.T) {
	repo := NewBookingRepository(newTestStore())
	ctx := context.Background()

	b1, err := repo.Create(ctx, newBooking("t1", "s1", domain.LessonTypeCapacity))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking("t1", "s2", domain.LessonTypeCapacity))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking("t2", "s1", domain.LessonTypeCapacity))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, b1.ID, domain.StatusScheduled, domain.StatusCancelled, domain.StatusPatch{UpdatedAt: time.Now()}))

	occupying, err := repo.GetByTeacher(ctx, "t1", domain.OccupyingStatuses)
	require.NoError(t, err)
	assert.Len(t, occupying, 1)

	all, err := repo.GetByTeacher(ctx, "t1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	asStudent, err := repo.GetByUser(ctx, domain.UserBookingsFilter{UserID: "s1", Role: domain.RoleStudent})
	require.NoError(t, err)
	assert.Len(t, asStudent, 2)

	cancelled := domain.StatusCancelled
	asTeacher, err := repo.GetByUser(ctx, domain.UserBookingsFilter{UserID: "t1", Role: domain.RoleTeacher, Status: &cancelled})
	require.NoError(t, err)
	require.Len(t, asTeacher, 1)
	assert.Equal(t, b1.ID, asTeacher[0].ID)
}

func TestLedgerRepository(t *testing.T) {
	repo := NewLedgerRepository(newTestStore())
	ctx := context.Background()
	now := time.Now()

	_, err := repo.Get(ctx, "t1", "s1")
	assert.ErrorIs(t, err, ledgerRepo.ErrBalanceNotFound)

	_, err = repo.Spend(ctx, "t1", "s1", 1, now)
	assert.ErrorIs(t, err, ledgerRepo.ErrInsufficientCredit)

	b, applied, err := repo.Grant(ctx, "t1", "s1", 5, "pay_1", now)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 5, b.RemainingLessons)

	b, applied, err = repo.Grant(ctx, "t1", "s1", 5, "pay_1", now)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 5, b.TotalLessons)

	b, err = repo.Spend(ctx, "t1", "s1", 3, now)
	require.NoError(t, err)
	assert.Equal(t, 5, b.TotalLessons)
	assert.Equal(t, 3, b.UsedLessons)
	assert.Equal(t, 2, b.RemainingLessons)

	_, err = repo.Spend(ctx, "t1", "s1", 3, now)
	assert.ErrorIs(t, err, ledgerRepo.ErrInsufficientCredit)

	b, err = repo.Get(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, b.RemainingLessons)
}

func TestTeacherRepository(t *testing.T) {
	repo := NewTeacherRepository(newTestStore())
	ctx := context.Background()

	_, err := repo.GetSettings(ctx, "t1")
	assert.ErrorIs(t, err, teacherRepo.ErrSettingsNotFound)

	_, err = repo.UpsertSettings(ctx, &domain.TeacherSettings{TeacherID: "t1", GroupSize: 4})
	require.NoError(t, err)

	s, err := repo.GetSettings(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 4, s.GroupSize)
}

func TestSlotRepository(t *testing.T) {
	repo := NewSlotRepository(newTestStore())
	ctx := context.Background()

	slot, err := repo.Create(ctx, &domain.AvailabilitySlot{TeacherID: "t1", StartAt: testStart, EndAt: testStart.Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, repo.MarkBooked(ctx, slot.ID, "s1"))
	assert.ErrorIs(t, repo.MarkBooked(ctx, slot.ID, "s2"), slotRepo.ErrSlotAlreadyBooked)

	require.NoError(t, repo.Release(ctx, slot.ID))
	assert.NoError(t, repo.MarkBooked(ctx, slot.ID, "s2"))

	slots, err := repo.ListByTeacher(ctx, "t1", testStart.Add(-time.Hour), testStart.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "s2", *slots[0].BookedBy)

	assert.ErrorIs(t, repo.Release(ctx, "missing"), slotRepo.ErrSlotNotFound)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	store := newTestStore()
	repo := NewBookingRepository(store)
	tx := NewTxManager(store)
	ctx := context.Background()
	boom := errors.New("boom")

	err := tx.DoSerializable(ctx, func(txCtx context.Context) error {
		if _, err := repo.Create(txCtx, newBooking("t1", "s1", domain.LessonTypeExclusive)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := repo.GetByTeacher(ctx, "t1", nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTxManager_RollbackUndoesOnlyOwnWrites(t *testing.T) {
	store := newTestStore()
	bookings := NewBookingRepository(store)
	ledger := NewLedgerRepository(store)
	slots := NewSlotRepository(store)
	teachers := NewTeacherRepository(store)
	tx := NewTxManager(store)
	ctx := context.Background()
	now := time.Now()

	b, err := bookings.Create(ctx, newBooking("t1", "s1", domain.LessonTypeExclusive))
	require.NoError(t, err)
	_, _, err = ledger.Grant(ctx, "t1", "s1", 2, "pay_1", now)
	require.NoError(t, err)
	slot, err := slots.Create(ctx, &domain.AvailabilitySlot{TeacherID: "t1", StartAt: testStart, EndAt: testStart.Add(time.Hour)})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tx.Do(ctx, func(txCtx context.Context) error {
		if _, err := ledger.Spend(txCtx, "t1", "s1", 1, now); err != nil {
			return err
		}
		if _, _, err := ledger.Grant(txCtx, "t1", "s1", 3, "pay_2", now); err != nil {
			return err
		}
		if err := bookings.UpdateStatus(txCtx, b.ID, domain.StatusScheduled, domain.StatusConfirmed, domain.StatusPatch{UpdatedAt: now}); err != nil {
			return err
		}
		if err := slots.MarkBooked(txCtx, slot.ID, "s1"); err != nil {
			return err
		}
		if _, err := teachers.UpsertSettings(txCtx, &domain.TeacherSettings{TeacherID: "t1", GroupSize: 3}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	balance, err := ledger.Get(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, balance.TotalLessons)
	assert.Equal(t, 2, balance.RemainingLessons)

	// ссылка из откаченной транзакции не считается обработанной
	_, applied, err := ledger.Grant(ctx, "t1", "s1", 3, "pay_2", now)
	require.NoError(t, err)
	assert.True(t, applied)

	// ссылка, записанная до транзакции, сохранилась
	_, applied, err = ledger.Grant(ctx, "t1", "s1", 2, "pay_1", now)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, got.Status)

	storedSlot, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, storedSlot.IsBooked)

	_, err = teachers.GetSettings(ctx, "t1")
	assert.ErrorIs(t, err, teacherRepo.ErrSettingsNotFound)
}

func TestTxManager_FailedTransactionKeepsConcurrentWrites(t *testing.T) {
	store := newTestStore()
	bookings := NewBookingRepository(store)
	ledger := NewLedgerRepository(store)
	tx := NewTxManager(store)
	ctx := context.Background()
	now := time.Now()

	other := newBooking("t1", "s1", domain.LessonTypeExclusive)
	other.StartAt = testStart.Add(-24 * time.Hour)
	other.EndAt = other.StartAt.Add(time.Hour)
	b, err := bookings.Create(ctx, other)
	require.NoError(t, err)

	inside := make(chan struct{})
	release := make(chan struct{})
	txErr := make(chan error, 1)
	go func() {
		txErr <- tx.DoSerializable(ctx, func(txCtx context.Context) error {
			if _, err := bookings.Create(txCtx, newBooking("t1", "s2", domain.LessonTypeExclusive)); err != nil {
				return err
			}
			close(inside)
			<-release
			return errors.New("boom")
		})
	}()
	<-inside

	writeErr := make(chan error, 1)
	go func() {
		if err := bookings.UpdateStatus(ctx, b.ID, domain.StatusScheduled, domain.StatusConfirmed, domain.StatusPatch{UpdatedAt: now}); err != nil {
			writeErr <- err
			return
		}
		_, _, err := ledger.Grant(ctx, "t1", "s1", 1, "pay_1", now)
		writeErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	require.Error(t, <-txErr)
	require.NoError(t, <-writeErr)

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	balance, err := ledger.Get(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, balance.RemainingLessons)

	all, err := bookings.GetByTeacher(ctx, "t1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTxManager_NestedAndSerialized(t *testing.T) {
	store := newTestStore()
	tx := NewTxManager(store)
	ctx := context.Background()

	// вложенная транзакция не блокируется
	err := tx.DoSerializable(ctx, func(txCtx context.Context) error {
		return tx.Do(txCtx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tx.DoSerializable(ctx, func(context.Context) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}
