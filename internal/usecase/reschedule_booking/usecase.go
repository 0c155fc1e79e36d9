package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/slot"
	teacherRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/teacher"
	"github.com/m04kA/SMC-LessonBookingService/pkg/redislock"
	"github.com/m04kA/SMC-LessonBookingService/pkg/txmanager"
)

const metricsOperation = "reschedule"

// UseCase перенос занятия на новое время.
// Старое бронирование получает статус rescheduled, новое ссылается на него через RescheduleOf
type UseCase struct {
	bookingRepo      BookingRepository
	teacherRepo      TeacherRepository
	slotRepo         SlotRepository
	locker           SlotLocker
	txManager        TransactionManager
	keyer            domain.SlotKeyer
	defaultGroupSize int
	metrics          Metrics
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case. locker может быть nil.
func NewUseCase(
	bookingRepo BookingRepository,
	teacherRepo TeacherRepository,
	slotRepo SlotRepository,
	locker SlotLocker,
	txManager TransactionManager,
	keyer domain.SlotKeyer,
	defaultGroupSize int,
	metrics Metrics,
	logger Logger,
) *UseCase {
	if defaultGroupSize <= 0 {
		defaultGroupSize = domain.DefaultGroupSize
	}
	return &UseCase{
		bookingRepo:      bookingRepo,
		teacherRepo:      teacherRepo,
		slotRepo:         slotRepo,
		locker:           locker,
		txManager:        txManager,
		keyer:            keyer,
		defaultGroupSize: defaultGroupSize,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute переносит бронирование. Проверка нового времени (без учёта переносимого
// бронирования), смена статуса старого и вставка нового выполняются в одной транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%s, user=%s, newStart=%s",
		req.BookingID, req.ActorID, req.NewStartAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Ключ нового слота зависит от преподавателя
	current, err := uc.getBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	key := uc.keyer.ForStart(current.TeacherID, req.NewStartAt)

	// 3. Блокировка нового ключа
	if uc.locker != nil {
		release, err := uc.locker.Acquire(ctx, key.String())
		if err != nil {
			return nil, uc.lockError(key, err)
		}
		defer release()
	}

	var result Response

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Перечитываем бронирование внутри транзакции
		old, err := uc.getBooking(txCtx, req.BookingID)
		if err != nil {
			return err
		}

		if !old.IsParticipant(req.ActorID) {
			uc.logger.Warn("RescheduleBooking: user=%s is not a participant of booking id=%s", req.ActorID, old.ID)
			return ErrAccessDenied
		}

		if !old.CanTransitionTo(domain.StatusRescheduled) {
			uc.logger.Error("RescheduleBooking: booking id=%s cannot be rescheduled from status=%s", old.ID, old.Status)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, old.Status, domain.StatusRescheduled)
		}

		now := uc.timeProvider.Now()
		replacement := buildReplacement(old, req, now)
		if err := domain.ValidateBookingData(replacement); err != nil {
			uc.logger.Warn("RescheduleBooking: invalid replacement booking: %v", err)
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		// 4.2. Проверка нового времени без учёта переносимого бронирования
		maxSize, err := uc.resolveMaxSize(txCtx, old, req.MaxGroupSize)
		if err != nil {
			return err
		}

		bookings, err := uc.bookingRepo.GetByTeacher(txCtx, old.TeacherID, domain.OccupyingStatuses)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrConflict) {
				uc.logger.Warn("RescheduleBooking: bookings of teacher=%s locked concurrently: %v", old.TeacherID, err)
				return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
			}
			uc.logger.Error("RescheduleBooking: failed to get bookings of teacher=%s: %v", old.TeacherID, err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		availability := uc.keyer.OccupancyAtKey(bookings, key, old.ID).Evaluate(old.LessonType, maxSize)
		if !availability.Available {
			uc.logger.Warn("RescheduleBooking: slot %s not available, %d/%d spots taken",
				key, availability.CurrentBookings, availability.MaxSize)
			return ErrSlotNotAvailable
		}

		// 4.3. Сначала освобождаем старый слот, затем занимаем новый
		if err := uc.bookingRepo.UpdateStatus(txCtx, old.ID, old.Status, domain.StatusRescheduled, domain.StatusPatch{UpdatedAt: now}); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusMismatch) || errors.Is(err, bookingRepo.ErrConflict) {
				uc.logger.Warn("RescheduleBooking: booking id=%s changed concurrently: %v", old.ID, err)
				return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
			}
			uc.logger.Error("RescheduleBooking: failed to update booking id=%s: %v", old.ID, err)
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		created, err := uc.bookingRepo.Create(txCtx, replacement)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrConflict) {
				uc.logger.Warn("RescheduleBooking: slot %s taken concurrently: %v", key, err)
				return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
			}
			uc.logger.Error("RescheduleBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		if old.SlotID != nil {
			if err := uc.slotRepo.Release(txCtx, *old.SlotID); err != nil && !errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Error("RescheduleBooking: failed to release slot id=%s: %v", *old.SlotID, err)
				return fmt.Errorf("%w: failed to release slot: %v", ErrInternal, err)
			}
		}

		old.Status = domain.StatusRescheduled
		old.UpdatedAt = now
		result.Previous = old
		result.Booking = created
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerialization) {
			uc.logger.Warn("RescheduleBooking: serialization conflict on slot %s: %v", key, err)
			err = fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
		}
		if errors.Is(err, domain.ErrConflict) {
			uc.metrics.IncBookingConflict(metricsOperation)
		}
		return nil, err
	}

	uc.metrics.IncStatusTransition(string(domain.StatusRescheduled))
	uc.logger.Info("RescheduleBooking: booking id=%s moved to id=%s on slot %s",
		result.Previous.ID, result.Booking.ID, key)

	return &result, nil
}

func (uc *UseCase) getBooking(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := uc.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	return booking, nil
}

func (uc *UseCase) resolveMaxSize(ctx context.Context, old *domain.Booking, explicit int) (int, error) {
	if old.LessonType != domain.LessonTypeCapacity {
		return 1, nil
	}
	if explicit > 0 {
		return explicit, nil
	}

	settings, err := uc.teacherRepo.GetSettings(ctx, old.TeacherID)
	if err != nil {
		if !errors.Is(err, teacherRepo.ErrSettingsNotFound) {
			uc.logger.Error("RescheduleBooking: failed to get settings of teacher=%s: %v", old.TeacherID, err)
			return 0, fmt.Errorf("%w: failed to get teacher settings: %v", ErrInternal, err)
		}
		settings = nil
	}
	return domain.ResolveGroupSize(0, settings, uc.defaultGroupSize), nil
}

// buildReplacement новое бронирование наследует участников, статус и ссылку на встречу
func buildReplacement(old *domain.Booking, req *Request, now time.Time) *domain.Booking {
	end := req.NewEndAt
	if end.IsZero() {
		end = req.NewStartAt.Add(old.EndAt.Sub(old.StartAt))
	}

	oldID := old.ID
	return &domain.Booking{
		TeacherID:        old.TeacherID,
		StudentID:        old.StudentID,
		TeacherName:      old.TeacherName,
		StudentName:      old.StudentName,
		StudentEmail:     old.StudentEmail,
		BookingPageTitle: old.BookingPageTitle,
		StartAt:          req.NewStartAt,
		EndAt:            end,
		DurationMinutes:  int(end.Sub(req.NewStartAt) / time.Minute),
		Status:           old.Status,
		MeetingLink:      old.MeetingLink,
		BookingType:      domain.BookingTypeFlexible,
		LessonType:       old.LessonType,
		RescheduleOf:     &oldID,
		Currency:         old.Currency,
		PaymentAmount:    old.PaymentAmount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func validateRequest(req *Request) error {
	if strings.TrimSpace(req.BookingID) == "" {
		return fmt.Errorf("%w: bookingId is required", ErrInvalidInput)
	}
	if req.NewStartAt.IsZero() {
		return fmt.Errorf("%w: startAt is required", ErrInvalidInput)
	}
	if !req.NewEndAt.IsZero() && !req.NewEndAt.After(req.NewStartAt) {
		return fmt.Errorf("%w: endAt must be after startAt", ErrInvalidInput)
	}
	if req.MaxGroupSize < 0 {
		return fmt.Errorf("%w: maxGroupSize must not be negative", ErrInvalidInput)
	}
	return nil
}

// lockError занятый ключ означает конфликт, недоступность блокировки внутренняя ошибка
func (uc *UseCase) lockError(key domain.SlotKey, err error) error {
	if redislock.IsContention(err) {
		uc.logger.Warn("RescheduleBooking: slot %s is locked by another request: %v", key, err)
		uc.metrics.IncBookingConflict(metricsOperation)
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	}
	uc.logger.Error("RescheduleBooking: failed to lock slot %s: %v", key, err)
	return fmt.Errorf("%w: failed to lock slot: %v", ErrInternal, err)
}
