package create_booking

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

const metricsOperation = "create"

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo      BookingRepository
	teacherRepo      TeacherRepository
	slotRepo         SlotRepository
	locker           SlotLocker
	txManager        TransactionManager
	keyer            domain.SlotKeyer
	defaultGroupSize int
	defaultCurrency  string
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
		defaultCurrency:  domain.DefaultCurrency,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// WithDefaultCurrency задаёт валюту для бронирований без явной валюты
func (uc *UseCase) WithDefaultCurrency(currency string) *UseCase {
	if c := strings.ToUpper(strings.TrimSpace(currency)); c != "" {
		uc.defaultCurrency = c
	}
	return uc
}

// Execute выполняет use case создания бронирования.
// Подсчёт занятости и вставка выполняются в одной сериализуемой транзакции;
// при ошибке чтения бронирований запись отклоняется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: teacher=%s, student=%s, start=%s, lessonType=%s",
		req.TeacherID, req.StudentID, req.StartAt.Format("2006-01-02T15:04"), req.LessonType)

	lessonType := req.LessonType
	if lessonType == "" {
		lessonType = domain.LessonTypeExclusive
	}
	if req.MaxGroupSize < 0 {
		return nil, fmt.Errorf("%w: maxGroupSize must not be negative", ErrInvalidInput)
	}

	// 1. Время из опубликованного слота, если клиент его не передал
	if req.SlotID != nil && req.StartAt.IsZero() {
		if err := uc.fillFromSlot(ctx, req); err != nil {
			return nil, err
		}
	}

	// 2. Профиль занятия преподавателя подставляет то, чего нет в запросе
	profile, err := uc.loadProfile(ctx, req.TeacherID)
	if err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()
	booking := uc.buildBooking(req, lessonType, profile, now)

	// 3. Валидация: некорректное бронирование никогда не записывается
	if err := domain.ValidateBookingData(booking); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	key := uc.keyer.ForBooking(booking)

	// 4. Блокировка ключа слота, если включена
	if uc.locker != nil {
		release, err := uc.locker.Acquire(ctx, key.String())
		if err != nil {
			return nil, uc.lockError(key, err)
		}
		defer release()
	}

	var (
		created      *domain.Booking
		availability domain.SlotAvailability
	)

	// 5. Проверка и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		maxSize, err := uc.resolveMaxSize(txCtx, req.TeacherID, lessonType, req.MaxGroupSize)
		if err != nil {
			return err
		}

		// 5.1. Занимающие слот бронирования преподавателя (FOR UPDATE внутри транзакции)
		bookings, err := uc.bookingRepo.GetByTeacher(txCtx, req.TeacherID, domain.OccupyingStatuses)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrConflict) {
				uc.logger.Warn("CreateBooking: bookings of teacher=%s locked concurrently: %v", req.TeacherID, err)
				return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
			}
			uc.logger.Error("CreateBooking: failed to get bookings of teacher=%s: %v", req.TeacherID, err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		// 5.2. Проверка доступности
		occupancy := uc.keyer.OccupancyAtKey(bookings, key, "")
		availability = occupancy.Evaluate(lessonType, maxSize)
		if !availability.Available {
			uc.logger.Warn("CreateBooking: slot %s not available, %d/%d spots taken",
				key, availability.CurrentBookings, availability.MaxSize)
			return ErrSlotNotAvailable
		}

		// 5.3. Опубликованный слот помечается занятым в той же транзакции
		if req.SlotID != nil {
			if err := uc.bookSlot(txCtx, booking, *req.SlotID); err != nil {
				return err
			}
		}

		// 5.4. Сохраняем бронирование
		created, err = uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrConflict) {
				uc.logger.Warn("CreateBooking: slot %s taken concurrently: %v", key, err)
				return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		availability = domain.EvaluateSlot(occupancy.Count+1, lessonType, maxSize)
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerialization) {
			uc.logger.Warn("CreateBooking: serialization conflict on slot %s: %v", key, err)
			err = fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
		}
		if errors.Is(err, domain.ErrConflict) {
			uc.metrics.IncBookingConflict(metricsOperation)
		}
		return nil, err
	}

	uc.metrics.IncBookingCreated(string(lessonType))
	uc.logger.Info("CreateBooking: successfully created booking id=%s on slot %s", created.ID, key)

	return &Response{
		Booking:      created,
		Availability: availability,
	}, nil
}

func (uc *UseCase) buildBooking(req *Request, lessonType domain.LessonType, profile *domain.TeacherSettings, now time.Time) *domain.Booking {
	if profile == nil {
		profile = &domain.TeacherSettings{}
	}

	duration := req.DurationMinutes
	endAt := req.EndAt
	if !req.StartAt.IsZero() {
		if endAt.IsZero() {
			if duration == 0 {
				duration = profile.ClassDuration
			}
			if duration > 0 {
				endAt = req.StartAt.Add(time.Duration(duration) * time.Minute)
			}
		}
		if duration == 0 && endAt.After(req.StartAt) {
			duration = int(endAt.Sub(req.StartAt).Minutes())
		}
	}

	bookingType := req.BookingType
	if bookingType == "" {
		bookingType = domain.DefaultBookingType
		if req.SlotID != nil {
			bookingType = domain.BookingTypeFixed
		}
	}

	currency := domain.NormalizeCurrency(req.Currency)
	if currency == "" {
		currency = profile.Currency
	}
	if currency == "" {
		currency = uc.defaultCurrency
	}

	title := req.BookingPageTitle
	if title == nil && profile.ClassTitle != "" {
		t := profile.ClassTitle
		title = &t
	}

	amount := req.PaymentAmount
	if amount == 0 {
		amount = profile.ClassPrice
	}

	return &domain.Booking{
		TeacherID:        req.TeacherID,
		StudentID:        req.StudentID,
		TeacherName:      req.TeacherName,
		StudentName:      req.StudentName,
		StudentEmail:     req.StudentEmail,
		BookingPageTitle: title,
		StartAt:          req.StartAt,
		EndAt:            endAt,
		DurationMinutes:  duration,
		Status:           domain.StatusScheduled,
		BookingType:      bookingType,
		LessonType:       lessonType,
		SlotID:           req.SlotID,
		Currency:         currency,
		PaymentAmount:    amount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// loadProfile настройки преподавателя для значений по умолчанию; nil, если не сохранялись
func (uc *UseCase) loadProfile(ctx context.Context, teacherID string) (*domain.TeacherSettings, error) {
	if strings.TrimSpace(teacherID) == "" {
		return nil, nil
	}

	settings, err := uc.teacherRepo.GetSettings(ctx, teacherID)
	if err != nil {
		if errors.Is(err, teacherRepo.ErrSettingsNotFound) {
			return nil, nil
		}
		uc.logger.Error("CreateBooking: failed to get settings of teacher=%s: %v", teacherID, err)
		return nil, fmt.Errorf("%w: failed to get teacher settings: %v", ErrInternal, err)
	}
	return settings, nil
}

func (uc *UseCase) fillFromSlot(ctx context.Context, req *Request) error {
	slot, err := uc.slotRepo.GetByID(ctx, *req.SlotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Warn("CreateBooking: slot id=%s not found", *req.SlotID)
			return ErrSlotNotFound
		}
		uc.logger.Error("CreateBooking: failed to get slot id=%s: %v", *req.SlotID, err)
		return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	req.StartAt = slot.StartAt
	req.EndAt = slot.EndAt
	if req.DurationMinutes == 0 {
		req.DurationMinutes = slot.DurationMinutes()
	}
	return nil
}

func (uc *UseCase) bookSlot(ctx context.Context, booking *domain.Booking, slotID string) error {
	slot, err := uc.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Warn("CreateBooking: slot id=%s not found", slotID)
			return ErrSlotNotFound
		}
		return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	if slot.TeacherID != booking.TeacherID || !slot.StartAt.Equal(booking.StartAt) {
		uc.logger.Warn("CreateBooking: slot id=%s belongs to teacher=%s at %s", slotID, slot.TeacherID, slot.StartAt)
		return ErrSlotMismatch
	}

	if err := uc.slotRepo.MarkBooked(ctx, slotID, booking.StudentID); err != nil {
		if errors.Is(err, slotRepo.ErrSlotAlreadyBooked) {
			uc.logger.Warn("CreateBooking: slot id=%s already booked", slotID)
			return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
		}
		uc.logger.Error("CreateBooking: failed to mark slot id=%s booked: %v", slotID, err)
		return fmt.Errorf("%w: failed to mark slot booked: %v", ErrInternal, err)
	}
	return nil
}

// resolveMaxSize на пути записи ошибка чтения настроек не игнорируется
func (uc *UseCase) resolveMaxSize(ctx context.Context, teacherID string, lessonType domain.LessonType, explicit int) (int, error) {
	if lessonType == domain.LessonTypeExclusive {
		return 1, nil
	}
	if explicit > 0 {
		return explicit, nil
	}

	settings, err := uc.teacherRepo.GetSettings(ctx, teacherID)
	if err != nil {
		if !errors.Is(err, teacherRepo.ErrSettingsNotFound) {
			uc.logger.Error("CreateBooking: failed to get settings of teacher=%s: %v", teacherID, err)
			return 0, fmt.Errorf("%w: failed to get teacher settings: %v", ErrInternal, err)
		}
		settings = nil
	}
	return domain.ResolveGroupSize(0, settings, uc.defaultGroupSize), nil
}

// lockError занятый ключ означает конфликт, недоступность блокировки внутренняя ошибка
func (uc *UseCase) lockError(key domain.SlotKey, err error) error {
	if redislock.IsContention(err) {
		uc.logger.Warn("CreateBooking: slot %s is locked by another request: %v", key, err)
		uc.metrics.IncBookingConflict(metricsOperation)
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	}
	uc.logger.Error("CreateBooking: failed to lock slot %s: %v", key, err)
	return fmt.Errorf("%w: failed to lock slot: %v", ErrInternal, err)
}
