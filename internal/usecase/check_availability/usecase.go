package check_availability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	teacherRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/teacher"
)

const (
	modeSingle = "single"
	modeBatch  = "batch"
)

// UseCase проверка доступности слотов преподавателя.
// Ошибка чтения бронирований не блокирует клиента: слот считается свободным,
// результат помечается Degraded, пишется предупреждение и метрика.
// Запись бронирования (create_booking) так не делает.
type UseCase struct {
	bookingRepo      BookingRepository
	teacherRepo      TeacherRepository
	keyer            domain.SlotKeyer
	defaultGroupSize int
	metrics          Metrics
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	teacherRepo TeacherRepository,
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
		keyer:            keyer,
		defaultGroupSize: defaultGroupSize,
		metrics:          metrics,
		logger:           logger,
	}
}

// CheckSlot проверяет, примет ли слот ещё одно бронирование
func (uc *UseCase) CheckSlot(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckSlot: teacher=%s, date=%s, time=%s, lessonType=%s",
		req.TeacherID, req.Date, req.Time, req.LessonType)

	lessonType, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CheckSlot: validation failed: %v", err)
		return nil, err
	}

	maxSize := uc.resolveMaxSize(ctx, req.TeacherID, lessonType, req.MaxGroupSize)
	key := uc.keyer.ForCandidate(req.TeacherID, req.Date, req.Time)

	bookings, err := uc.bookingRepo.GetByTeacher(ctx, req.TeacherID, domain.OccupyingStatuses)
	if err != nil {
		uc.failOpen(modeSingle, req.TeacherID, err)
		return &Response{
			Date:             key.Date,
			Time:             key.Time,
			SlotAvailability: failOpenResult(lessonType, maxSize),
		}, nil
	}

	result := uc.evaluate(bookings, key, lessonType, maxSize)

	uc.logger.Info("CheckSlot: slot %s available=%t, %d/%d taken",
		key, result.Available, result.CurrentBookings, result.MaxSize)

	return &Response{
		Date:             key.Date,
		Time:             key.Time,
		SlotAvailability: result,
	}, nil
}

// CheckSlots проверяет список слотов одним чтением бронирований.
// Порядок слотов сохраняется; результат каждого совпадает с CheckSlot на том же наборе бронирований.
func (uc *UseCase) CheckSlots(ctx context.Context, req *BatchRequest) ([]SlotResult, error) {
	uc.logger.Info("CheckSlots: teacher=%s, slots=%d, lessonType=%s", req.TeacherID, len(req.Slots), req.LessonType)

	lessonType, err := validateBatchRequest(req)
	if err != nil {
		uc.logger.Warn("CheckSlots: validation failed: %v", err)
		return nil, err
	}

	results := make([]SlotResult, len(req.Slots))
	if len(req.Slots) == 0 {
		return results, nil
	}

	maxSize := uc.resolveMaxSize(ctx, req.TeacherID, lessonType, req.MaxGroupSize)

	bookings, fetchErr := uc.bookingRepo.GetByTeacher(ctx, req.TeacherID, domain.OccupyingStatuses)
	if fetchErr != nil {
		uc.failOpen(modeBatch, req.TeacherID, fetchErr)
	}

	unavailable := 0
	for i, slot := range req.Slots {
		key := uc.keyer.ForCandidate(req.TeacherID, slot.Date, slot.Time)

		var availability domain.SlotAvailability
		if fetchErr != nil {
			availability = failOpenResult(lessonType, maxSize)
		} else {
			availability = uc.evaluate(bookings, key, lessonType, maxSize)
		}
		if !availability.Available {
			unavailable++
		}

		results[i] = SlotResult{
			Slot:             slot,
			Date:             key.Date,
			SlotAvailability: availability,
		}
	}

	uc.logger.Info("CheckSlots: teacher=%s, %d of %d slots unavailable", req.TeacherID, unavailable, len(results))
	return results, nil
}

func (uc *UseCase) evaluate(bookings []*domain.Booking, key domain.SlotKey, lessonType domain.LessonType, maxSize int) domain.SlotAvailability {
	return uc.keyer.OccupancyAtKey(bookings, key, "").Evaluate(lessonType, maxSize)
}

// resolveMaxSize вместимость слота: exclusive - 1, capacity - явный размер,
// затем настройки преподавателя, затем значение по умолчанию
func (uc *UseCase) resolveMaxSize(ctx context.Context, teacherID string, lessonType domain.LessonType, explicit int) int {
	if lessonType == domain.LessonTypeExclusive {
		return 1
	}
	if explicit > 0 {
		return explicit
	}

	settings, err := uc.teacherRepo.GetSettings(ctx, teacherID)
	if err != nil {
		if !errors.Is(err, teacherRepo.ErrSettingsNotFound) {
			uc.logger.Warn("CheckSlot: failed to read settings of teacher=%s, using default group size %d: %v",
				teacherID, uc.defaultGroupSize, err)
		}
		settings = nil
	}

	return domain.ResolveGroupSize(0, settings, uc.defaultGroupSize)
}

func (uc *UseCase) failOpen(mode string, teacherID string, err error) {
	uc.metrics.IncAvailabilityFailOpen(mode)
	uc.logger.Warn("CheckSlot: %v: bookings of teacher=%s unavailable, reporting slot as free: %v",
		domain.ErrTransientFetch, teacherID, err)
}

func failOpenResult(lessonType domain.LessonType, maxSize int) domain.SlotAvailability {
	result := domain.EvaluateSlot(0, lessonType, maxSize)
	result.Degraded = true
	return result
}

func validateRequest(req *Request) (domain.LessonType, error) {
	if strings.TrimSpace(req.TeacherID) == "" {
		return "", fmt.Errorf("%w: teacherId is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return "", fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Time) == "" {
		return "", fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	if req.MaxGroupSize < 0 {
		return "", fmt.Errorf("%w: maxGroupSize must not be negative", ErrInvalidInput)
	}
	return resolveLessonType(req.LessonType)
}

func validateBatchRequest(req *BatchRequest) (domain.LessonType, error) {
	if strings.TrimSpace(req.TeacherID) == "" {
		return "", fmt.Errorf("%w: teacherId is required", ErrInvalidInput)
	}
	if req.MaxGroupSize < 0 {
		return "", fmt.Errorf("%w: maxGroupSize must not be negative", ErrInvalidInput)
	}
	for i, slot := range req.Slots {
		if slot.Date.IsZero() {
			return "", fmt.Errorf("%w: slots[%d].date is required", ErrInvalidInput, i)
		}
		if strings.TrimSpace(slot.Time) == "" {
			return "", fmt.Errorf("%w: slots[%d].time is required", ErrInvalidInput, i)
		}
	}
	return resolveLessonType(req.LessonType)
}

func resolveLessonType(lt domain.LessonType) (domain.LessonType, error) {
	if lt == "" {
		return domain.LessonTypeExclusive, nil
	}
	if !lt.IsValid() {
		return "", fmt.Errorf("%w: unknown lessonType %q", ErrInvalidInput, lt)
	}
	return lt, nil
}
