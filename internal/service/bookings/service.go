package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
	ledgerService "github.com/m04kA/SMC-LessonBookingService/internal/service/ledger"
	ledgerModels "github.com/m04kA/SMC-LessonBookingService/internal/service/ledger/models"
	"github.com/m04kA/SMC-LessonBookingService/pkg/meetlink"
)

const metricsOperation = "transition"

// Service сервис для работы с бронированиями: чтение и переходы статусов
type Service struct {
	bookingRepo  BookingRepository
	ledger       LedgerService
	slotRepo     SlotRepository
	txManager    TransactionManager
	metrics      Metrics
	logger       Logger
	now          func() time.Time
	generateLink func() string
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	ledger LedgerService,
	slotRepo SlotRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		ledger:       ledger,
		slotRepo:     slotRepo,
		txManager:    txManager,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
		generateLink: meetlink.Generate,
	}
}

// GetByID получает бронирование по ID.
// Видеть бронирование могут только его ученик и преподаватель
func (s *Service) GetByID(ctx context.Context, id string, actorID string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for user=%s", id, actorID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !booking.IsParticipant(actorID) {
		s.logger.Warn("GetByID: access denied for user=%s to booking id=%s", actorID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched booking id=%s", id)
	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает бронирования пользователя как ученика или преподавателя.
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%s, role=%s, status=%v", req.UserID, req.Role, req.Status)

	if req.ActorID != req.UserID {
		s.logger.Warn("GetUserBookings: user=%s cannot read bookings of user=%s", req.ActorID, req.UserID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetUserBookings: invalid filter for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetByUser(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%s", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetTeacherBookings получает расписание преподавателя. Доступно только самому преподавателю
func (s *Service) GetTeacherBookings(ctx context.Context, req *models.GetTeacherBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetTeacherBookings: fetching bookings for teacher=%s, user=%s", req.TeacherID, req.ActorID)
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if req.ActorID != req.TeacherID {
		s.logger.Warn("GetTeacherBookings: user=%s is not teacher=%s", req.ActorID, req.TeacherID)
		return nil, ErrAccessDenied
	}

	var statuses []domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetTeacherBookings: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		statuses = []domain.BookingStatus{status}
	}

	bookings, err := s.bookingRepo.GetByTeacher(ctx, req.TeacherID, statuses)
	if err != nil {
		s.logger.Error("GetTeacherBookings: repository error for teacher=%s: %v", req.TeacherID, err)
		return nil, fmt.Errorf("%w: GetTeacherBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetTeacherBookings: successfully fetched %d bookings for teacher=%s", len(bookings), req.TeacherID)
	return models.FromDomainBookingList(bookings), nil
}

// GetStats считает счётчики дашборда пользователя
func (s *Service) GetStats(ctx context.Context, req *models.GetStatsRequest) (*models.BookingStatsResponse, error) {
	s.logger.Info("GetStats: fetching stats for user=%s, role=%s", req.UserID, req.Role)

	if req.ActorID != req.UserID {
		s.logger.Warn("GetStats: user=%s cannot read stats of user=%s", req.ActorID, req.UserID)
		return nil, ErrAccessDenied
	}

	role, err := models.ToDomainRole(req.Role)
	if err != nil {
		s.logger.Warn("GetStats: invalid role=%s", req.Role)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetByUser(ctx, domain.UserBookingsFilter{UserID: req.UserID, Role: role})
	if err != nil {
		s.logger.Error("GetStats: repository error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetStats - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainStats(domain.ComputeBookingStats(bookings, s.now())), nil
}

// Confirm подтверждает бронирование: списывает одно занятие с баланса пары
// преподаватель/ученик и сохраняет ссылку на встречу в одной транзакции.
// Подтверждать может преподаватель или система (пустой ActorID)
func (s *Service) Confirm(ctx context.Context, bookingID string, req *models.ConfirmBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: confirming booking id=%s by user=%q", bookingID, req.ActorID)

	var result *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "Confirm", bookingID)
		if err != nil {
			return err
		}

		if req.ActorID != "" && req.ActorID != booking.TeacherID {
			s.logger.Warn("Confirm: user=%s is not the teacher of booking id=%s", req.ActorID, bookingID)
			return ErrAccessDenied
		}

		if err := s.checkTransition("Confirm", booking, domain.StatusConfirmed); err != nil {
			return err
		}

		now := s.now()

		// Списываем одно занятие
		spend := &ledgerModels.SpendRequest{TeacherID: booking.TeacherID, StudentID: booking.StudentID, Lessons: 1}
		if _, err := s.ledger.Spend(txCtx, spend); err != nil {
			if errors.Is(err, ledgerService.ErrInsufficientCredit) {
				s.logger.Warn("Confirm: student=%s has no lessons left with teacher=%s", booking.StudentID, booking.TeacherID)
				return ErrInsufficientCredit
			}
			s.logger.Error("Confirm: failed to spend credit for booking id=%s: %v", bookingID, err)
			return fmt.Errorf("%w: Confirm - ledger error: %v", ErrInternal, err)
		}

		link := strings.TrimSpace(req.MeetingLink)
		if link == "" {
			link = s.generateLink()
		}

		patch := domain.StatusPatch{MeetingLink: &link, UpdatedAt: now}
		if err := s.updateStatus(txCtx, "Confirm", booking, domain.StatusConfirmed, patch); err != nil {
			return err
		}

		booking.Status = domain.StatusConfirmed
		booking.MeetingLink = link
		booking.UpdatedAt = now
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddCreditsSpent(1)
	s.metrics.IncStatusTransition(string(domain.StatusConfirmed))
	s.logger.Info("Confirm: successfully confirmed booking id=%s", bookingID)
	return models.FromDomainBooking(result), nil
}

// Complete отмечает занятие проведённым. Доступно только преподавателю
func (s *Service) Complete(ctx context.Context, bookingID string, req *models.CompleteBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Complete: completing booking id=%s by user=%s", bookingID, req.ActorID)

	booking, err := s.getBooking(ctx, "Complete", bookingID)
	if err != nil {
		return nil, err
	}

	if req.ActorID != booking.TeacherID {
		s.logger.Warn("Complete: user=%s is not the teacher of booking id=%s", req.ActorID, bookingID)
		return nil, ErrAccessDenied
	}

	if err := s.checkTransition("Complete", booking, domain.StatusCompleted); err != nil {
		return nil, err
	}

	now := s.now()
	patch := domain.StatusPatch{CompletedAt: &now, UpdatedAt: now}
	if err := s.updateStatus(ctx, "Complete", booking, domain.StatusCompleted, patch); err != nil {
		return nil, err
	}

	booking.Status = domain.StatusCompleted
	booking.CompletedAt = &now
	booking.UpdatedAt = now

	s.metrics.IncStatusTransition(string(domain.StatusCompleted))
	s.logger.Info("Complete: successfully completed booking id=%s", bookingID)
	return models.FromDomainBooking(booking), nil
}

// Cancel отменяет бронирование и освобождает опубликованный слот.
// Отменить может ученик или преподаватель бронирования
func (s *Service) Cancel(ctx context.Context, bookingID string, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%s by user=%s", bookingID, req.ActorID)

	reason := strings.TrimSpace(req.CancellationReason)
	if utf8.RuneCountInString(reason) > domain.MaxCancellationReasonLength {
		s.logger.Warn("Cancel: cancellation reason too long for booking id=%s", bookingID)
		return nil, fmt.Errorf("%w: cancellationReason must be at most %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	var result *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "Cancel", bookingID)
		if err != nil {
			return err
		}

		if !booking.IsParticipant(req.ActorID) {
			s.logger.Warn("Cancel: access denied for user=%s to cancel booking id=%s", req.ActorID, bookingID)
			return ErrAccessDenied
		}

		if err := s.checkTransition("Cancel", booking, domain.StatusCancelled); err != nil {
			return err
		}

		now := s.now()
		patch := domain.StatusPatch{CancelledAt: &now, UpdatedAt: now}
		if reason != "" {
			patch.CancellationReason = &reason
		}
		if err := s.updateStatus(txCtx, "Cancel", booking, domain.StatusCancelled, patch); err != nil {
			return err
		}

		// Освобождаем опубликованный слот
		if booking.SlotID != nil {
			if err := s.slotRepo.Release(txCtx, *booking.SlotID); err != nil {
				if !errors.Is(err, slotRepo.ErrSlotNotFound) {
					s.logger.Error("Cancel: failed to release slot id=%s: %v", *booking.SlotID, err)
					return fmt.Errorf("%w: Cancel - slot release error: %v", ErrInternal, err)
				}
				s.logger.Warn("Cancel: slot id=%s of booking id=%s no longer exists", *booking.SlotID, bookingID)
			}
		}

		booking.Status = domain.StatusCancelled
		booking.CancelledAt = &now
		booking.CancellationReason = patch.CancellationReason
		booking.UpdatedAt = now
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStatusTransition(string(domain.StatusCancelled))
	s.logger.Info("Cancel: successfully cancelled booking id=%s", bookingID)
	return models.FromDomainBooking(result), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%s not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkTransition недопустимый переход логируется как ошибка
func (s *Service) checkTransition(op string, booking *domain.Booking, to domain.BookingStatus) error {
	if booking.CanTransitionTo(to) {
		return nil
	}
	s.logger.Error("%s: booking id=%s cannot move from %s to %s", op, booking.ID, booking.Status, to)
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, to)
}

// updateStatus условное обновление: проигравший гонку получает конфликт
func (s *Service) updateStatus(ctx context.Context, op string, booking *domain.Booking, to domain.BookingStatus, patch domain.StatusPatch) error {
	err := s.bookingRepo.UpdateStatus(ctx, booking.ID, booking.Status, to, patch)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, bookingRepo.ErrStatusMismatch):
		s.logger.Warn("%s: booking id=%s changed concurrently", op, booking.ID)
		s.metrics.IncBookingConflict(metricsOperation)
		return ErrStatusChanged
	case errors.Is(err, bookingRepo.ErrConflict):
		// конфликт сериализации или взаимная блокировка в БД
		s.logger.Warn("%s: booking id=%s update conflicted: %v", op, booking.ID, err)
		s.metrics.IncBookingConflict(metricsOperation)
		return fmt.Errorf("%w: %v", ErrStatusChanged, err)
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		s.logger.Warn("%s: booking id=%s not found during update", op, booking.ID)
		return ErrBookingNotFound
	default:
		s.logger.Error("%s: repository error for booking id=%s: %v", op, booking.ID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}
