package settle_payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/booking"
	bookingModels "github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
	ledgerModels "github.com/m04kA/SMC-LessonBookingService/internal/service/ledger/models"
)

// UseCase обработка вебхука об оплате: начисление занятий и подтверждение бронирования.
// Повторная доставка того же paymentId занятия не начисляет
type UseCase struct {
	ledgerService  LedgerService
	bookingService BookingService
	bookingRepo    BookingRepository
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(ledgerService LedgerService, bookingService BookingService, bookingRepo BookingRepository, logger Logger) *UseCase {
	return &UseCase{
		ledgerService:  ledgerService,
		bookingService: bookingService,
		bookingRepo:    bookingRepo,
		logger:         logger,
	}
}

// Execute выполняет use case
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SettlePayment: payment=%s, teacher=%s, student=%s, lessons=%d, amount=%.2f %s",
		req.PaymentID, req.TeacherID, req.StudentID, req.Lessons, req.Amount, req.Currency)

	// 1. Валидация события
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("SettlePayment: validation failed: %v", err)
		return nil, err
	}

	// 2. Бронирование должно принадлежать той же паре
	if req.BookingID != nil {
		booking, err := uc.bookingRepo.GetByID(ctx, *req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("SettlePayment: booking id=%s not found", *req.BookingID)
				return nil, ErrBookingNotFound
			}
			uc.logger.Error("SettlePayment: failed to get booking id=%s: %v", *req.BookingID, err)
			return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}
		if booking.TeacherID != req.TeacherID || booking.StudentID != req.StudentID {
			uc.logger.Warn("SettlePayment: booking id=%s belongs to teacher=%s, student=%s",
				booking.ID, booking.TeacherID, booking.StudentID)
			return nil, ErrBookingMismatch
		}
	}

	// 3. Начисление занятий, идемпотентно по paymentId
	grant, err := uc.ledgerService.Grant(ctx, &ledgerModels.GrantRequest{
		TeacherID: req.TeacherID,
		StudentID: req.StudentID,
		Lessons:   req.Lessons,
		Reference: req.PaymentID,
	})
	if err != nil {
		uc.logger.Error("SettlePayment: failed to grant lessons for payment=%s: %v", req.PaymentID, err)
		return nil, err
	}

	resp := &Response{
		Balance:        grant.Balance,
		CreditsGranted: grant.Applied,
	}

	if req.BookingID == nil {
		uc.logger.Info("SettlePayment: payment=%s settled without booking", req.PaymentID)
		return resp, nil
	}

	// 4. Системное подтверждение бронирования
	booking, err := uc.bookingService.Confirm(ctx, *req.BookingID, &bookingModels.ConfirmBookingRequest{})
	switch {
	case err == nil:
		resp.BookingConfirmed = true
		resp.Booking = booking
		resp.Balance.UsedLessons++
		resp.Balance.RemainingLessons--
	case errors.Is(err, domain.ErrInvalidTransition):
		// Повторная доставка или бронирование уже не в scheduled: занятия начислены, подтверждать нечего
		if grant.Applied {
			uc.logger.Warn("SettlePayment: payment=%s granted lessons but booking id=%s was not confirmed: %v",
				req.PaymentID, *req.BookingID, err)
		} else {
			uc.logger.Info("SettlePayment: payment=%s already settled", req.PaymentID)
		}
	default:
		uc.logger.Error("SettlePayment: failed to confirm booking id=%s: %v", *req.BookingID, err)
		return nil, err
	}

	uc.logger.Info("SettlePayment: payment=%s settled, granted=%t, confirmed=%t",
		req.PaymentID, resp.CreditsGranted, resp.BookingConfirmed)
	return resp, nil
}

func validateRequest(req *Request) error {
	if strings.TrimSpace(req.PaymentID) == "" {
		return fmt.Errorf("%w: paymentId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.TeacherID) == "" {
		return fmt.Errorf("%w: teacherId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.StudentID) == "" {
		return fmt.Errorf("%w: studentId is required", ErrInvalidInput)
	}
	if req.Lessons < 1 || req.Lessons > domain.MaxCreditsPerGrant {
		return fmt.Errorf("%w: lessons must be between 1 and %d", ErrInvalidInput, domain.MaxCreditsPerGrant)
	}
	if req.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if req.BookingID != nil && strings.TrimSpace(*req.BookingID) == "" {
		req.BookingID = nil
	}
	return nil
}
