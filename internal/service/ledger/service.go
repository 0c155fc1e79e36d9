package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	ledgerRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/ledger"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/ledger/models"
)

// Service сервис баланса оплаченных занятий
type Service struct {
	ledgerRepo LedgerRepository
	metrics    Metrics
	logger     Logger
	now        func() time.Time
}

// NewService создает новый экземпляр сервиса баланса
func NewService(ledgerRepo LedgerRepository, metrics Metrics, logger Logger) *Service {
	return &Service{
		ledgerRepo: ledgerRepo,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Grant начисляет занятия. Повторный Reference не начисляет повторно
func (s *Service) Grant(ctx context.Context, req *models.GrantRequest) (*models.GrantResponse, error) {
	s.logger.Info("Grant: teacher=%s, student=%s, lessons=%d, reference=%q",
		req.TeacherID, req.StudentID, req.Lessons, req.Reference)

	if err := validatePair(req.TeacherID, req.StudentID); err != nil {
		s.logger.Warn("Grant: validation failed: %v", err)
		return nil, err
	}
	if req.Lessons < 1 || req.Lessons > domain.MaxCreditsPerGrant {
		s.logger.Warn("Grant: invalid lessons count %d", req.Lessons)
		return nil, fmt.Errorf("%w: lessons must be between 1 and %d", ErrInvalidInput, domain.MaxCreditsPerGrant)
	}

	balance, applied, err := s.ledgerRepo.Grant(ctx, req.TeacherID, req.StudentID, req.Lessons, strings.TrimSpace(req.Reference), s.now())
	if err != nil {
		s.logger.Error("Grant: repository error: %v", err)
		return nil, fmt.Errorf("%w: Grant - repository error: %v", ErrInternal, err)
	}

	if !applied {
		s.logger.Info("Grant: reference=%s already applied, balance unchanged", req.Reference)
	} else {
		s.metrics.AddCreditsGranted(req.Lessons)
		s.logger.Info("Grant: teacher=%s, student=%s now has %d lessons remaining",
			req.TeacherID, req.StudentID, balance.RemainingLessons)
	}

	return &models.GrantResponse{
		Balance: *models.FromDomainBalance(balance),
		Applied: applied,
	}, nil
}

// Spend списывает занятия; при нехватке баланс не меняется.
// Вызывается внутри транзакции подтверждения, поэтому метрику списания пишет вызывающий после коммита
func (s *Service) Spend(ctx context.Context, req *models.SpendRequest) (*models.BalanceResponse, error) {
	s.logger.Info("Spend: teacher=%s, student=%s, lessons=%d", req.TeacherID, req.StudentID, req.Lessons)

	if err := validatePair(req.TeacherID, req.StudentID); err != nil {
		s.logger.Warn("Spend: validation failed: %v", err)
		return nil, err
	}
	if req.Lessons == 0 {
		req.Lessons = 1
	}
	if req.Lessons < 0 {
		return nil, fmt.Errorf("%w: lessons must be positive", ErrInvalidInput)
	}

	balance, err := s.ledgerRepo.Spend(ctx, req.TeacherID, req.StudentID, req.Lessons, s.now())
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrInsufficientCredit) {
			s.logger.Warn("Spend: not enough lessons for teacher=%s, student=%s", req.TeacherID, req.StudentID)
			return nil, ErrInsufficientCredit
		}
		s.logger.Error("Spend: repository error: %v", err)
		return nil, fmt.Errorf("%w: Spend - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBalance(balance), nil
}

// GetBalance возвращает баланс пары. Отсутствие записи - нулевой баланс.
// Читать баланс могут только ученик и преподаватель этой пары
func (s *Service) GetBalance(ctx context.Context, actorID, teacherID, studentID string) (*models.BalanceResponse, error) {
	s.logger.Info("GetBalance: teacher=%s, student=%s by user=%s", teacherID, studentID, actorID)

	if err := validatePair(teacherID, studentID); err != nil {
		return nil, err
	}
	if actorID != teacherID && actorID != studentID {
		s.logger.Warn("GetBalance: user=%s is not part of teacher=%s, student=%s", actorID, teacherID, studentID)
		return nil, ErrAccessDenied
	}

	balance, err := s.ledgerRepo.Get(ctx, teacherID, studentID)
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrBalanceNotFound) {
			return models.FromDomainBalance(domain.NewLessonBalance(teacherID, studentID)), nil
		}
		s.logger.Error("GetBalance: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetBalance - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBalance(balance), nil
}

func validatePair(teacherID, studentID string) error {
	if strings.TrimSpace(teacherID) == "" {
		return fmt.Errorf("%w: teacherId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(studentID) == "" {
		return fmt.Errorf("%w: studentId is required", ErrInvalidInput)
	}
	return nil
}
