package memory

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	ledgerRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/ledger"
)

// LedgerRepository балансы занятий в памяти
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository создает репозиторий балансов поверх store
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) Get(ctx context.Context, teacherID, studentID string) (*domain.LessonBalance, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.balances[balanceKey{teacherID, studentID}]
	if !ok {
		return nil, ledgerRepo.ErrBalanceNotFound
	}
	c := *b
	return &c, nil
}

func (r *LedgerRepository) Grant(ctx context.Context, teacherID, studentID string, count int, reference string, now time.Time) (*domain.LessonBalance, bool, error) {
	s := r.store
	var (
		result  domain.LessonBalance
		applied bool
	)
	err := s.write(ctx, func(tx *txLog) error {
		key := balanceKey{teacherID, studentID}
		current, existed := s.balances[key]

		if reference != "" {
			if _, seen := s.grants[reference]; seen {
				if existed {
					result = *current
				} else {
					result = *domain.NewLessonBalance(teacherID, studentID)
				}
				return nil
			}
			s.grants[reference] = struct{}{}
			tx.onRollback(func() { delete(s.grants, reference) })
		}

		var b domain.LessonBalance
		if existed {
			b = *current
		} else {
			b = *domain.NewLessonBalance(teacherID, studentID)
			b.LastUpdated = now
		}
		b.ApplyGrant(count, now)

		s.setBalance(tx, key, &b)
		result = b
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, applied, nil
}

func (r *LedgerRepository) Spend(ctx context.Context, teacherID, studentID string, count int, now time.Time) (*domain.LessonBalance, error) {
	s := r.store
	var result domain.LessonBalance
	err := s.write(ctx, func(tx *txLog) error {
		key := balanceKey{teacherID, studentID}
		current, ok := s.balances[key]
		if !ok {
			return ledgerRepo.ErrInsufficientCredit
		}

		b := *current
		if err := b.ApplySpend(count, now); err != nil {
			return ledgerRepo.ErrInsufficientCredit
		}

		s.setBalance(tx, key, &b)
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// setBalance заменяет строку баланса целиком, старая запоминается для отката
func (s *Store) setBalance(tx *txLog, key balanceKey, b *domain.LessonBalance) {
	prev, existed := s.balances[key]
	tx.onRollback(func() {
		if existed {
			s.balances[key] = prev
			return
		}
		delete(s.balances, key)
	})
	s.balances[key] = b
}
