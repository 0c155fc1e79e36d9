package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

type balanceKey struct {
	teacherID string
	studentID string
}

// Store хранилище в памяти для демо-режима и тестов.
// Реализует те же контракты, что и PostgreSQL репозитории, и возвращает те же ошибки.
// Транзакции сериализуются одним мьютексом на всё хранилище. Запись вне транзакции
// выполняется как отдельная транзакция под тем же мьютексом. При ошибке откатываются
// только изменения самой транзакции, по журналу отката.
type Store struct {
	txMu sync.Mutex // сериализует транзакции и записи вне транзакций
	mu   sync.RWMutex

	keyer domain.SlotKeyer
	now   func() time.Time

	bookings map[string]*domain.Booking
	balances map[balanceKey]*domain.LessonBalance
	grants   map[string]struct{}
	settings map[string]*domain.TeacherSettings
	slots    map[string]*domain.AvailabilitySlot
}

// NewStore создает пустое хранилище
func NewStore(keyer domain.SlotKeyer) *Store {
	return &Store{
		keyer:    keyer,
		now:      time.Now,
		bookings: make(map[string]*domain.Booking),
		balances: make(map[balanceKey]*domain.LessonBalance),
		grants:   make(map[string]struct{}),
		settings: make(map[string]*domain.TeacherSettings),
		slots:    make(map[string]*domain.AvailabilitySlot),
	}
}

// txLog журнал отката одной транзакции
type txLog struct {
	store *Store
	undo  []func()
}

// onRollback запоминает обратное действие. Вне транзакции (t == nil) ничего не делает
func (t *txLog) onRollback(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

// rollback вызывается под s.mu
func (t *txLog) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

type txKey struct{}

func (s *Store) txFromContext(ctx context.Context) *txLog {
	tx, ok := ctx.Value(txKey{}).(*txLog)
	if !ok || tx.store != s {
		return nil
	}
	return tx
}

// write выполняет изменение под s.mu.
// Внутри транзакции изменение попадает в её журнал отката, вне транзакции
// ждёт завершения текущей транзакции и применяется сразу.
func (s *Store) write(ctx context.Context, fn func(tx *txLog) error) error {
	if tx := s.txFromContext(ctx); tx != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(tx)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(nil)
}

// TxManager менеджер транзакций хранилища в памяти
type TxManager struct {
	store *Store
}

// NewTxManager создает менеджер транзакций
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	// вложенный вызов работает в уже открытой транзакции
	if m.store.txFromContext(ctx) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &txLog{store: m.store}
	rollback := func() {
		m.store.mu.Lock()
		defer m.store.mu.Unlock()
		tx.rollback()
	}
	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		rollback()
		return err
	}
	return nil
}

func copyBooking(b *domain.Booking) *domain.Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.BookingPageTitle = copyString(b.BookingPageTitle)
	c.SlotID = copyString(b.SlotID)
	c.RescheduleOf = copyString(b.RescheduleOf)
	c.CancellationReason = copyString(b.CancellationReason)
	c.CompletedAt = copyTime(b.CompletedAt)
	c.CancelledAt = copyTime(b.CancelledAt)
	return &c
}

func copySlot(s *domain.AvailabilitySlot) *domain.AvailabilitySlot {
	if s == nil {
		return nil
	}
	c := *s
	c.BookedBy = copyString(s.BookedBy)
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
